package errors

import (
	"errors"
	"net/http"
)

const genericMessage = "An unexpected error occurred"

// HTTPStatusCode maps an error onto the status a handler should answer with.
// Only invalid requests are the client's fault; everything else is a 500.
func HTTPStatusCode(err error) int {
	if GetErrorType(err) == ErrorTypeInvalidRequest {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// GetHumanReadableMessage returns the message of an AppError. Other errors
// may carry driver or stack detail and are replaced by a generic message.
func GetHumanReadableMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return genericMessage
}
