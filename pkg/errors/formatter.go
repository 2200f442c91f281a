package errors

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrorResponse names one rejected field. It is only logged; the
// waitlist endpoint answers with a single message.
type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func msgForTag(tag string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "waitlist_email":
		return "Invalid email format"
	}
	return "Invalid value"
}

func jsonFieldName(model reflect.Type, fieldName string) string {
	if model == nil {
		return fieldName
	}
	field, ok := model.FieldByName(fieldName)
	if !ok {
		return fieldName
	}
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" {
		return fieldName
	}
	return name
}

// FormatValidationErrors lists validator failures keyed by the model's JSON
// field names. Errors that are not validator.ValidationErrors yield nil.
func FormatValidationErrors(err error, model interface{}) []ValidationErrorResponse {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	var modelType reflect.Type
	if model != nil {
		modelType = reflect.TypeOf(model)
		if modelType.Kind() == reflect.Ptr {
			modelType = modelType.Elem()
		}
	}

	out := make([]ValidationErrorResponse, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		out = append(out, ValidationErrorResponse{
			Field:   jsonFieldName(modelType, fieldError.Field()),
			Message: msgForTag(fieldError.Tag()),
		})
	}
	return out
}
