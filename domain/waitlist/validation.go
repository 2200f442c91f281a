package waitlist

import (
	"errors"
	"regexp"

	apperrors "github.com/akeren/launchlist/pkg/errors"
	"github.com/go-playground/validator/v10"
)

const (
	MsgNameAndEmailRequired = "Name and email are required"
	MsgInvalidEmailFormat   = "Invalid email format"
	MsgFailedToAddUser      = "Failed to add user"
)

// ecmaWhitespace is the ECMAScript WhiteSpace and LineTerminator set. RE2's
// \s covers only the ASCII part of it.
const ecmaWhitespace = `\t\n\v\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`

// emailPattern accepts local@domain.tld with no whitespace and no extra @.
var emailPattern = regexp.MustCompile(`^[^` + ecmaWhitespace + `@]+@[^` + ecmaWhitespace + `@]+\.[^` + ecmaWhitespace + `@]+$`)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails on an empty tag or a nil func.
	_ = v.RegisterValidation("waitlist_email", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})

	return v
}

// validateJoinRequest reports at most one problem. Missing fields win over a
// malformed email, whatever order the validator lists them in.
func validateJoinRequest(v *validator.Validate, req *JoinWaitlistRequest) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.NewInternalServerError("waitlist request validation failed", err)
	}

	for _, fieldError := range validationErrors {
		if fieldError.Tag() == "required" {
			return apperrors.NewInvalidRequestError(MsgNameAndEmailRequired, err)
		}
	}

	return apperrors.NewInvalidRequestError(MsgInvalidEmailFormat, err)
}
