package middleware

import (
	"encoding/json"
	"net/http"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("password", strongPassword)
}

// strongPassword requires at least 8 characters with one uppercase
// letter, one lowercase letter, one digit, and one special character.
func strongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasDigit && hasSpecial
}

// ValidateRequest validates a struct against its validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// ValidateVar validates a single value against a tag expression. Used
// for request bodies that are not structs, like the order item array.
func ValidateVar(v interface{}, tag string) error {
	return validate.Var(v, tag)
}

// DecodeAndValidate decodes a JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return ValidateRequest(v)
}

// FormatValidationErrors converts validator errors into the message
// strings carried by the envelope's errors list. Returns nil when err
// is not a validation error.
func FormatValidationErrors(err error) []string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, e.Field()+": "+validationMessage(e))
	}
	return messages
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "invalid email format"
	case "alphanum":
		return "must contain only letters and numbers"
	case "password":
		return "must be at least 8 characters and include one uppercase letter, one lowercase letter, one number, and one special character"
	case "min":
		return "value is too short or too small (minimum " + e.Param() + ")"
	case "max":
		return "value is too long or too large (maximum " + e.Param() + ")"
	case "gt":
		return "value must be greater than " + e.Param()
	case "gte":
		return "value must be greater than or equal to " + e.Param()
	case "uuid4":
		return "must be a valid UUID"
	case "unique":
		return "duplicate entries are not allowed"
	default:
		return "invalid value"
	}
}
