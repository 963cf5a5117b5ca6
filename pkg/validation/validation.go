// Package validation wraps go-playground/validator with the custom tags and
// error translation shared by every domain validator.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	apperrors "eventrooms/pkg/errors"
	"eventrooms/pkg/logger"

	"github.com/go-playground/validator/v10"
)

const (
	TagNameText  = "name_text"
	TagPhoneE164 = "phone_e164"
)

var phoneRegex = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors for an AppError details map.
func (v ValidationErrors) Details() map[string]any {
	fields := make(map[string]string, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return map[string]any{"fields": fields}
}

// ToAppError converts a validator failure into a VALIDATION_ERROR AppError
// with per-field details.
func ToAppError(message string, err error) *apperrors.AppError {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

type Validator struct {
	validate *validator.Validate
}

func New(log *logger.Logger) *Validator {
	v := validator.New()

	if err := v.RegisterValidation(TagNameText, validateNameText); err != nil {
		log.Fatal("Failed to register validator", "tag", TagNameText, "error", err)
	}
	if err := v.RegisterValidation(TagPhoneE164, validatePhoneE164); err != nil {
		log.Fatal("Failed to register validator", "tag", TagPhoneE164, "error", err)
	}

	return &Validator{validate: v}
}

// Struct validates s and translates failures into ValidationErrors.
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// validateNameText rejects blank strings and control characters.
func validateNameText(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if strings.TrimSpace(s) == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func validatePhoneE164(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case TagPhoneE164:
			message = fmt.Sprintf("%s must be a valid phone number (e.g., +79123456789)", err.Field())
		case TagNameText:
			message = fmt.Sprintf("%s must not be blank or contain control characters", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
