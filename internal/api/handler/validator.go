package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/podfetch/authgate/internal/core/domain"
)

// usernameForbidden lists characters that would break the Basic credential
// split or the /auth/{username} path segment.
const usernameForbidden = ":/"

type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns a validator for request bodies that also knows the
// "role" and "username" tags.
func NewValidator() *echoValidator {
	v := validator.New()
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseRole(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return strings.TrimSpace(name) == name && !strings.ContainsAny(name, usernameForbidden)
	})
	return &echoValidator{v: v}
}

func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "role":
		return fmt.Sprintf("role must be one of: %s, %s, %s", domain.RoleAdmin, domain.RoleUploader, domain.RoleRegular)
	case "username":
		return "username must not contain ':' or '/' or surrounding spaces"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must not be empty", field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
