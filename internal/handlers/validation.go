package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/BradenHooton/tiktok-automation/internal/models"
	"github.com/go-playground/validator/v10"
)

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Global validator instance (reused across all handlers)
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their wire names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	mustRegister(v, "handle", func(fl validator.FieldLevel) bool {
		return handlePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "country", func(fl validator.FieldLevel) bool {
		return models.IsValidCountry(fl.Field().String())
	})
	mustRegister(v, "sharetype", func(fl validator.FieldLevel) bool {
		return models.IsValidShareType(fl.Field().String())
	})
	mustRegister(v, "tiktokurl", func(fl validator.FieldLevel) bool {
		return strings.HasPrefix(fl.Field().String(), models.TikTokURLPrefix)
	})
	mustRegister(v, "proxyaddr", func(fl validator.FieldLevel) bool {
		return models.IsValidProxyAddress(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// ValidateRequest validates a request struct using go-playground/validator.
// The first failing field is returned as a *models.ValidationError.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return models.NewValidationError(ve[0].Field(), formatValidationError(ve[0]))
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// formatValidationError converts a validator FieldError to a user-friendly message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "uuid":
		return "must be a valid id"
	case "handle":
		return "may only contain letters, digits and underscores"
	case "country":
		return "unsupported country"
	case "sharetype":
		return "must be one of: copy, facebook, twitter, whatsapp, telegram"
	case "tiktokurl":
		return "must start with " + models.TikTokURLPrefix
	case "proxyaddr":
		return "must be an IPv4 address and port"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
