package taskapp

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kpitools/webapps/internal/core/domain"
)

var alphaSpaceRe = regexp.MustCompile(`^[A-Za-z\s]+$`)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
// Failures surface as domain.ValidationError with one message per field.
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// It registers the alphaspace rule used by task names.
func NewValidator() *echoValidator {
	v := validator.New()
	_ = v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return alphaSpaceRe.MatchString(fl.Field().String())
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}

	var out domain.ValidationError
	for _, fe := range ves {
		out.Add(strings.ToLower(fe.Field()), fieldError(fe))
	}
	return out
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "alphaspace":
		return field + " can only contain alphabets and spaces"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
