package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrBinding: the body is not JSON of the expected shape.
	ErrBinding = errors.New("binding failed")

	// ErrValidation: the body decoded but broke a validate tag.
	ErrValidation = errors.New("validation failed")
)

// Validator is shared by the webhook, the quote endpoint and msgctl. Field
// errors use JSON names, so nested failures read "sender.email".
var Validator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
})

// Validate checks v's validate tags.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindAndValidate decodes the JSON body into v and validates it. The raw body
// stays cached on c for a second bind.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindBodyWith(v, binding.JSON); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// IsValidationError reports whether err carries validator field errors.
func IsValidationError(err error) bool {
	var fields validator.ValidationErrors
	return errors.As(err, &fields)
}

// ValidationErrors maps each failing field path to a readable message.
func ValidationErrors(err error) map[string]string {
	out := map[string]string{}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return out
	}

	for _, fe := range fields {
		_, path, _ := strings.Cut(fe.Namespace(), ".")
		out[path] = describe(fe)
	}

	return out
}

func describe(fe validator.FieldError) string {
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}

	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "bcp47_language_tag":
		return "must be a BCP 47 language tag"
	case "min":
		return "must be at least " + fe.Param() + unit
	case "max":
		return "must be at most " + fe.Param() + unit
	default:
		return "failed validation: " + fe.Tag()
	}
}
