package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vaughan-dsouza/certportal/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct tags on v and returns a *models.ValidationError
// describing the first failing field.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.Invalid("invalid request")
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return models.Invalid(fmt.Sprintf("%s is required", fe.Field()))
	case "email":
		return models.Invalid(fmt.Sprintf("%s must be a valid email", fe.Field()))
	case "min":
		return models.Invalid(fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
	case "max":
		return models.Invalid(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	case "oneof":
		return models.Invalid(fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
	default:
		return models.Invalid(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
