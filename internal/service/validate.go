package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dukerupert/shelf/internal/domain"
	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator that reports fields by their JSON name
// and knows the "notblank" tag.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// validateStruct runs v over s and converts failures into a
// *domain.ValidationError keyed by JSON field name.
func validateStruct(v *validator.Validate, op string, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Internal(err, op, "validation failed")
	}

	var out error
	for _, fe := range verrs {
		if out == nil {
			out = domain.NewValidationError(op, fe.Field(), fieldMessage(fe))
		} else {
			out = domain.AddFieldError(out, fe.Field(), fieldMessage(fe))
		}
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	if label == "" {
		return "Invalid value"
	}
	label = strings.ToUpper(label[:1]) + label[1:]

	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return "Please enter a valid email address"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s cannot be negative", label)
	case "lte":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return fmt.Sprintf("%s must be a valid URL", label)
	}
	return fmt.Sprintf("%s is invalid", label)
}
