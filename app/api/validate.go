package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/lysyi3m/news-comb/app/sources"
)

func init() {
	// Report fields by their wire names so messages match what callers send.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// validate runs the binding rules of a parameter struct.
func validate(params any) error {
	if err := binding.Validator.ValidateStruct(params); err != nil {
		return invalidInput(err)
	}
	return nil
}

// invalidInput converts binding and decoding failures into the input error
// rendered by the tool and REST surfaces.
func invalidInput(err error) error {
	var (
		validationErrs validator.ValidationErrors
		typeErr        *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &validationErrs):
		reasons := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			reasons = append(reasons, describe(fe))
		}
		return &sources.InvalidInputError{Reason: strings.Join(reasons, "; ")}
	case errors.As(err, &typeErr):
		return &sources.InvalidInputError{Reason: fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type)}
	default:
		return &sources.InvalidInputError{Reason: err.Error()}
	}
}

func describe(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "http_url":
		return field + " must be an http or https URL"
	default:
		return fmt.Sprintf("%s failed the %s check", field, fe.Tag())
	}
}
