// Package validation checks the create/edit payloads against their
// `validate` struct tags and turns failures into per-field messages keyed
// by the JSON field name, the same shape the backend returns with a 422.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return v
}

// Fields maps a JSON field name to its messages.
type Fields map[string][]string

// Struct validates s. It returns nil when s is valid.
func Struct(s any) Fields {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Fields{"_": {err.Error()}}
	}

	out := make(Fields, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = append(out[fe.Field()], message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return minMax(fe, "at least")
	case "max":
		return minMax(fe, "at most")
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be " + fe.Param() + " or more"
	case "lte":
		return "must be " + fe.Param() + " or less"
	default:
		return "is invalid"
	}
}

func minMax(fe validator.FieldError, bound string) string {
	if fe.Kind() == reflect.String {
		return fmt.Sprintf("must be %s %s characters", bound, fe.Param())
	}
	return fmt.Sprintf("must be %s %s", bound, fe.Param())
}
