// Package validation checks inbound request payloads (bodies, path
// parameters, query strings bound into structs) before any business logic
// runs. Every violation in a payload is reported, not just the first.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/schoolmgmt/school-api/internal/domain"
)

// Validator wraps a configured go-playground validator. It is safe for
// concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s. It returns nil, a *domain.ValidationErrors listing
// every violation, or an error when s is not a struct.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %T: %w", s, err)
	}

	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	verr := &domain.ValidationErrors{}
	for _, fe := range fieldErrs {
		sf, _ := t.FieldByName(fe.StructField())
		verr.Add(fe.Field(), message(sf, fe))
	}
	return verr
}

// message renders a human-readable message for one violation. A field can
// override the message of a specific rule with a `msg:"rule=text"` tag.
func message(sf reflect.StructField, fe validator.FieldError) string {
	if override, ok := overrides(sf.Tag.Get("msg"))[fe.Tag()]; ok {
		return override
	}

	label := sf.Tag.Get("label")
	if label == "" {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "number", "numeric":
		return label + " must be a valid number"
	case "datetime":
		return label + " must be a date in YYYY-MM-DD format"
	case "eqfield":
		return fmt.Sprintf("%s must match %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	default:
		return label + " is invalid"
	}
}

func overrides(tag string) map[string]string {
	if tag == "" {
		return nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(tag, ";") {
		rule, text, ok := strings.Cut(part, "=")
		if ok {
			out[strings.TrimSpace(rule)] = text
		}
	}
	return out
}
