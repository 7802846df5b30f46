// Package forms turns raw user input into validated request payloads.
// Validation here only spares the user a roundtrip; the server re-checks
// everything.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors for checks that need data from the server.
var (
	ErrDuplicateApplication = errors.New("you have already applied for this position")
	ErrProfileExists        = errors.New("you already have a profile")
	ErrDeadlinePassed       = errors.New("deadline cannot be in the past")
)

// FieldError is a problem with one input field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors collects every field problem in a form.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the message for field, or "".
func (e Errors) Field(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Err returns nil when there are no problems.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e *Errors) add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// check runs the struct tags on s and appends the failures to errs.
func check(s any, errs *Errors) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		errs.add("form", err.Error())
		return
	}
	for _, ve := range ves {
		errs.add(fieldPath(ve), message(ve))
	}
}

func fieldPath(ve validator.FieldError) string {
	ns := ve.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ve.Field()
}

func message(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "is required"
	case "max":
		if ve.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s entries", ve.Param())
		}
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "min":
		if ve.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s entries", ve.Param())
		}
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", ve.Param())
	case "email":
		return "must be a valid email address"
	case "gt":
		return fmt.Sprintf("must be greater than %s", ve.Param())
	default:
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
