// Package validation wraps go-playground/validator with json field names and
// readable messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type (
	// FieldError is one failed rule, reported to clients.
	FieldError struct {
		Field string `json:"field"`
		Tag   string `json:"tag"`
		Param string `json:"param,omitempty"`
	}

	// Error is returned by services when a request fails validation.
	Error struct {
		Fields []FieldError
	}
)

func (e *Error) Error() string {
	return Message(e.Fields)
}

// New returns a validator that reports json names instead of Go field names.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0] //nolint:mnd
		if name == "-" {
			return ""
		}

		if name == "" {
			return fld.Name
		}

		return name
	})

	return v
}

// Struct validates s and converts failures into *Error.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	return &Error{Fields: Fields(validationErrors)}
}

// Fields flattens validator errors.
func Fields(errs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, len(errs))
	for i, fe := range errs {
		out[i] = FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()}
	}

	return out
}

// Message renders failed fields the way the api reports them.
// Missing fields are collected into one "X, Y field(s) are required." sentence.
func Message(fields []FieldError) string {
	var (
		required []string
		other    []string
	)

	for _, f := range fields {
		switch f.Tag {
		case "required":
			required = append(required, f.Field)
		case "oneof":
			other = append(other, fmt.Sprintf("Invalid %s. Allowed: %s", f.Field, strings.Join(strings.Fields(f.Param), ", ")))
		case "min", "gte":
			other = append(other, fmt.Sprintf("%s must be at least %s", f.Field, f.Param))
		case "max", "lte":
			other = append(other, fmt.Sprintf("%s must be at most %s", f.Field, f.Param))
		case "email":
			other = append(other, "Please provide a valid email!")
		case "eqfield":
			other = append(other, fmt.Sprintf("%s must match %s", f.Field, f.Param))
		default:
			other = append(other, fmt.Sprintf("Invalid %s", f.Field))
		}
	}

	if len(required) > 0 {
		other = append([]string{strings.Join(required, ", ") + " field(s) are required."}, other...)
	}

	return strings.Join(other, "; ")
}

// Required builds the error for fields that were checked by hand.
func Required(fields ...string) *Error {
	e := &Error{Fields: make([]FieldError, len(fields))}
	for i, f := range fields {
		e.Fields[i] = FieldError{Field: f, Tag: "required"}
	}

	return e
}
