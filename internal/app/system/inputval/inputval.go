// Package inputval validates request payloads declared with `validate` and
// `label` struct tags and turns failures into messages fit for API clients.
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string // label (or Go field name when no label tag is set)
	Tag     string // validator rule that failed, e.g. "required"
	Message string
}

// Result collects validation failures in field order.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return r != nil && len(r.Errors) > 0 }

// First returns the first message, or "" when valid.
func (r *Result) First() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if l := f.Tag.Get("label"); l != "" {
			return l
		}
		return f.Name
	})
	registerRules(v)
	return v
}

// Validate runs the struct's rules. A nil or non-struct value yields a
// single generic failure.
func Validate(s any) *Result {
	err := validate.Struct(s)
	if err == nil {
		return &Result{}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Result{Errors: []FieldError{{Tag: "invalid", Message: "Invalid input."}}}
	}
	res := &Result{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		if isCollection(fe.Kind()) {
			return fmt.Sprintf("%s must have at most %s items.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		if isCollection(fe.Kind()) {
			return fmt.Sprintf("%s must have at least %s items.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "email":
		return "A valid email address is required."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(strings.Fields(fe.Param()), ", "))
	case "objectid":
		return label + " must be a valid ID."
	case "url", "httpurl":
		return label + " must be a valid http(s) URL."
	case "usertype":
		return label + " must be student or business."
	case "entrystatus":
		return label + " must be active or submitted."
	case "required_without":
		return fmt.Sprintf("%s is required when %s is empty.", label, fe.Param())
	}
	return label + " is invalid."
}

func isCollection(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array || k == reflect.Map
}
