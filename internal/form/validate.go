// Package form holds the editable state behind the event and account forms
// and turns it into request payloads.
//
// Field values are kept in their form representation (date-times as
// YYYY-MM-DDTHH:MM, numbers as text) so a view can bind them directly.
package form

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrEndBeforeStart   = errors.New("end time must not be before start time")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// FieldError reports the first invalid field of a form.
type FieldError struct {
	Field string
	Rule  string
}

func (e *FieldError) Error() string {
	switch e.Rule {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "email":
		return fmt.Sprintf("%s is not a valid e-mail address", e.Field)
	case "number":
		return fmt.Sprintf("%s must be a whole number of minutes, 0 or more", e.Field)
	case "min":
		return fmt.Sprintf("%s is too short", e.Field)
	default:
		return fmt.Sprintf("%s is invalid", e.Field)
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return strings.ToLower(f.Name)
	})
	return v
}

// check runs struct validation and reduces the result to a FieldError.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: verrs[0].Field(), Rule: verrs[0].Tag()}
	}
	return err
}
