package analysis

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// ValidationError lists the form fields that are missing or invalid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("please fill in: %s", strings.Join(e.Fields, ", "))
}

// Validate checks the fields the form marks as required for the draft's tab.
func Validate(draft Draft) error {
	if draft.ActiveTab == "" {
		draft.ActiveTab = TabManual
	}

	err := validate.Struct(draft)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, fe.Field())
	}

	return verr
}
