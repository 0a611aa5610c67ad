package validation

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
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// CheckStruct validates a struct's `validate` tags and reports the first failure as an
// *Error, using the json field names.
func CheckStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return &Error{Rule: RuleRequired, Field: field, Reason: fmt.Sprintf("%s is required", field)}
	case "min", "gte":
		return &Error{Rule: RuleMin, Field: field, Reason: fmt.Sprintf("%s must be at least %s", field, fe.Param())}
	case "max", "lte":
		return &Error{Rule: RuleMax, Field: field, Reason: fmt.Sprintf("%s must be at most %s", field, fe.Param())}
	default:
		return &Error{Rule: fe.Tag(), Field: field, Reason: fmt.Sprintf("%s must satisfy %s", field, fe.Tag())}
	}
}

// fieldPath drops the top-level struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
