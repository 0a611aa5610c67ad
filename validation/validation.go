// Package validation contains the client-side checks that test bodies run on a payload
// before sending it. Every function here is pure: none of them performs a call.
package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Rule names reported in Error.Rule.
const (
	RuleRequired = "required"
	RuleType     = "type"
	RuleInteger  = "integer"
	RuleMin      = "min"
	RuleMax      = "max"
)

// Error identifies the first rule a payload broke.
type Error struct {
	Rule   string
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Range constrains a numeric field. Nil bounds are open.
type Range struct {
	Field   string
	Min     *float64
	Max     *float64
	Integer bool
}

// Rules lists the fields a payload must carry and the numeric ranges it must respect.
// Field names may be dotted paths into nested objects, such as "customer.name".
type Rules struct {
	Required []string
	Ranges   []Range
}

// Bound returns a pointer to f, for use in Range literals.
func Bound(f float64) *float64 {
	return &f
}

// Check applies rules to a payload. Required fields are checked first, in order, then
// ranges, in order; the first failure is returned as an *Error. A range on a field that is
// absent is not checked.
func Check(payload any, rules Rules) error {
	v := ldvalue.CopyArbitraryValue(payload)
	for _, name := range rules.Required {
		if lookup(v, name).IsNull() {
			return &Error{Rule: RuleRequired, Field: name, Reason: fmt.Sprintf("%s is required", name)}
		}
	}
	for _, r := range rules.Ranges {
		if err := checkRange(lookup(v, r.Field), r); err != nil {
			return err
		}
	}
	return nil
}

func checkRange(v ldvalue.Value, r Range) error {
	if v.IsNull() {
		return nil
	}
	if !v.IsNumber() {
		return &Error{Rule: RuleType, Field: r.Field, Reason: fmt.Sprintf("%s must be a number", r.Field)}
	}
	n := v.Float64Value()
	if r.Integer && n != math.Trunc(n) {
		return &Error{Rule: RuleInteger, Field: r.Field, Reason: fmt.Sprintf("%s must be an integer", r.Field)}
	}
	if r.Min != nil && n < *r.Min {
		return &Error{Rule: RuleMin, Field: r.Field,
			Reason: fmt.Sprintf("%s must be at least %s", r.Field, formatNumber(*r.Min))}
	}
	if r.Max != nil && n > *r.Max {
		return &Error{Rule: RuleMax, Field: r.Field,
			Reason: fmt.Sprintf("%s must be at most %s", r.Field, formatNumber(*r.Max))}
	}
	return nil
}

func lookup(v ldvalue.Value, path string) ldvalue.Value {
	for _, key := range strings.Split(path, ".") {
		if v.Type() != ldvalue.ObjectType {
			return ldvalue.Null()
		}
		v = v.GetByKey(key)
	}
	return v
}

func formatNumber(f float64) string {
	return ldvalue.Float64(f).JSONString()
}
