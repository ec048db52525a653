package filterdsl

import (
	"fmt"

	"github.com/spf13/cast"
)

// Value is an immutable, type-tagged scalar carried by a Rule. Text segments
// hold a string; numeric segments hold a float64 (the widest representation
// that still round-trips integer counts and currency amounts cleanly).
type Value struct {
	str    string
	num    float64
	isText bool
}

// Text builds a text Value.
func Text(v string) Value {
	return Value{str: v, isText: true}
}

// Number builds a numeric Value.
func Number(v float64) Value {
	return Value{num: v}
}

// IsText reports whether the value was constructed via Text.
func (v Value) IsText() bool {
	return v.isText
}

// AsText returns the string form of the value, regardless of how it was
// constructed, matching Tangerg's filter.Expression cast-to-string idiom.
func (v Value) AsText() string {
	if v.isText {
		return v.str
	}
	return cast.ToString(v.num)
}

// AsNumber returns the numeric form of the value.
func (v Value) AsNumber() float64 {
	if !v.isText {
		return v.num
	}
	return cast.ToFloat64(v.str)
}

func (v Value) String() string {
	return v.AsText()
}

// FromAny coerces a loosely-typed JSON-decoded value (string, float64, int,
// json.Number, bool) into a Value matching the given segment kind. LLM
// extraction and client-submitted filters both decode into `any` first, so
// every Rule value passes through here before entering the DSL.
func FromAny(raw any, text bool) (Value, error) {
	if raw == nil {
		return Value{}, fmt.Errorf("filterdsl: nil value")
	}
	if text {
		return Text(cast.ToString(raw)), nil
	}
	n, err := cast.ToFloat64E(raw)
	if err != nil {
		return Value{}, fmt.Errorf("filterdsl: value %v is not numeric: %w", raw, err)
	}
	return Number(n), nil
}
