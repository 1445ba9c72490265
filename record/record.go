package record

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/c360/randstream/errors"
)

// Record is one row of values, positionally matching a schema.
// A nil value is a null field.
type Record struct {
	Values []any `json:"values"`
}

// New returns an all-null record sized for the schema
func New(s *Schema) *Record {
	return &Record{Values: make([]any, s.Len())}
}

// Reset sets every value back to null
func (r *Record) Reset() {
	for i := range r.Values {
		r.Values[i] = nil
	}
}

// Value returns the value at position i
func (r *Record) Value(i int) any {
	return r.Values[i]
}

// MarshalJSON writes non-finite floats as strings
func (r *Record) MarshalJSON() ([]byte, error) {
	values := make([]any, len(r.Values))
	for i, v := range r.Values {
		values[i] = encodeValue(v)
	}
	return json.Marshal(struct {
		Values []any `json:"values"`
	}{Values: values})
}

func encodeValue(v any) any {
	switch n := v.(type) {
	case float64:
		return encodeFloat(n)
	case float32:
		return encodeFloat(float64(n))
	default:
		return v
	}
}

func encodeFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	default:
		return f
	}
}

// Copier copies the leading fields of an input schema into records of an
// output schema that begins with the same fields
type Copier struct {
	width int
}

// NewCopier checks that out starts with every field of in, in order
func NewCopier(in, out *Schema) (*Copier, error) {
	if in.Len() > out.Len() {
		return nil, errors.WrapInvalid(errors.ErrRecordMismatch, "Copier", "NewCopier", "compare schema widths")
	}
	for i := 0; i < in.Len(); i++ {
		a, b := in.Field(i), out.Field(i)
		if a.Name != b.Name || a.Kind != b.Kind {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: field %d is %s/%s, want %s/%s", errors.ErrRecordMismatch, i, b.Name, b.Kind, a.Name, a.Kind),
				"Copier", "NewCopier", "compare fields")
		}
	}
	return &Copier{width: in.Len()}, nil
}

// Copy writes every input value into the matching position of dst
func (c *Copier) Copy(dst, src *Record) error {
	if len(src.Values) != c.width {
		return errors.WrapInvalid(
			fmt.Errorf("%w: got %d values, want %d", errors.ErrRecordMismatch, len(src.Values), c.width),
			"Copier", "Copy", "check input width")
	}
	if len(dst.Values) < c.width {
		return errors.WrapInvalid(errors.ErrRecordMismatch, "Copier", "Copy", "check output width")
	}
	copy(dst.Values, src.Values)
	return nil
}
