package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/c360/randstream/errors"
)

// Coerce converts JSON-decoded values into the Go types of the schema kinds.
// It accepts float64 and json.Number for numbers and the strings written by
// Record.MarshalJSON for non-finite floats.
func Coerce(s *Schema, values []any) (*Record, error) {
	if len(values) != s.Len() {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: got %d values, want %d", errors.ErrRecordMismatch, len(values), s.Len()),
			"record", "Coerce", "check width")
	}
	rec := New(s)
	for i, v := range values {
		f := s.Field(i)
		converted, err := coerceValue(f.Kind, v)
		if err != nil {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: field %q: %v", errors.ErrInvalidData, f.Name, err),
				"record", "Coerce", "convert value")
		}
		rec.Values[i] = converted
	}
	return rec, nil
}

func coerceValue(kind Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("want bool, got %T", v)
		}
		return b, nil
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want string, got %T", v)
		}
		return s, nil
	case KindDouble:
		return toFloat(v)
	case KindFloat:
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		return float32(f), nil
	case KindInt16:
		n, err := toInt(v, math.MinInt16, math.MaxInt16)
		return int16(n), err
	case KindInt32:
		n, err := toInt(v, math.MinInt32, math.MaxInt32)
		return int32(n), err
	case KindInt64:
		return toInt(v, math.MinInt64, math.MaxInt64)
	default:
		return nil, errors.ErrUnsupportedType
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case json.Number:
		return strconv.ParseFloat(n.String(), 64)
	case string:
		// only the non-finite spellings are accepted as strings
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || !(math.IsNaN(f) || math.IsInf(f, 0)) {
			return 0, fmt.Errorf("want number, got string %q", n)
		}
		return f, nil
	case int:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("want number, got %T", v)
	}
}

func toInt(v any, lo, hi int64) (int64, error) {
	var n int64
	switch x := v.(type) {
	case json.Number:
		parsed, err := strconv.ParseInt(x.String(), 10, 64)
		if err != nil {
			return 0, err
		}
		n = parsed
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, fmt.Errorf("want integer, got %v", x)
		}
		n = int64(x)
	case int:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	default:
		return 0, fmt.Errorf("want integer, got %T", v)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}
