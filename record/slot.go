package record

import "math"

// Slot is a resolved write handle for one field of a schema
type Slot struct {
	index int
	name  string
	kind  Kind
}

// Index returns the field position
func (s Slot) Index() int { return s.index }

// Name returns the field name
func (s Slot) Name() string { return s.name }

// Kind returns the field kind
func (s Slot) Kind() Kind { return s.kind }

// SetFromDouble converts v to the slot kind and stores it. It reports false
// and leaves the field null when v cannot be represented.
func (s Slot) SetFromDouble(rec *Record, v float64) bool {
	converted, ok := FromDouble(s.kind, v)
	if !ok {
		rec.Values[s.index] = nil
		return false
	}
	rec.Values[s.index] = converted
	return true
}

// FromDouble converts v to the Go type stored for kind
func FromDouble(kind Kind, v float64) (any, bool) {
	switch kind {
	case KindDouble:
		return v, true
	case KindFloat:
		return float32(v), true
	case KindInt16:
		r, ok := roundInRange(v, math.MinInt16, math.MaxInt16+1)
		return int16(r), ok
	case KindInt32:
		r, ok := roundInRange(v, math.MinInt32, math.MaxInt32+1)
		return int32(r), ok
	case KindInt64:
		// float64(math.MaxInt64) is 2^63, one past the range
		r, ok := roundInRange(v, math.MinInt64, math.MaxInt64)
		return int64(r), ok
	default:
		return nil, false
	}
}

// roundInRange rounds half away from zero and checks lo <= r < hi
func roundInRange(v, lo, hi float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	r := math.Round(v)
	if r < lo || r >= hi {
		return 0, false
	}
	return r, true
}
