// Package record provides the in-memory representation of the records that
// flow through a stream: an ordered Schema of typed field descriptors and a
// positional Record of values matching it.
//
// Schemas are immutable. Append returns a new schema with one more field,
// which is how a processor derives its output schema from the upstream one:
//
//	out, err := in.Append(record.FieldDescriptor{Name: "Random", Kind: record.KindDouble})
//	copier, err := record.NewCopier(in, out)
//	slot, err := out.Slot("Random")
//
//	rec := record.New(out)
//	_ = copier.Copy(rec, upstreamRecord)
//	slot.SetFromDouble(rec, 0.42)
//
// # Numeric conversion
//
// Slot.SetFromDouble writes a float64 into a field according to its kind:
// double is passed through, float is narrowed to float32, and the integer
// kinds round half away from zero. NaN, infinities, and values outside the
// integer range leave the field null.
//
// # JSON
//
// Schemas encode as {"fields":[{"name":..,"type":..}]} and records as
// {"values":[...]}. Non-finite floats are written as the strings "NaN",
// "+Inf" and "-Inf" because encoding/json rejects them. Coerce restores
// JSON-decoded values to the Go types of a schema.
package record
