package record

import (
	"encoding/json"
	"fmt"

	"github.com/c360/randstream/errors"
)

// FieldDescriptor describes one field of a schema
type FieldDescriptor struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"type"`
	Source      string `json:"source,omitempty"`
	Description string `json:"description,omitempty"`
}

// Schema is an ordered, immutable list of field descriptors
type Schema struct {
	fields []FieldDescriptor
	index  map[string]int
}

// NewSchema builds a schema, rejecting empty or duplicate names and unknown kinds
func NewSchema(fields ...FieldDescriptor) (*Schema, error) {
	s := &Schema{
		fields: make([]FieldDescriptor, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if err := s.add(f); err != nil {
			return nil, errors.Wrap(err, "Schema", "NewSchema", fmt.Sprintf("add field %q", f.Name))
		}
	}
	return s, nil
}

// MustSchema is NewSchema that panics on error, for fixtures
func MustSchema(fields ...FieldDescriptor) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) add(f FieldDescriptor) error {
	if f.Name == "" {
		return errors.WrapInvalid(errors.ErrEmptyFieldName, "Schema", "add", "field name validation")
	}
	if _, ok := kindNames[f.Kind]; !ok {
		return errors.WrapInvalid(
			fmt.Errorf("%w: field %q", errors.ErrUnsupportedType, f.Name), "Schema", "add", "field kind validation")
	}
	if _, exists := s.index[f.Name]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrDuplicateField, f.Name), "Schema", "add", "duplicate field check")
	}
	s.index[f.Name] = len(s.fields)
	s.fields = append(s.fields, f)
	return nil
}

// Len returns the number of fields
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Field returns the descriptor at position i
func (s *Schema) Field(i int) FieldDescriptor {
	return s.fields[i]
}

// Fields returns a copy of all descriptors in order
func (s *Schema) Fields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(s.fields))
	copy(out, s.fields)
	return out
}

// Index returns the position of the named field, or -1
func (s *Schema) Index(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Append returns a new schema with f added after the existing fields
func (s *Schema) Append(f FieldDescriptor) (*Schema, error) {
	out, err := NewSchema(append(s.Fields(), f)...)
	if err != nil {
		return nil, errors.Wrap(err, "Schema", "Append", "build output schema")
	}
	return out, nil
}

// Slot resolves a write handle for the named field
func (s *Schema) Slot(name string) (Slot, error) {
	i := s.Index(name)
	if i < 0 {
		return Slot{}, errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrFieldNotFound, name), "Schema", "Slot", "field lookup")
	}
	return Slot{index: i, name: name, kind: s.fields[i].Kind}, nil
}

type schemaJSON struct {
	Fields []FieldDescriptor `json:"fields"`
}

// MarshalJSON implements json.Marshaler
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(schemaJSON{Fields: s.Fields()})
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw schemaJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.WrapInvalid(err, "Schema", "UnmarshalJSON", "decode fields")
	}
	parsed, err := NewSchema(raw.Fields...)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}
