package message

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/c360/randstream/errors"
	"github.com/c360/randstream/record"
)

// EventType identifies the stream step an event carries
type EventType string

// Event types
const (
	EventSchema   EventType = "schema"
	EventRecord   EventType = "record"
	EventProgress EventType = "progress"
	EventClose    EventType = "close"
)

// IsValid reports whether t is a known event type
func (t EventType) IsValid() bool {
	switch t {
	case EventSchema, EventRecord, EventProgress, EventClose:
		return true
	default:
		return false
	}
}

// StreamEvent is one step of a record stream
type StreamEvent struct {
	ID        string
	Type      EventType
	StreamID  string
	Source    string
	Timestamp time.Time

	Schema   *record.Schema // schema events
	Record   *record.Record // record events
	Progress float64        // progress events
	Flag     bool           // progress and close events
}

// Option configures event construction
type Option func(*StreamEvent)

// WithTime sets the event timestamp instead of time.Now()
func WithTime(ts time.Time) Option {
	return func(e *StreamEvent) {
		e.Timestamp = ts
	}
}

// WithID sets the event ID instead of a fresh UUID
func WithID(id string) Option {
	return func(e *StreamEvent) {
		e.ID = id
	}
}

func newEvent(t EventType, streamID, source string, opts []Option) *StreamEvent {
	e := &StreamEvent{
		ID:        uuid.New().String(),
		Type:      t,
		StreamID:  streamID,
		Source:    source,
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewSchemaEvent announces the schema of a stream
func NewSchemaEvent(streamID, source string, schema *record.Schema, opts ...Option) *StreamEvent {
	e := newEvent(EventSchema, streamID, source, opts)
	e.Schema = schema
	return e
}

// NewRecordEvent carries one record
func NewRecordEvent(streamID, source string, rec *record.Record, opts ...Option) *StreamEvent {
	e := newEvent(EventRecord, streamID, source, opts)
	e.Record = rec
	return e
}

// NewProgressEvent reports the fraction of the stream processed so far
func NewProgressEvent(streamID, source string, fraction float64, flag bool, opts ...Option) *StreamEvent {
	e := newEvent(EventProgress, streamID, source, opts)
	e.Progress = fraction
	e.Flag = flag
	return e
}

// NewCloseEvent ends a stream
func NewCloseEvent(streamID, source string, flag bool, opts ...Option) *StreamEvent {
	e := newEvent(EventClose, streamID, source, opts)
	e.Flag = flag
	return e
}

// Validate checks the envelope and the body required by its type
func (e *StreamEvent) Validate() error {
	if !e.Type.IsValid() {
		return errors.WrapInvalid(errors.ErrInvalidData, "StreamEvent", "Validate",
			fmt.Sprintf("invalid event type: %q", e.Type))
	}
	if e.StreamID == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "StreamEvent", "Validate", "stream_id cannot be empty")
	}
	switch e.Type {
	case EventSchema:
		if e.Schema == nil {
			return errors.WrapInvalid(errors.ErrSchemaUnavailable, "StreamEvent", "Validate", "schema event without schema")
		}
	case EventRecord:
		if e.Record == nil {
			return errors.WrapInvalid(errors.ErrInvalidData, "StreamEvent", "Validate", "record event without record")
		}
	}
	return nil
}

type wireFormat struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	StreamID  string          `json:"stream_id"`
	Source    string          `json:"source,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Schema    *record.Schema  `json:"schema,omitempty"`
	Record    json.RawMessage `json:"record,omitempty"`
	Progress  float64         `json:"progress,omitempty"`
	Flag      bool            `json:"flag,omitempty"`
}

// Marshal validates and encodes the event
func (e *StreamEvent) Marshal() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	wire := wireFormat{
		ID:        e.ID,
		Type:      e.Type,
		StreamID:  e.StreamID,
		Source:    e.Source,
		Timestamp: e.Timestamp.UnixMilli(),
		Schema:    e.Schema,
		Progress:  e.Progress,
		Flag:      e.Flag,
	}
	if e.Record != nil {
		data, err := json.Marshal(e.Record)
		if err != nil {
			return nil, errors.WrapInvalid(err, "StreamEvent", "Marshal", "encode record")
		}
		wire.Record = data
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return nil, errors.WrapInvalid(err, "StreamEvent", "Marshal", "encode envelope")
	}
	return data, nil
}

// SchemaLookup returns the schema of a stream, or nil if none is known
type SchemaLookup func(streamID string) *record.Schema

// Decode parses an event. Record values are coerced against the schema that
// lookup returns for the event's stream.
func Decode(data []byte, lookup SchemaLookup) (*StreamEvent, error) {
	var wire wireFormat
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrParsingFailed, err),
			"StreamEvent", "Decode", "decode envelope")
	}

	e := &StreamEvent{
		ID:       wire.ID,
		Type:     wire.Type,
		StreamID: wire.StreamID,
		Source:   wire.Source,
		Schema:   wire.Schema,
		Progress: wire.Progress,
		Flag:     wire.Flag,
	}
	if wire.Timestamp != 0 {
		e.Timestamp = time.UnixMilli(wire.Timestamp)
	}

	if e.Type == EventRecord && len(wire.Record) > 0 {
		rec, err := decodeRecord(e.StreamID, wire.Record, lookup)
		if err != nil {
			return nil, err
		}
		e.Record = rec
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeRecord(streamID string, data json.RawMessage, lookup SchemaLookup) (*record.Record, error) {
	var schema *record.Schema
	if lookup != nil {
		schema = lookup(streamID)
	}
	if schema == nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: stream %q", errors.ErrSchemaUnavailable, streamID),
			"StreamEvent", "Decode", "schema lookup")
	}

	// numbers stay json.Number so int64 values survive
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw struct {
		Values []any `json:"values"`
	}
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrParsingFailed, err),
			"StreamEvent", "Decode", "decode record")
	}
	rec, err := record.Coerce(schema, raw.Values)
	if err != nil {
		return nil, errors.Wrap(err, "StreamEvent", "Decode", "coerce record")
	}
	return rec, nil
}
