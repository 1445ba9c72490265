package message

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/randstream/errors"
	"github.com/c360/randstream/record"
)

var testSchema = record.MustSchema(
	record.FieldDescriptor{Name: "id", Kind: record.KindInt64},
	record.FieldDescriptor{Name: "label", Kind: record.KindString},
	record.FieldDescriptor{Name: "Random", Kind: record.KindDouble, Source: "RandomNumber"},
)

func lookup(streamID string) *record.Schema {
	if streamID == "s1" {
		return testSchema
	}
	return nil
}

func TestStreamEvent_Creation(t *testing.T) {
	ev := NewSchemaEvent("s1", "reader", testSchema)

	assert.Equal(t, EventSchema, ev.Type)
	assert.Equal(t, "s1", ev.StreamID)
	assert.Equal(t, "reader", ev.Source)
	assert.Len(t, ev.ID, 36)
	assert.WithinDuration(t, time.Now(), ev.Timestamp, time.Second)

	other := NewSchemaEvent("s1", "reader", testSchema)
	assert.NotEqual(t, ev.ID, other.ID)
}

func TestStreamEvent_Options(t *testing.T) {
	ts := time.UnixMilli(1718000000000)
	ev := NewCloseEvent("s1", "reader", true, WithTime(ts), WithID("fixed"))

	assert.Equal(t, "fixed", ev.ID)
	assert.Equal(t, ts, ev.Timestamp)
	assert.True(t, ev.Flag)
}

func TestStreamEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ev      *StreamEvent
		wantErr error
	}{
		{"schema ok", NewSchemaEvent("s1", "x", testSchema), nil},
		{"schema missing", NewSchemaEvent("s1", "x", nil), errors.ErrSchemaUnavailable},
		{"record missing", NewRecordEvent("s1", "x", nil), errors.ErrInvalidData},
		{"no stream id", NewCloseEvent("", "x", true), errors.ErrInvalidData},
		{"bad type", &StreamEvent{Type: "reset", StreamID: "s1"}, errors.ErrInvalidData},
		{"progress ok", NewProgressEvent("s1", "x", 0.5, true), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ev.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestStreamEvent_RecordRoundTrip(t *testing.T) {
	rec := &record.Record{Values: []any{int64(1) << 60, "widget", math.NaN()}}
	ev := NewRecordEvent("s1", "random", rec, WithTime(time.UnixMilli(42)))

	data, err := ev.Marshal()
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Equal(t, "record", generic["type"])
	assert.Equal(t, "s1", generic["stream_id"])
	assert.EqualValues(t, 42, generic["timestamp"])
	assert.NotContains(t, generic, "schema")

	back, err := Decode(data, lookup)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, back.ID)
	assert.Equal(t, EventRecord, back.Type)
	assert.Equal(t, time.UnixMilli(42), back.Timestamp)
	assert.Equal(t, int64(1)<<60, back.Record.Value(0))
	assert.Equal(t, "widget", back.Record.Value(1))
	assert.True(t, math.IsNaN(back.Record.Value(2).(float64)))
}

func TestStreamEvent_SchemaRoundTrip(t *testing.T) {
	data, err := NewSchemaEvent("s2", "reader", testSchema).Marshal()
	require.NoError(t, err)

	back, err := Decode(data, nil)
	require.NoError(t, err)
	require.NotNil(t, back.Schema)
	assert.Equal(t, testSchema.Fields(), back.Schema.Fields())
}

func TestStreamEvent_ProgressAndClose(t *testing.T) {
	data, err := NewProgressEvent("s1", "reader", 0.25, true).Marshal()
	require.NoError(t, err)
	back, err := Decode(data, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.25, back.Progress)
	assert.True(t, back.Flag)

	data, err = NewCloseEvent("s1", "reader", false).Marshal()
	require.NoError(t, err)
	back, err = Decode(data, nil)
	require.NoError(t, err)
	assert.Equal(t, EventClose, back.Type)
	assert.False(t, back.Flag)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte(`{not json`), lookup)
	assert.ErrorIs(t, err, errors.ErrParsingFailed)

	data, err := NewRecordEvent("unknown", "x", &record.Record{Values: []any{1.0}}).Marshal()
	require.NoError(t, err)
	_, err = Decode(data, lookup)
	assert.ErrorIs(t, err, errors.ErrSchemaUnavailable)

	data, err = NewRecordEvent("s1", "x", &record.Record{Values: []any{int64(1)}}).Marshal()
	require.NoError(t, err)
	_, err = Decode(data, lookup)
	assert.ErrorIs(t, err, errors.ErrRecordMismatch)

	_, err = Decode([]byte(`{"id":"a","type":"bogus","stream_id":"s1"}`), lookup)
	assert.ErrorIs(t, err, errors.ErrInvalidData)
}
