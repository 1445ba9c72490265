// Package message defines StreamEvent, the envelope that carries one step of
// a record stream over NATS.
//
// A stream is a sequence of events sharing a StreamID: exactly one schema
// event, any number of record and progress events, then a close event.
//
//	ev := message.NewSchemaEvent("orders-7", "csv-reader", schema)
//	data, err := ev.Marshal()
//
// Record events carry only positional values on the wire. Decode restores
// their Go types from the schema of the stream, which the caller supplies
// through a SchemaLookup:
//
//	ev, err := message.Decode(data, func(streamID string) *record.Schema {
//		return schemas[streamID]
//	})
//
// The wire format is JSON:
//
//	{
//	  "id": "b7f3...",
//	  "type": "record",
//	  "stream_id": "orders-7",
//	  "source": "csv-reader",
//	  "timestamp": 1718000000000,
//	  "record": {"values": [1, "widget", 0.42]}
//	}
package message
