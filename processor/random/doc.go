// Package randomprocessor appends one sampled numeric field to every record
// of a stream.
//
// # Overview
//
// The package has two layers. Engine is the per-stream state machine: it
// negotiates the output schema, draws exactly one sample per record and
// forwards progress and shutdown to a Downstream. Processor hosts engines on
// NATS: it subscribes to StreamEvent messages, keeps one Engine per stream_id
// and publishes the augmented stream to its output subject.
//
// # Engine lifecycle
//
//	Uninitialized --OnSchemaReady--> Initialized --OnRecord*--> Initialized --OnClose--> Closed
//
// A failed OnSchemaReady moves the engine to Failed; no record is processed
// afterwards. OnClose closes the downstream exactly once from any state,
// including before the schema arrived.
//
// # Configuration
//
//	{
//	    "output_type": "double",
//	    "output_field": "Random",
//	    "seed": 42,
//	    "distribution": "Normal",
//	    "average": 10,
//	    "standard_deviation": 2,
//	    "ports": {
//	        "inputs":  [{"name": "records_in",  "type": "nats", "subject": "records.raw.>"}],
//	        "outputs": [{"name": "records_out", "type": "nats", "subject": "records.random"}]
//	    }
//	}
//
// A seed of 0 draws from the process-wide shared source; any other seed gives
// the engine a private, reproducible source. Degenerate parameters such as
// maximum <= minimum are accepted and produce NaN or constant output.
//
// # Output field
//
// The appended field carries Source "RandomNumber" and a description built
// from the distribution summary, e.g. "Random Number Normal[10, 2]". Integer
// output kinds round half away from zero; values that do not fit are written
// as null.
package randomprocessor
