// Package randstream appends sampled random numbers to streams of records
// flowing over NATS.
//
// # Architecture
//
// A record stream is a sequence of events on one stream id: a schema, any
// number of records, optional progress updates, and a close. The
// random_number processor subscribes to the input subjects, keeps one
// Engine per stream id and publishes the augmented stream:
//
//	records.raw.> ──► random_number processor ──► records.random
//	                   │
//	                   ├─ Engine (stream a) ── Sampler (seeded or shared)
//	                   └─ Engine (stream b) ── Sampler
//
// Every output schema is the input schema plus one numeric field; every
// output record is a copy of its input record plus exactly one draw.
//
// # Packages
//
//   - record: schemas, typed values and record copying
//   - sampler: Uniform, Triangular, Normal and LogNormal sampling over a
//     seeded or shared source
//   - message: the StreamEvent wire format
//   - processor/random: the Engine and its NATS component
//   - component, componentregistry: discovery, ports and the factory registry
//   - config: layered JSON/YAML configuration with environment overrides
//   - natsclient: NATS connection management with a circuit breaker
//   - metric: Prometheus registry and the metrics endpoint
//   - errors: classified errors (transient, invalid, fatal)
//   - pkg/retry: exponential backoff for startup operations
//
// The cmd/randstream binary wires these together from a config file such
// as configs/randstream.yaml.
package randstream
