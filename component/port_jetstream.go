package component

import "fmt"

// JetStreamPort - NATS JetStream for durable output
type JetStreamPort struct {
	// StreamName e.g. "RANDOM"
	StreamName string `json:"stream_name"`

	// Subjects captured by the stream, e.g. ["records.random.>"]
	Subjects []string `json:"subjects"`

	// Storage is "file" or "memory", default "file"
	Storage string `json:"storage,omitempty"`

	// MaxAge is a Go duration, empty means unlimited
	MaxAge   string `json:"max_age,omitempty"`
	Replicas int    `json:"replicas,omitempty"`

	Interface *InterfaceContract `json:"interface,omitempty"`
}

// ResourceID returns unique identifier for JetStream ports
func (j JetStreamPort) ResourceID() string {
	if j.StreamName != "" {
		return fmt.Sprintf("jetstream:%s", j.StreamName)
	}
	if len(j.Subjects) > 0 {
		return fmt.Sprintf("jetstream:%s", j.Subjects[0])
	}
	return "jetstream:unknown"
}

// IsExclusive returns false as JetStream manages publisher coordination
func (j JetStreamPort) IsExclusive() bool {
	return false
}

// Type returns the port type identifier
func (j JetStreamPort) Type() string {
	return "jetstream"
}
