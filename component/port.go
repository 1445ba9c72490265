package component

import (
	"encoding/json"
	"fmt"

	"github.com/c360/randstream/errors"
)

// Direction for data flow
type Direction string

// Direction constants for port data flow
const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Port describes any I/O interface
type Port struct {
	Name        string    `json:"name"`
	Direction   Direction `json:"direction"`
	Required    bool      `json:"required"`
	Description string    `json:"description"`
	Config      Portable  `json:"config"`
}

// Portable is the transport-specific part of a Port
type Portable interface {
	ResourceID() string // Unique identifier for conflict detection
	IsExclusive() bool  // Whether multiple components can share
	Type() string       // Port type identifier
}

// InterfaceContract defines the expected message interface
type InterfaceContract struct {
	Type       string   `json:"type"`                 // e.g., "message.StreamEvent"
	Version    string   `json:"version,omitempty"`    // e.g., "v1"
	Compatible []string `json:"compatible,omitempty"` // Also accepts these
}

type portConfigEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalJSON wraps the Portable config with its type so it can be rebuilt
// on decode.
func (p Port) MarshalJSON() ([]byte, error) {
	type PortAlias Port

	wrapper := struct {
		PortAlias
		Config json.RawMessage `json:"config"`
	}{
		PortAlias: (PortAlias)(p),
	}

	if p.Config != nil {
		data, err := json.Marshal(p.Config)
		if err != nil {
			return nil, errors.Wrap(err, "Port", "MarshalJSON", "config marshaling")
		}
		configBytes, err := json.Marshal(portConfigEnvelope{Type: p.Config.Type(), Data: data})
		if err != nil {
			return nil, errors.Wrap(err, "Port", "MarshalJSON", "config envelope marshaling")
		}
		wrapper.Config = configBytes
	}

	return json.Marshal(wrapper)
}

// UnmarshalJSON rebuilds the Portable config from its type tag
func (p *Port) UnmarshalJSON(data []byte) error {
	type PortAlias Port

	temp := struct {
		*PortAlias
		Config json.RawMessage `json:"config"`
	}{
		PortAlias: (*PortAlias)(p),
	}

	if err := json.Unmarshal(data, &temp); err != nil {
		return errors.WrapInvalid(err, "Port", "UnmarshalJSON", "port unmarshaling")
	}

	p.Config = nil
	if len(temp.Config) == 0 || string(temp.Config) == "null" {
		return nil
	}

	var envelope portConfigEnvelope
	if err := json.Unmarshal(temp.Config, &envelope); err != nil {
		return errors.WrapInvalid(err, "Port", "UnmarshalJSON", "config envelope unmarshaling")
	}

	switch envelope.Type {
	case "nats":
		var natsConfig NATSPort
		if err := json.Unmarshal(envelope.Data, &natsConfig); err != nil {
			return errors.WrapInvalid(err, "Port", "UnmarshalJSON", "nats config unmarshaling")
		}
		p.Config = natsConfig
	case "jetstream":
		var jsConfig JetStreamPort
		if err := json.Unmarshal(envelope.Data, &jsConfig); err != nil {
			return errors.WrapInvalid(err, "Port", "UnmarshalJSON", "jetstream config unmarshaling")
		}
		p.Config = jsConfig
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown config type: %s", envelope.Type),
			"Port", "UnmarshalJSON", "config type validation",
		)
	}

	return nil
}
