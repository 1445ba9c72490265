package component

import (
	"encoding/json"
	"fmt"

	"github.com/c360/randstream/errors"
)

// Type represents the category of a component
type Type string

// Component type constants
const (
	TypeInput     Type = "input"
	TypeProcessor Type = "processor"
	TypeOutput    Type = "output"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// ComponentConfig provides configuration for creating a component instance.
// The instance name comes from the map key in the components configuration.
type ComponentConfig struct {
	Type    Type            `json:"type"`    // Component type (input/processor/output)
	Name    string          `json:"name"`    // Factory name (e.g., "random_number")
	Enabled bool            `json:"enabled"` // Whether component is enabled
	Config  json.RawMessage `json:"config"`  // Component-specific configuration
}

// Validate ensures the component configuration is valid
func (c ComponentConfig) Validate() error {
	if c.Type == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "ComponentConfig", "Validate",
			"component type cannot be empty")
	}
	if c.Name == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "ComponentConfig", "Validate",
			"component factory name cannot be empty")
	}

	switch c.Type {
	case TypeInput, TypeProcessor, TypeOutput:
		return nil
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "ComponentConfig", "Validate",
			fmt.Sprintf("invalid component type: %s", c.Type))
	}
}
