package randomprocessor

import (
	"encoding/json"
	"reflect"

	"github.com/c360/randstream/component"
	"github.com/c360/randstream/errors"
	"github.com/c360/randstream/record"
	"github.com/c360/randstream/sampler"
)

// Default subjects
const (
	DefaultInputSubject  = "records.raw.>"
	DefaultOutputSubject = "records.random"
)

// Config holds configuration for the random number processor
type Config struct {
	Ports *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`

	OutputType  record.Kind `json:"output_type"  schema:"type:enum,enum:double|float|int16|int32|int64,default:double,description:Numeric type of the new field,category:basic"`
	OutputField string      `json:"output_field" schema:"type:string,default:Random,description:Name of the new field,category:basic"`
	Seed        int64       `json:"seed"         schema:"type:int,default:0,description:Private source seed (0 uses the shared source),category:basic"`

	Distribution      sampler.Distribution `json:"distribution"       schema:"type:enum,enum:Uniform|Triangular|Normal|LogNormal,default:Uniform,description:Sampling family,category:basic"`
	Minimum           float64              `json:"minimum"            schema:"type:float,default:0,description:Lower bound for Uniform and Triangular"`
	Maximum           float64              `json:"maximum"            schema:"type:float,default:1,description:Upper bound for Uniform and Triangular"`
	Average           float64              `json:"average"            schema:"type:float,default:0,description:Mean (Normal) or mu (LogNormal) or mode (Triangular)"`
	StandardDeviation float64              `json:"standard_deviation" schema:"type:float,default:1,description:Scale for Normal and LogNormal"`

	StreamName string `json:"stream_name,omitempty" schema:"type:string,description:JetStream stream for output (empty publishes on core NATS),category:advanced"`
}

// DefaultConfig returns the default configuration for the random number processor
func DefaultConfig() Config {
	params := sampler.DefaultParams()

	inputDefs := []component.PortDefinition{
		{
			Name:        "records_in",
			Type:        "nats",
			Subject:     DefaultInputSubject,
			Interface:   "message.StreamEvent",
			Required:    true,
			Description: "Record stream events to augment",
		},
	}

	outputDefs := []component.PortDefinition{
		{
			Name:        "records_out",
			Type:        "nats",
			Subject:     DefaultOutputSubject,
			Interface:   "message.StreamEvent",
			Required:    true,
			Description: "Record stream events with the sampled field appended",
		},
	}

	return Config{
		Ports: &component.PortConfig{
			Inputs:  inputDefs,
			Outputs: outputDefs,
		},
		OutputType:        record.KindDouble,
		OutputField:       params.Field,
		Seed:              params.Seed,
		Distribution:      params.Distribution,
		Minimum:           params.Minimum,
		Maximum:           params.Maximum,
		Average:           params.Average,
		StandardDeviation: params.StandardDeviation,
	}
}

// randomSchema defines the configuration schema for the random number processor
var randomSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Validate checks the fields that would make schema negotiation impossible.
// Distribution parameters are not range checked.
func (c *Config) Validate() error {
	if !c.OutputType.IsOutputKind() {
		return errors.WrapInvalid(errors.ErrUnsupportedType, "Config", "Validate", "output_type check")
	}
	if c.OutputField == "" {
		return errors.WrapInvalid(errors.ErrEmptyFieldName, "Config", "Validate", "output_field check")
	}
	if c.Ports == nil || len(c.Ports.Inputs) == 0 {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "no input ports configured")
	}
	for _, input := range c.Ports.Inputs {
		if input.Subject == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate",
				"input port "+input.Name+" has no subject")
		}
	}
	return nil
}

// ToParams returns the sampler parameters of the config
func (c *Config) ToParams() sampler.Params {
	return sampler.Params{
		Field:             c.OutputField,
		Distribution:      c.Distribution,
		Minimum:           c.Minimum,
		Maximum:           c.Maximum,
		Average:           c.Average,
		StandardDeviation: c.StandardDeviation,
		Seed:              c.Seed,
	}
}

// parseConfig decodes rawConfig over the defaults. A "ports" key replaces
// the default ports as a whole.
func parseConfig(rawConfig []byte) (Config, error) {
	cfg := DefaultConfig()
	var keys map[string]json.RawMessage
	if json.Unmarshal(rawConfig, &keys) == nil {
		if _, ok := keys["ports"]; ok {
			// encoding/json would merge into the default slice elements
			cfg.Ports = nil
		}
	}
	if err := component.SafeUnmarshal(rawConfig, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "RandomProcessor", "parseConfig", "config decode")
	}
	return cfg, nil
}
