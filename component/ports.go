package component

// DefaultInterfaceVersion is attached to interface contracts built from
// port definitions.
const DefaultInterfaceVersion = "v1"

// PortDefinition represents a port configuration from JSON
type PortDefinition struct {
	Name        string `json:"name"                  schema:"readonly,type:string,description:Port identifier"`
	Type        string `json:"type,omitempty"        schema:"readonly,type:string,description:Port type (nats or jetstream)"`
	Subject     string `json:"subject,omitempty"     schema:"editable,type:string,description:NATS subject pattern"`
	Interface   string `json:"interface,omitempty"   schema:"readonly,type:string,description:Interface contract type"`
	Required    bool   `json:"required,omitempty"    schema:"readonly,type:bool,description:Whether port connection is required"`
	Description string `json:"description,omitempty" schema:"readonly,type:string,description:Human-readable port description"`
	StreamName  string `json:"stream_name,omitempty" schema:"editable,type:string,description:JetStream stream name"`
}

// PortConfig represents port configuration in component config
type PortConfig struct {
	Inputs  []PortDefinition `json:"inputs,omitempty"`
	Outputs []PortDefinition `json:"outputs,omitempty"`
}

// FindInput returns the input definition with the given name
func (pc *PortConfig) FindInput(name string) (PortDefinition, bool) {
	if pc == nil {
		return PortDefinition{}, false
	}
	return findDefinition(pc.Inputs, name)
}

// FindOutput returns the output definition with the given name
func (pc *PortConfig) FindOutput(name string) (PortDefinition, bool) {
	if pc == nil {
		return PortDefinition{}, false
	}
	return findDefinition(pc.Outputs, name)
}

func findDefinition(defs []PortDefinition, name string) (PortDefinition, bool) {
	for _, def := range defs {
		if def.Name == name {
			return def, true
		}
	}
	return PortDefinition{}, false
}

// MergePortConfigs merges default ports with configured overrides.
// Overrides replace defaults by name; unmatched overrides are appended in
// the order given.
func MergePortConfigs(defaults []Port, overrides []PortDefinition, direction Direction) []Port {
	result := make([]Port, 0, len(defaults)+len(overrides))
	overrideMap := make(map[string]PortDefinition, len(overrides))
	for _, override := range overrides {
		overrideMap[override.Name] = override
	}

	for _, defaultPort := range defaults {
		if override, found := overrideMap[defaultPort.Name]; found {
			result = append(result, BuildPortFromDefinition(override, direction))
			delete(overrideMap, defaultPort.Name)
		} else {
			result = append(result, defaultPort)
		}
	}

	for _, override := range overrides {
		if _, pending := overrideMap[override.Name]; pending {
			result = append(result, BuildPortFromDefinition(override, direction))
			delete(overrideMap, override.Name)
		}
	}

	return result
}

// BuildPortFromDefinition creates a Port from a PortDefinition
func BuildPortFromDefinition(def PortDefinition, direction Direction) Port {
	port := Port{
		Name:        def.Name,
		Direction:   direction,
		Required:    def.Required,
		Description: def.Description,
	}

	var iface *InterfaceContract
	if def.Interface != "" {
		iface = &InterfaceContract{
			Type:    def.Interface,
			Version: DefaultInterfaceVersion,
		}
	}

	switch def.Type {
	case "jetstream":
		port.Config = JetStreamPort{
			StreamName: def.StreamName,
			Subjects:   []string{def.Subject},
			Interface:  iface,
		}
	default: // Default to NATS pub/sub
		port.Config = NATSPort{
			Subject:   def.Subject,
			Interface: iface,
		}
	}

	return port
}
