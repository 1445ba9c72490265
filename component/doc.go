// Package component provides the component infrastructure for randstream:
// discovery, lifecycle, ports, factory registration and instance creation.
//
// # Overview
//
// A component is a self-describing unit that the host process creates from
// configuration, initializes, starts and stops. Every component implements
// Discoverable so the host can report its metadata, ports, configuration
// schema, health and data flow. Components that own goroutines or
// subscriptions also implement LifecycleComponent.
//
// # Registration
//
// Registration is explicit. Each component package exports a
// Register(*Registry) error function, componentregistry.Register calls all of
// them, and cmd/randstream calls componentregistry.Register on a freshly
// created Registry:
//
//	func Register(registry *component.Registry) error {
//		return registry.RegisterWithConfig(component.RegistrationConfig{
//			Name:        "random_number",
//			Factory:     NewProcessor,
//			Schema:      randomSchema,
//			Type:        "processor",
//			Protocol:    "nats",
//			Domain:      "sampling",
//			Description: "Appends a sampled random field to every record",
//			Version:     "1.0.0",
//		})
//	}
//
// # Instances
//
// CreateComponent looks up the factory named by ComponentConfig.Name, checks
// that its registered type matches ComponentConfig.Type, validates the raw
// config, runs the factory and records the instance under its instance name:
//
//	comp, err := registry.CreateComponent("random-main", component.ComponentConfig{
//		Type:    component.TypeProcessor,
//		Name:    "random_number",
//		Enabled: true,
//		Config:  json.RawMessage(`{"distribution":"Normal"}`),
//	}, deps)
//
// Factories never perform I/O. Subscriptions and connections are made in
// Start and released in Stop.
//
// # Lifecycle
//
//	Initialize() error                  // validate and allocate, no I/O
//	Start(ctx context.Context) error    // subscribe, spawn workers
//	Stop(timeout time.Duration) error   // drain and release
//
// # Configuration schemas
//
// Component config structs carry `schema` struct tags next to their `json`
// tags. GenerateConfigSchema turns them into a ConfigSchema once at package
// init:
//
//	type Config struct {
//		Seed int64 `json:"seed" schema:"type:int,description:Random seed,default:0"`
//	}
//
//	var schema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))
package component
