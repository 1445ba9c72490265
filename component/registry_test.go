package component

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/randstream/errors"
	"github.com/c360/randstream/natsclient"
)

type mockComponent struct {
	name        string
	inputPorts  []Port
	outputPorts []Port
	rawConfig   json.RawMessage
}

func newMockComponent(name string) *mockComponent {
	return &mockComponent{
		name: name,
		inputPorts: []Port{{
			Name:      "input",
			Direction: DirectionInput,
			Required:  true,
			Config:    NATSPort{Subject: "test.input"},
		}},
		outputPorts: []Port{{
			Name:      "output",
			Direction: DirectionOutput,
			Config:    NATSPort{Subject: "test.output"},
		}},
	}
}

func (m *mockComponent) Meta() Metadata {
	return Metadata{Name: m.name, Type: "processor", Description: "mock", Version: "1.0.0"}
}
func (m *mockComponent) InputPorts() []Port         { return m.inputPorts }
func (m *mockComponent) OutputPorts() []Port        { return m.outputPorts }
func (m *mockComponent) ConfigSchema() ConfigSchema { return ConfigSchema{} }
func (m *mockComponent) Health() HealthStatus       { return HealthStatus{Healthy: true} }
func (m *mockComponent) DataFlow() FlowMetrics      { return FlowMetrics{} }

// exclusivePort is only used to exercise resource conflict detection
type exclusivePort struct{ id string }

func (e exclusivePort) ResourceID() string { return "exclusive:" + e.id }
func (e exclusivePort) IsExclusive() bool  { return true }
func (e exclusivePort) Type() string       { return "exclusive" }

func mockFactory(rawConfig json.RawMessage, _ Dependencies) (Discoverable, error) {
	comp := newMockComponent("mock")
	comp.rawConfig = rawConfig
	return comp, nil
}

func testDeps(t *testing.T) Dependencies {
	t.Helper()
	client, err := natsclient.NewClient("nats://127.0.0.1:4222")
	require.NoError(t, err)
	return Dependencies{NATSClient: client}
}

func registerMock(t *testing.T, r *Registry) {
	t.Helper()
	require.NoError(t, r.RegisterWithConfig(RegistrationConfig{
		Name:        "mock",
		Factory:     mockFactory,
		Schema:      ConfigSchema{Properties: map[string]PropertySchema{"x": {Type: "int"}}},
		Type:        "processor",
		Protocol:    "nats",
		Domain:      "test",
		Description: "Mock processor",
		Version:     "1.0.0",
	}))
}

func TestRegistry_RegisterFactory(t *testing.T) {
	r := NewRegistry()
	registerMock(t, r)

	err := r.RegisterWithConfig(RegistrationConfig{Name: "mock", Factory: mockFactory, Type: "processor"})
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	tests := []struct {
		name string
		reg  *Registration
		key  string
	}{
		{"empty name", &Registration{Factory: mockFactory, Type: "processor"}, ""},
		{"bad name", &Registration{Factory: mockFactory, Type: "processor"}, "has space"},
		{"nil registration", nil, "nil-reg"},
		{"nil factory", &Registration{Type: "processor"}, "nil-factory"},
		{"empty type", &Registration{Factory: mockFactory}, "no-type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.RegisterFactory(tt.key, tt.reg)
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
		})
	}

	assert.Equal(t, []string{"mock"}, r.ListComponentTypes())
	factory, ok := r.GetFactory("mock")
	assert.True(t, ok)
	assert.NotNil(t, factory)
	_, ok = r.GetFactory("missing")
	assert.False(t, ok)
}

func TestRegistry_Schemas(t *testing.T) {
	r := NewRegistry()
	registerMock(t, r)

	schema, err := r.GetComponentSchema("mock")
	require.NoError(t, err)
	assert.Contains(t, schema.Properties, "x")

	_, err = r.GetComponentSchema("missing")
	assert.True(t, errors.IsInvalid(err))

	available := r.ListAvailable()
	require.Contains(t, available, "mock")
	assert.Equal(t, Info{
		Type:        "processor",
		Protocol:    "nats",
		Domain:      "test",
		Description: "Mock processor",
		Version:     "1.0.0",
	}, available["mock"])
}

func TestRegistry_CreateComponent(t *testing.T) {
	r := NewRegistry()
	registerMock(t, r)
	deps := testDeps(t)

	raw := json.RawMessage(`{"x": 1}`)
	comp, err := r.CreateComponent("mock-1", ComponentConfig{
		Type:    TypeProcessor,
		Name:    "mock",
		Enabled: true,
		Config:  raw,
	}, deps)
	require.NoError(t, err)
	assert.Equal(t, "mock", comp.Meta().Name)
	assert.JSONEq(t, `{"x": 1}`, string(comp.(*mockComponent).rawConfig))

	assert.Same(t, comp, r.Component("mock-1"))
	assert.Len(t, r.ListComponents(), 1)
	assert.Equal(t, []string{"mock-1"}, r.InstanceNames())

	_, err = r.CreateComponent("mock-1", ComponentConfig{Type: TypeProcessor, Name: "mock"}, deps)
	assert.True(t, errors.IsInvalid(err), "duplicate instance")

	r.UnregisterInstance("mock-1")
	assert.Nil(t, r.Component("mock-1"))
	assert.Empty(t, r.InstanceNames())
	r.UnregisterInstance("mock-1")
}

func TestRegistry_CreateComponentRejects(t *testing.T) {
	r := NewRegistry()
	registerMock(t, r)
	deps := testDeps(t)

	tests := []struct {
		name     string
		instance string
		config   ComponentConfig
		deps     Dependencies
	}{
		{"bad instance name", "bad/name", ComponentConfig{Type: TypeProcessor, Name: "mock"}, deps},
		{"missing type", "a", ComponentConfig{Name: "mock"}, deps},
		{"invalid type", "a", ComponentConfig{Type: "storage", Name: "mock"}, deps},
		{"unknown factory", "a", ComponentConfig{Type: TypeProcessor, Name: "nope"}, deps},
		{"type mismatch", "a", ComponentConfig{Type: TypeOutput, Name: "mock"}, deps},
		{"no nats client", "a", ComponentConfig{Type: TypeProcessor, Name: "mock"}, Dependencies{}},
		{"invalid json", "a", ComponentConfig{Type: TypeProcessor, Name: "mock", Config: json.RawMessage(`{`)}, deps},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.CreateComponent(tt.instance, tt.config, tt.deps)
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
		})
	}
	assert.Empty(t, r.ListComponents())
}

func TestRegistry_ResourceConflicts(t *testing.T) {
	r := NewRegistry()

	first := newMockComponent("first")
	first.outputPorts = append(first.outputPorts, Port{Name: "lock", Config: exclusivePort{id: "a"}})
	require.NoError(t, r.RegisterInstance("first", first))

	second := newMockComponent("second")
	second.inputPorts = append(second.inputPorts, Port{Name: "lock", Config: exclusivePort{id: "a"}})
	err := r.RegisterInstance("second", second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource conflict")

	r.UnregisterInstance("first")
	assert.NoError(t, r.RegisterInstance("second", second))

	// shared NATS subjects never conflict
	assert.NoError(t, r.RegisterInstance("third", newMockComponent("third")))
	assert.NoError(t, r.RegisterInstance("fourth", newMockComponent("fourth")))
}

func TestRegistry_RegisterInstanceRejects(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.RegisterInstance("", newMockComponent("x")))
	assert.Error(t, r.RegisterInstance("x", nil))
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	registerMock(t, r)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("inst-%d", i)
			assert.NoError(t, r.RegisterInstance(name, newMockComponent(name)))
			_ = r.ListComponents()
			_ = r.ListAvailable()
		}(i)
	}
	wg.Wait()
	assert.Len(t, r.InstanceNames(), 20)
}

func TestValidateComponentName(t *testing.T) {
	for _, ok := range []string{"random_number", "random-main", "a.b.c", "A1"} {
		assert.NoError(t, ValidateComponentName(ok), ok)
	}
	for _, bad := range []string{"", "has space", "slash/name", "semi;colon", string(make([]byte, MaxNameLength+1))} {
		assert.Error(t, ValidateComponentName(bad), bad)
	}
}

func TestComponentConfig_Validate(t *testing.T) {
	assert.NoError(t, ComponentConfig{Type: TypeProcessor, Name: "x"}.Validate())
	assert.True(t, errors.IsInvalid(ComponentConfig{Name: "x"}.Validate()))
	assert.True(t, errors.IsInvalid(ComponentConfig{Type: TypeInput}.Validate()))
	assert.True(t, errors.IsInvalid(ComponentConfig{Type: "gateway", Name: "x"}.Validate()))
	assert.Equal(t, "processor", TypeProcessor.String())
}

func TestDependencies(t *testing.T) {
	var deps Dependencies
	assert.NotNil(t, deps.GetLogger())
	assert.NotNil(t, deps.GetLoggerWithComponent("x"))
	assert.Nil(t, deps.CoreMetrics())
}

func TestLifecycleHelpers(t *testing.T) {
	comp := newMockComponent("x")
	assert.False(t, IsLifecycleComponent(comp))
	_, ok := AsLifecycleComponent(comp)
	assert.False(t, ok)

	assert.Equal(t, "created", StateCreated.String())
	assert.Equal(t, "started", StateStarted.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(42).String())
}
