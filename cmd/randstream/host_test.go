package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/randstream/component"
	"github.com/c360/randstream/componentregistry"
	"github.com/c360/randstream/config"
	"github.com/c360/randstream/natsclient"
)

func testHost(t *testing.T) *host {
	t.Helper()
	registry := component.NewRegistry()
	require.NoError(t, componentregistry.Register(registry))

	// NewClient does not dial; creation only needs the handle
	client, err := natsclient.NewClient("nats://localhost:4222")
	require.NoError(t, err)

	return newHost(registry, component.Dependencies{NATSClient: client})
}

func hostConfig(components config.ComponentConfigs) *config.Config {
	cfg := config.Defaults()
	cfg.Platform = config.PlatformConfig{Org: "c360", ID: "lab-1"}
	cfg.Components = components
	return cfg
}

func TestHost_CreateAll(t *testing.T) {
	h := testHost(t)
	cfg := hostConfig(config.ComponentConfigs{
		"random-b": {Type: component.TypeProcessor, Name: "random_number", Enabled: true,
			Config: json.RawMessage(`{"seed": 7}`)},
		"random-a": {Type: component.TypeProcessor, Name: "random_number", Enabled: true},
		"random-off": {Type: component.TypeProcessor, Name: "random_number", Enabled: false},
	})

	require.NoError(t, h.createAll(cfg))
	assert.Equal(t, []string{"random-a", "random-b"}, h.names())
	for _, mc := range h.components {
		assert.Equal(t, component.StateCreated, mc.State)
		assert.NotNil(t, h.registry.Component(mc.Name))
	}
	assert.Nil(t, h.registry.Component("random-off"))

	// nothing started, nothing to stop
	h.stopAll(time.Second)
	for _, mc := range h.components {
		assert.Equal(t, component.StateCreated, mc.State)
	}
}

func TestHost_CreateAll_UnknownFactory(t *testing.T) {
	h := testHost(t)
	cfg := hostConfig(config.ComponentConfigs{
		"mystery": {Type: component.TypeProcessor, Name: "no_such_factory", Enabled: true},
	})

	err := h.createAll(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery")
	assert.Empty(t, h.components)
}

func TestHost_StartAll_FailureMarksComponent(t *testing.T) {
	h := testHost(t)
	cfg := hostConfig(config.ComponentConfigs{
		"random-main": {Type: component.TypeProcessor, Name: "random_number", Enabled: true},
	})
	require.NoError(t, h.createAll(cfg))

	// the client never connected, so subscribing fails
	err := h.startAll(context.Background())
	require.Error(t, err)

	mc := h.components[0]
	assert.Equal(t, component.StateFailed, mc.State)
	assert.Error(t, mc.LastError)
	assert.Zero(t, mc.StartOrder)

	h.stopAll(time.Second)
	assert.Equal(t, component.StateFailed, mc.State)
}
