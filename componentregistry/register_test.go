package componentregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/randstream/component"
	"github.com/c360/randstream/errors"
)

func TestRegister(t *testing.T) {
	registry := component.NewRegistry()
	require.NoError(t, Register(registry))

	assert.Equal(t, []string{"random_number"}, registry.ListComponentTypes())
	info := registry.ListAvailable()["random_number"]
	assert.Equal(t, "processor", info.Type)

	err := Register(registry)
	require.Error(t, err, "factories cannot be registered twice")
	assert.True(t, errors.IsInvalid(err))
}

func TestRegister_NilRegistry(t *testing.T) {
	err := Register(nil)
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}
