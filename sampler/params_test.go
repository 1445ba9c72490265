package sampler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/randstream/errors"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want string
	}{
		{"uniform default", DefaultParams(), "Random=Rand[0, 1]"},
		{"triangular", Params{Field: "T", Distribution: Triangular, Minimum: 1, Average: 2.5, Maximum: 4}, "T=Tri[1, 2.5, 4]"},
		{"normal", Params{Field: "N", Distribution: Normal, Average: -3, StandardDeviation: 0.125}, "N=Normal[-3, 0.125]"},
		{"lognormal", Params{Field: "L", Distribution: LogNormal, Average: 0, StandardDeviation: 1}, "L=LogNormal[0, 1]"},
		{"large", Params{Field: "U", Distribution: Uniform, Minimum: 0, Maximum: 1e21}, "U=Rand[0, 1E+21]"},
		{"unknown", Params{Field: "X", Distribution: Distribution(9)}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Label())
		})
	}
	assert.Equal(t, "Tri[1, 2.5, 4]", tests[1].p.Summary())
}

func TestParseDistribution(t *testing.T) {
	for _, name := range []string{"Uniform", "uniform", "TRIANGULAR", "normal", "LogNormal", " lognormal "} {
		_, err := ParseDistribution(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseDistribution("Poisson")
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	assert.True(t, errors.IsInvalid(err))
}

func TestDistributionJSON(t *testing.T) {
	var holder struct {
		D Distribution `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"normal"}`), &holder))
	assert.Equal(t, Normal, holder.D)

	data, err := json.Marshal(holder)
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"Normal"}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"d":"gamma"}`), &holder))

	_, err = json.Marshal(struct{ D Distribution }{D: Distribution(7)})
	assert.Error(t, err)
}
