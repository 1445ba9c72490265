package sampler

import (
	"math"
	"sync"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const draws = 100_000

func sample(s Sampler, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s()
	}
	return out
}

func TestBuildDeterministicSeed(t *testing.T) {
	for _, d := range []Distribution{Uniform, Triangular, Normal, LogNormal} {
		t.Run(d.String(), func(t *testing.T) {
			p := DefaultParams()
			p.Distribution = d
			p.Minimum, p.Maximum, p.Average, p.StandardDeviation = 1, 9, 4, 1.5
			p.Seed = 20240601

			a := sample(Build(p, DefaultProvider()), 1000)
			b := sample(Build(p, DefaultProvider()), 1000)
			assert.Equal(t, a, b)

			p.Seed++
			c := sample(Build(p, DefaultProvider()), 1000)
			assert.NotEqual(t, a, c)
		})
	}
}

func TestBuildSeed42Uniform(t *testing.T) {
	p := DefaultParams()
	p.Seed = 42

	first := sample(Build(p, DefaultProvider()), 5)
	second := sample(Build(p, DefaultProvider()), 5)
	require.Equal(t, first, second)
	for _, v := range first {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestUniformRangeAndMean(t *testing.T) {
	p := DefaultParams()
	p.Minimum, p.Maximum = -5, 15
	p.Seed = 7

	values := sample(Build(p, DefaultProvider()), draws)
	for _, v := range values {
		require.GreaterOrEqual(t, v, -5.0)
		require.Less(t, v, 15.0)
	}
	mean, err := stats.Mean(values)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, mean, 0.1)

	variance, err := stats.PopulationVariance(values)
	require.NoError(t, err)
	assert.InDelta(t, 400.0/12.0, variance, 0.5)
}

func TestUniformDefaults(t *testing.T) {
	p := DefaultParams()
	p.Seed = 3

	mean, err := stats.Mean(sample(Build(p, DefaultProvider()), draws))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, mean, 0.01)
}

func TestTriangularBoundsAndMode(t *testing.T) {
	p := DefaultParams()
	p.Distribution = Triangular
	p.Minimum, p.Maximum, p.Average = 0, 10, 7.5
	p.Seed = 11

	values := sample(Build(p, DefaultProvider()), draws)
	bins := make([]float64, len(values))
	for i, v := range values {
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 10.0)
		bins[i] = math.Floor(v)
	}

	modes, err := stats.Mode(bins)
	require.NoError(t, err)
	require.Len(t, modes, 1)
	assert.Equal(t, 7.0, modes[0])

	mean, err := stats.Mean(values)
	require.NoError(t, err)
	assert.InDelta(t, (0+10+7.5)/3, mean, 0.05)
}

func TestTriangularDegenerate(t *testing.T) {
	p := DefaultParams()
	p.Distribution = Triangular
	p.Minimum, p.Maximum, p.Average = 10, 10, 10
	p.Seed = 1

	s := Build(p, DefaultProvider())
	for i := 0; i < 100; i++ {
		assert.Equal(t, 10.0, s())
	}
}

func TestNormalMoments(t *testing.T) {
	p := DefaultParams()
	p.Distribution = Normal
	p.Average, p.StandardDeviation = 10, 2
	p.Seed = 99

	values := sample(Build(p, DefaultProvider()), draws)
	mean, err := stats.Mean(values)
	require.NoError(t, err)
	variance, err := stats.PopulationVariance(values)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, mean, 0.05)
	assert.InDelta(t, 4.0, variance, 0.1)
}

func TestLogNormalMoments(t *testing.T) {
	p := DefaultParams()
	p.Distribution = LogNormal
	p.Average, p.StandardDeviation = 0, 0.5
	p.Seed = 1234

	values := sample(Build(p, DefaultProvider()), draws)
	for _, v := range values {
		require.Greater(t, v, 0.0)
	}
	mean, err := stats.Mean(values)
	require.NoError(t, err)
	variance, err := stats.PopulationVariance(values)
	require.NoError(t, err)

	s2 := 0.25
	assert.InDelta(t, math.Exp(s2/2), mean, 0.02)
	assert.InDelta(t, (math.Exp(s2)-1)*math.Exp(s2), variance, 0.05)
}

func TestDegenerateParametersDoNotPanic(t *testing.T) {
	cases := map[string]Params{
		"uniform inverted":   {Distribution: Uniform, Minimum: 5, Maximum: 1, Seed: 1},
		"normal zero sigma":  {Distribution: Normal, Average: 3, StandardDeviation: 0, Seed: 1},
		"normal neg sigma":   {Distribution: Normal, Average: 3, StandardDeviation: -1, Seed: 1},
		"lognormal zero":     {Distribution: LogNormal, StandardDeviation: 0, Seed: 1},
		"triangular outside": {Distribution: Triangular, Minimum: 0, Maximum: 1, Average: 5, Seed: 1},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			s := Build(p, DefaultProvider())
			assert.NotPanics(t, func() { sample(s, 100) })
		})
	}

	// a zero-width normal collapses onto its mean
	s := Build(cases["normal zero sigma"], DefaultProvider())
	assert.Equal(t, 3.0, s())
}

func TestUnknownDistributionIsNaN(t *testing.T) {
	s := Build(Params{Distribution: Distribution(42), Seed: 5}, DefaultProvider())
	for i := 0; i < 10; i++ {
		assert.True(t, math.IsNaN(s()))
	}
}

func TestSharedSourceSequence(t *testing.T) {
	p := DefaultParams()

	// two seed-0 samplers interleaved continue one sequence
	shared := NewSharedSource(77)
	a := Build(p, NewProvider(shared))
	b := Build(p, NewProvider(shared))
	var interleaved []float64
	for i := 0; i < 50; i++ {
		interleaved = append(interleaved, a(), b())
	}

	single := Build(p, NewProvider(NewSharedSource(77)))
	assert.Equal(t, sample(single, 100), interleaved)
}

func TestSharedSourceConcurrent(t *testing.T) {
	shared := NewSharedSource(5)
	provider := NewProvider(shared)

	var wg sync.WaitGroup
	results := make([][]float64, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := DefaultParams()
			p.Distribution = Normal
			results[i] = sample(Build(p, provider), 2000)
		}(i)
	}
	wg.Wait()

	seen := make(map[float64]int)
	for _, r := range results {
		require.Len(t, r, 2000)
		for _, v := range r {
			require.False(t, math.IsNaN(v))
			seen[v]++
		}
	}
	// a torn source would hand the same value to several goroutines
	assert.Greater(t, len(seen), 8*2000-10)
}

func TestProviderSources(t *testing.T) {
	shared := NewSharedSource(1)
	provider := NewProvider(shared)

	assert.Same(t, shared, provider.Source(0))
	private := provider.Source(42)
	assert.NotSame(t, shared, private)
	assert.False(t, private.Shared())
	assert.True(t, SharedSource().Shared())
	assert.Same(t, SharedSource(), DefaultProvider().Source(0))
}
