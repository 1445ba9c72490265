// Package sampler compiles a distribution configuration into a zero-argument
// function that draws one float64 per call.
//
// Four families are supported: Uniform, Triangular, Normal and LogNormal.
// Build never fails. Degenerate parameters (max <= min, a non-positive
// standard deviation) are passed through and surface as NaN or nonsensical
// output, and an unknown distribution yields a sampler that always returns NaN.
//
// # Sources
//
// A Params with a zero Seed draws from the process-wide shared source, which
// is seeded from crypto/rand on first use. Every seed-0 sampler in the process
// pulls from that one sequence, and each complete draw holds the source lock.
// A nonzero Seed gets a private PCG source, so the sequence of draws is
// reproducible across runs:
//
//	s := sampler.Build(sampler.Params{
//		Field:             "Random",
//		Distribution:      sampler.Normal,
//		Average:           10,
//		StandardDeviation: 2,
//		Seed:              42,
//	}, sampler.DefaultProvider())
//	v := s()
//
// Tests that need control over the shared sequence can pass
// NewProvider(NewSource(seed)) instead of DefaultProvider.
package sampler
