package sampler

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws one value per call. It is an unbounded sequence and cannot be
// rewound.
type Sampler func() float64

// Build compiles p into a Sampler. The distribution is resolved once here.
func Build(p Params, provider SourceProvider) Sampler {
	if provider == nil {
		provider = DefaultProvider()
	}
	if !p.Distribution.Known() {
		return func() float64 { return math.NaN() }
	}
	src := provider.Source(p.Seed)

	switch p.Distribution {
	case Uniform:
		d := distuv.Uniform{Min: p.Minimum, Max: p.Maximum, Src: src.src}
		return func() float64 { return src.draw(d.Rand) }
	case Triangular:
		return triangular(src, p.Minimum, p.Maximum, p.Average)
	case Normal:
		d := distuv.Normal{Mu: p.Average, Sigma: p.StandardDeviation, Src: src.src}
		return func() float64 { return src.draw(d.Rand) }
	default:
		d := distuv.LogNormal{Mu: p.Average, Sigma: p.StandardDeviation, Src: src.src}
		return func() float64 { return src.draw(d.Rand) }
	}
}

// triangular samples by inverting the CDF. distuv.NewTriangle panics on
// degenerate bounds, which must instead produce NaN or constant output.
func triangular(src *Source, lo, hi, mode float64) Sampler {
	width := hi - lo
	f := (mode - lo) / width
	lower := width * (mode - lo)
	upper := width * (hi - mode)
	draw := func() float64 {
		u := src.rng.Float64()
		if u < f {
			return lo + math.Sqrt(u*lower)
		}
		return hi - math.Sqrt((1-u)*upper)
	}
	return func() float64 { return src.draw(draw) }
}
