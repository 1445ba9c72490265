package sampler

import (
	"fmt"
	"strconv"
)

// Default parameter values
const (
	DefaultField             = "Random"
	DefaultMinimum           = 0.0
	DefaultMaximum           = 1.0
	DefaultAverage           = 0.0
	DefaultStandardDeviation = 1.0
)

// Params configures one sampler. Parameters that do not apply to the selected
// distribution are ignored.
type Params struct {
	Field             string
	Distribution      Distribution
	Minimum           float64
	Maximum           float64
	Average           float64 // mean for Normal, mu for LogNormal, mode for Triangular
	StandardDeviation float64
	Seed              int64
}

// DefaultParams returns Uniform[0, 1) on the shared source
func DefaultParams() Params {
	return Params{
		Field:             DefaultField,
		Distribution:      Uniform,
		Minimum:           DefaultMinimum,
		Maximum:           DefaultMaximum,
		Average:           DefaultAverage,
		StandardDeviation: DefaultStandardDeviation,
	}
}

// Label renders the field name and distribution, e.g. "Random=Rand[0, 1]".
// An unknown distribution renders as the empty string.
func (p Params) Label() string {
	body := p.Summary()
	if body == "" {
		return ""
	}
	return p.Field + "=" + body
}

// Summary is Label without the "<field>=" prefix
func (p Params) Summary() string {
	switch p.Distribution {
	case Uniform:
		return fmt.Sprintf("Rand[%s, %s]", num(p.Minimum), num(p.Maximum))
	case Triangular:
		return fmt.Sprintf("Tri[%s, %s, %s]", num(p.Minimum), num(p.Average), num(p.Maximum))
	case Normal:
		return fmt.Sprintf("Normal[%s, %s]", num(p.Average), num(p.StandardDeviation))
	case LogNormal:
		return fmt.Sprintf("LogNormal[%s, %s]", num(p.Average), num(p.StandardDeviation))
	default:
		return ""
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'G', -1, 64)
}
