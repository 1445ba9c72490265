package sampler

import (
	"fmt"
	"strings"

	"github.com/c360/randstream/errors"
)

// Distribution selects the sampling family
type Distribution int

// Supported distributions
const (
	Uniform Distribution = iota
	Triangular
	Normal
	LogNormal
)

var distributionNames = map[Distribution]string{
	Uniform:    "Uniform",
	Triangular: "Triangular",
	Normal:     "Normal",
	LogNormal:  "LogNormal",
}

func (d Distribution) String() string {
	if name, ok := distributionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Distribution(%d)", int(d))
}

// Known reports whether d is one of the supported families
func (d Distribution) Known() bool {
	_, ok := distributionNames[d]
	return ok
}

// ParseDistribution parses a distribution name, ignoring case
func ParseDistribution(s string) (Distribution, error) {
	name := strings.TrimSpace(s)
	for d, n := range distributionNames {
		if strings.EqualFold(n, name) {
			return d, nil
		}
	}
	return 0, errors.WrapInvalid(
		fmt.Errorf("%w: unknown distribution %q", errors.ErrInvalidConfig, s),
		"Distribution", "ParseDistribution", "name lookup")
}

// MarshalText implements encoding.TextMarshaler
func (d Distribution) MarshalText() ([]byte, error) {
	if !d.Known() {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Distribution", "MarshalText", "name lookup")
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Distribution) UnmarshalText(text []byte) error {
	parsed, err := ParseDistribution(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
