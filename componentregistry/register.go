// Package componentregistry registers every built-in randstream component.
package componentregistry

import (
	"errors"

	"github.com/c360/randstream/component"
	pkgerrors "github.com/c360/randstream/errors"
	randomprocessor "github.com/c360/randstream/processor/random"
)

// Register registers all built-in components with the provided registry:
//   - random_number processor (sampled field appender)
func Register(registry *component.Registry) error {
	// Nil registry is a programming error (fatal), not invalid input
	if registry == nil {
		return pkgerrors.WrapFatal(
			errors.New("registry cannot be nil"),
			"ComponentRegistry", "Register", "registry validation")
	}

	if err := randomprocessor.Register(registry); err != nil {
		return pkgerrors.WrapInvalid(err, "ComponentRegistry", "Register", "random number processor registration")
	}

	return nil
}
