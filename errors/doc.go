// Package errors implements the three-class error model used across randstream:
// Transient (retryable), Invalid (bad input or configuration, do not retry) and
// Fatal (stop processing).
//
// # Wrapping
//
// All wrapping follows "component.method: action failed: %w":
//
//	errors.WrapInvalid(err, "Engine", "OnSchemaReady", "append output field")
//	errors.WrapTransient(err, "natsDownstream", "Push", "publish record")
//	errors.WrapFatal(errors.ErrStreamClosed, "Engine", "OnRecord", "check state")
//
// Wrapped errors keep their sentinel, so errors.Is works across the chain:
//
//	if errors.Is(err, errors.ErrStreamClosed) { ... }
//
// # Stream errors
//
// The stream state machine reports its outcomes with ErrNotInitialized,
// ErrAlreadyInitialized, ErrStreamClosed, ErrStreamFailed and
// ErrSchemaUnavailable. Schema construction reports ErrEmptyFieldName,
// ErrDuplicateField and ErrUnsupportedType.
//
// # Retry
//
// RetryConfig decides whether an error is worth another attempt and converts to
// the pkg/retry Config for the actual loop:
//
//	err := errors.DefaultRetryConfig().Do(ctx, func() error {
//	    return client.Connect(ctx)
//	})
package errors
