// Package natsclient manages the process NATS connection with a circuit
// breaker around connection and JetStream failures.
//
// A Client is created with functional options, connected once, and shared by
// every component through component.Dependencies:
//
//	client, err := natsclient.NewClient(url,
//		natsclient.WithLogger(logger),
//		natsclient.WithMaxReconnects(-1),
//		natsclient.WithMetrics(registry.CoreMetrics()),
//	)
//	if err := client.Connect(ctx); err != nil {
//		return err
//	}
//	defer client.Close(context.Background())
//
// After CircuitThreshold consecutive failures the circuit opens and every
// operation fails fast with errors.ErrCircuitOpen until the backoff elapses.
// The backoff doubles on each opening, capped at the configured maximum, and
// resets on the next success.
//
// Subscribe hands each message to the handler with a context derived from the
// subscription context. Publish uses core NATS; PublishToStream uses JetStream
// and waits for the ack.
//
// TestClient starts a NATS server container through testcontainers-go for
// integration tests.
package natsclient
