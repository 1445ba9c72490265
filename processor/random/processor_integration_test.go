//go:build integration

package randomprocessor_test

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/randstream/component"
	"github.com/c360/randstream/message"
	"github.com/c360/randstream/natsclient"
	randomprocessor "github.com/c360/randstream/processor/random"
	"github.com/c360/randstream/record"
	"github.com/c360/randstream/sampler"
)

// One NATS container shared by every test in the package
var (
	sharedTestClient *natsclient.TestClient
	sharedNATSClient *natsclient.Client
)

func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION_TESTS") != "" {
		testClient, err := natsclient.NewSharedTestClient(
			natsclient.WithJetStream(),
			natsclient.WithTestTimeout(5*time.Second),
		)
		if err != nil {
			panic("Failed to create shared test client: " + err.Error())
		}
		sharedTestClient = testClient
		sharedNATSClient = testClient.Client
	}

	exitCode := m.Run()

	if sharedTestClient != nil {
		sharedTestClient.Terminate()
	}
	os.Exit(exitCode)
}

func getSharedNATSClient(t *testing.T) *natsclient.Client {
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("Skipping integration test. Set INTEGRATION_TESTS=1 to run.")
	}
	if sharedNATSClient == nil {
		t.Fatal("Shared NATS client not initialized - TestMain should have created it")
	}
	return sharedNATSClient
}

type collector struct {
	mu      sync.Mutex
	schemas map[string]*record.Schema
	events  []*message.StreamEvent
	errs    []error
}

func newCollector() *collector {
	return &collector{schemas: map[string]*record.Schema{}}
}

func (c *collector) handle(_ context.Context, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := message.Decode(data, func(id string) *record.Schema { return c.schemas[id] })
	if err != nil {
		c.errs = append(c.errs, err)
		return
	}
	if e.Type == message.EventSchema {
		c.schemas[e.StreamID] = e.Schema
	}
	c.events = append(c.events, e)
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func startProcessor(t *testing.T, ctx context.Context, config string, client *natsclient.Client) component.LifecycleComponent {
	t.Helper()
	comp, err := randomprocessor.NewProcessor(json.RawMessage(config), component.Dependencies{NATSClient: client})
	require.NoError(t, err)

	proc, ok := comp.(component.LifecycleComponent)
	require.True(t, ok)
	require.NoError(t, proc.Initialize())
	require.NoError(t, proc.Start(ctx))
	t.Cleanup(func() { _ = proc.Stop(5 * time.Second) })
	return proc
}

func publishEvent(t *testing.T, ctx context.Context, client *natsclient.Client, subject string, e *message.StreamEvent) {
	t.Helper()
	data, err := e.Marshal()
	require.NoError(t, err)
	require.NoError(t, client.Publish(ctx, subject, data))
}

func TestIntegration_AugmentsStream(t *testing.T) {
	client := getSharedNATSClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	startProcessor(t, ctx, `{
		"seed": 42,
		"distribution": "Normal",
		"average": 10,
		"standard_deviation": 2,
		"ports": {
			"inputs":  [{"name": "in",  "type": "nats", "subject": "it.random.in.>"}],
			"outputs": [{"name": "out", "type": "nats", "subject": "it.random.out"}]
		}
	}`, client)

	out := newCollector()
	require.NoError(t, client.Subscribe(ctx, "it.random.out", out.handle))
	time.Sleep(100 * time.Millisecond)

	schema := record.MustSchema(
		record.FieldDescriptor{Name: "id", Kind: record.KindInt64},
		record.FieldDescriptor{Name: "label", Kind: record.KindString},
	)
	publishEvent(t, ctx, client, "it.random.in.s1", message.NewSchemaEvent("s1", "it", schema))
	for i := int64(0); i < 5; i++ {
		rec := &record.Record{Values: []any{i, "row"}}
		publishEvent(t, ctx, client, "it.random.in.s1", message.NewRecordEvent("s1", "it", rec))
	}
	publishEvent(t, ctx, client, "it.random.in.s1", message.NewProgressEvent("s1", "it", 1, false))
	publishEvent(t, ctx, client, "it.random.in.s1", message.NewCloseEvent("s1", "it", false))

	require.Eventually(t, func() bool { return out.count() == 8 }, 5*time.Second, 50*time.Millisecond)

	out.mu.Lock()
	defer out.mu.Unlock()
	require.Empty(t, out.errs)

	assert.Equal(t, message.EventSchema, out.events[0].Type)
	assert.Equal(t, 3, out.events[0].Schema.Len())

	params := sampler.DefaultParams()
	params.Seed, params.Distribution, params.Average, params.StandardDeviation = 42, sampler.Normal, 10, 2
	reference := sampler.Build(params, nil)
	for i := 1; i <= 5; i++ {
		e := out.events[i]
		require.Equal(t, message.EventRecord, e.Type)
		assert.Equal(t, int64(i-1), e.Record.Values[0])
		assert.Equal(t, reference(), e.Record.Values[2])
	}
	assert.Equal(t, message.EventProgress, out.events[6].Type)
	assert.True(t, out.events[6].Flag)
	assert.Equal(t, message.EventClose, out.events[7].Type)
}

func TestIntegration_JetStreamOutput(t *testing.T) {
	client := getSharedNATSClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	startProcessor(t, ctx, `{
		"stream_name": "IT_RANDOM",
		"ports": {
			"inputs":  [{"name": "in",  "type": "nats", "subject": "it.random.js.in"}],
			"outputs": [{"name": "out", "type": "nats", "subject": "it.random.js.out"}]
		}
	}`, client)

	schema := record.MustSchema(record.FieldDescriptor{Name: "id", Kind: record.KindInt64})
	publishEvent(t, ctx, client, "it.random.js.in", message.NewSchemaEvent("js1", "it", schema))
	publishEvent(t, ctx, client, "it.random.js.in", message.NewRecordEvent("js1", "it", &record.Record{Values: []any{int64(1)}}))
	publishEvent(t, ctx, client, "it.random.js.in", message.NewCloseEvent("js1", "it", false))

	js, err := client.JetStream()
	require.NoError(t, err)
	stream, err := js.Stream(ctx, "IT_RANDOM")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		info, err := stream.Info(ctx)
		return err == nil && info.State.Msgs == 3
	}, 5*time.Second, 50*time.Millisecond)
}
