package randomprocessor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/time/rate"

	"github.com/c360/randstream/component"
	"github.com/c360/randstream/errors"
	"github.com/c360/randstream/message"
	"github.com/c360/randstream/metric"
	"github.com/c360/randstream/natsclient"
	"github.com/c360/randstream/record"
	"github.com/c360/randstream/sampler"
)

const componentName = "random-number-processor"

// at most one progress publish failure is logged per interval
const progressWarnInterval = 10 * time.Second

// Processor hosts one Engine per stream on NATS
type Processor struct {
	name       string
	config     Config
	params     sampler.Params
	subjects   []string
	outputSubj string
	streamName string
	provider   sampler.SourceProvider
	natsClient *natsclient.Client
	publish    publishFunc
	logger     *slog.Logger
	warnLimit  *rate.Limiter

	// Open streams by stream_id
	streams   map[string]*Engine
	streamsMu sync.Mutex

	// Lifecycle management
	running     bool
	stopped     bool
	startTime   time.Time
	mu          sync.RWMutex
	lifecycleMu sync.Mutex
	wg          *sync.WaitGroup

	// Metrics (atomic counters for DataFlow)
	eventsReceived   int64
	bytesReceived    int64
	recordsProcessed int64
	errors           int64
	lastActivity     time.Time
	lastError        string

	// Prometheus metrics
	metrics *randomMetrics
	core    *metric.Metrics
}

// NewProcessor creates a new random number processor from configuration
func NewProcessor(
	rawConfig json.RawMessage, deps component.Dependencies,
) (component.Discoverable, error) {
	config, err := parseConfig(rawConfig)
	if err != nil {
		return nil, errors.Wrap(err, "RandomProcessor", "NewProcessor", "config parsing")
	}

	subjects := make([]string, 0, len(config.Ports.Inputs))
	for _, input := range config.Ports.Inputs {
		subjects = append(subjects, input.Subject)
	}

	var outputSubject string
	streamName := config.StreamName
	if len(config.Ports.Outputs) > 0 {
		out := config.Ports.Outputs[0]
		outputSubject = out.Subject
		if streamName == "" && out.Type == "jetstream" {
			streamName = out.StreamName
		}
	}
	if outputSubject == "" {
		return nil, errors.WrapInvalid(
			errors.ErrMissingConfig, "RandomProcessor", "NewProcessor",
			"no output subject configured")
	}

	metrics, err := newRandomMetrics(deps.MetricsRegistry)
	if err != nil {
		deps.GetLogger().Error("Failed to initialize random number metrics", "component", componentName, "error", err)
		metrics = nil // Continue without metrics
	}

	return &Processor{
		name:       componentName,
		config:     config,
		params:     config.ToParams(),
		subjects:   subjects,
		outputSubj: outputSubject,
		streamName: streamName,
		provider:   sampler.DefaultProvider(),
		natsClient: deps.NATSClient,
		logger:     deps.GetLogger(),
		warnLimit:  rate.NewLimiter(rate.Every(progressWarnInterval), 1),
		streams:    make(map[string]*Engine),
		wg:         &sync.WaitGroup{},
		metrics:    metrics,
		core:       deps.CoreMetrics(),
	}, nil
}

// Initialize prepares the processor (no-op; engines are created per stream)
func (m *Processor) Initialize() error {
	return nil
}

// Start creates the output stream when JetStream is configured and
// subscribes to the input subjects.
func (m *Processor) Start(ctx context.Context) error {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()

	if m.running {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "RandomProcessor", "Start", "check running state")
	}
	if m.stopped {
		return errors.WrapFatal(errors.ErrShuttingDown, "RandomProcessor", "Start", "check stopped state")
	}

	if m.natsClient == nil {
		return errors.WrapFatal(errors.ErrMissingConfig, "RandomProcessor", "Start", "NATS client required")
	}

	if m.streamName != "" {
		_, err := m.natsClient.CreateStream(ctx, jetstream.StreamConfig{
			Name:     m.streamName,
			Subjects: []string{m.outputSubj},
		})
		if err != nil {
			return errors.Wrap(err, "RandomProcessor", "Start", fmt.Sprintf("create stream %s", m.streamName))
		}
		m.publish = m.natsClient.PublishToStream
	} else {
		m.publish = m.natsClient.Publish
	}

	m.mu.Lock()
	m.running = true
	m.startTime = time.Now()
	m.mu.Unlock()

	for _, subject := range m.subjects {
		if err := m.natsClient.Subscribe(ctx, subject, m.handleMessage); err != nil {
			m.logger.Error("Failed to subscribe to NATS subject",
				"component", m.name,
				"subject", subject,
				"error", err)
			m.mu.Lock()
			m.running = false
			m.mu.Unlock()
			return errors.WrapTransient(err, "RandomProcessor", "Start", fmt.Sprintf("subscribe to %s", subject))
		}

		m.logger.Debug("Subscribed to NATS subject",
			"component", m.name,
			"subject", subject)
	}

	m.core.RecordComponentStatus(m.name, metric.StatusRunning)
	m.logger.Info("Random number processor started",
		"component", m.name,
		"input_subjects", m.subjects,
		"output_subject", m.outputSubj,
		"stream", m.streamName,
		"sampler", m.params.Label(),
		"output_type", m.config.OutputType.String(),
		"shared_source", m.params.Seed == 0)

	return nil
}

// Stop stops accepting events, waits for in-flight events and closes every
// open stream downstream.
func (m *Processor) Stop(timeout time.Duration) error {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()

	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	m.stopped = true
	m.mu.Unlock()

	// Wait for in-flight handlers with timeout
	waitCh := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		// Clean shutdown
	case <-time.After(timeout):
		m.core.RecordComponentStatus(m.name, metric.StatusFailed)
		return errors.WrapTransient(
			fmt.Errorf("shutdown timeout after %v", timeout),
			"RandomProcessor", "Stop", "graceful shutdown")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	closed := m.closeAll(ctx)

	m.core.RecordComponentStatus(m.name, metric.StatusStopped)
	m.logger.Info("Random number processor stopped",
		"component", m.name,
		"streams_closed", closed,
		"records_processed", atomic.LoadInt64(&m.recordsProcessed))

	return nil
}

func (m *Processor) closeAll(ctx context.Context) int {
	m.streamsMu.Lock()
	defer m.streamsMu.Unlock()

	closed := 0
	for id, engine := range m.streams {
		if err := engine.OnClose(ctx); err != nil {
			m.logger.Warn("Failed to close stream on shutdown",
				"component", m.name,
				"stream_id", id,
				"error", err)
		}
		delete(m.streams, id)
		closed++
	}
	m.core.SetActiveStreams(m.name, 0)
	return closed
}

// handleMessage decodes one StreamEvent and feeds it to the stream's engine
func (m *Processor) handleMessage(ctx context.Context, msgData []byte) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.wg.Add(1)
	m.lastActivity = time.Now()
	m.mu.Unlock()
	defer m.wg.Done()

	atomic.AddInt64(&m.eventsReceived, 1)
	atomic.AddInt64(&m.bytesReceived, int64(len(msgData)))

	m.streamsMu.Lock()
	defer m.streamsMu.Unlock()

	event, err := message.Decode(msgData, m.lookupSchema)
	if err != nil {
		m.recordFailure(err, "decode")
		m.logger.Debug("Failed to decode stream event",
			"component", m.name,
			"size_bytes", len(msgData),
			"error", err)
		return
	}
	m.core.RecordEventReceived(m.name, string(event.Type))

	if err := m.dispatch(ctx, event); err != nil {
		m.logger.Debug("Stream event rejected",
			"component", m.name,
			"stream_id", event.StreamID,
			"type", event.Type,
			"error", err)
	}
}

// lookupSchema resolves record values against the stream's input schema.
// Called with streamsMu held.
func (m *Processor) lookupSchema(streamID string) *record.Schema {
	if engine, ok := m.streams[streamID]; ok {
		return engine.InputSchema()
	}
	return nil
}

// dispatch translates one event into an engine entry point. Called with
// streamsMu held.
func (m *Processor) dispatch(ctx context.Context, event *message.StreamEvent) error {
	engine := m.engineFor(event.StreamID)

	switch event.Type {
	case message.EventSchema:
		if err := engine.OnSchemaReady(ctx, event.Schema); err != nil {
			m.recordFailure(err, "init")
			return err
		}
		m.logger.Info("Stream opened",
			"component", m.name,
			"stream_id", event.StreamID,
			"fields", engine.OutputSchema().Len())

	case message.EventRecord:
		if err := engine.OnRecord(ctx, event.Record); err != nil {
			m.recordFailure(err, "record")
			return err
		}
		atomic.AddInt64(&m.recordsProcessed, 1)

	case message.EventProgress:
		engine.OnProgress(ctx, event.Progress)

	case message.EventClose:
		err := engine.OnClose(ctx)
		delete(m.streams, event.StreamID)
		m.core.SetActiveStreams(m.name, len(m.streams))
		m.logger.Info("Stream closed",
			"component", m.name,
			"stream_id", event.StreamID)
		if err != nil {
			m.recordFailure(err, "close")
			return err
		}
	}
	return nil
}

// engineFor returns the stream's engine, creating it on first use. Called
// with streamsMu held.
func (m *Processor) engineFor(streamID string) *Engine {
	if engine, ok := m.streams[streamID]; ok {
		return engine
	}

	downstream := &natsDownstream{
		streamID: streamID,
		source:   m.name,
		subject:  m.outputSubj,
		publish:  m.publish,
		logger:   m.logger,
		core:     m.core,

		warnLimit: m.warnLimit,
	}
	engine := NewEngine(m.params, m.config.OutputType, downstream,
		WithSourceProvider(m.provider),
		WithEngineLogger(m.logger),
		withMetrics(m.metrics, m.name))

	m.streams[streamID] = engine
	m.metrics.recordStreamOpened(m.name)
	m.core.SetActiveStreams(m.name, len(m.streams))
	return engine
}

func (m *Processor) recordFailure(err error, reason string) {
	atomic.AddInt64(&m.errors, 1)
	m.core.RecordError(m.name, errors.Classify(err).String())

	// init, copy and push failures are counted by the engine
	switch {
	case reason == "decode":
		m.metrics.recordFailed(m.name, reason)
	case errors.Is(err, errors.ErrNotInitialized),
		errors.Is(err, errors.ErrAlreadyInitialized),
		errors.Is(err, errors.ErrStreamClosed),
		errors.Is(err, errors.ErrStreamFailed):
		m.metrics.recordFailed(m.name, "state")
	}

	m.mu.Lock()
	m.lastError = err.Error()
	m.mu.Unlock()
}

// OpenStreams returns the number of streams with a live engine
func (m *Processor) OpenStreams() int {
	m.streamsMu.Lock()
	defer m.streamsMu.Unlock()
	return len(m.streams)
}

// Discoverable interface implementation

// Meta returns metadata describing this processor component.
func (m *Processor) Meta() component.Metadata {
	return component.Metadata{
		Name:        m.name,
		Type:        "processor",
		Description: "Appends a sampled " + m.params.Label() + " field to every record",
		Version:     "1.0.0",
	}
}

// InputPorts returns the NATS input ports this processor subscribes to.
func (m *Processor) InputPorts() []component.Port {
	ports := make([]component.Port, 0, len(m.config.Ports.Inputs))
	for _, def := range m.config.Ports.Inputs {
		ports = append(ports, component.BuildPortFromDefinition(def, component.DirectionInput))
	}
	return ports
}

// OutputPorts returns the output port for the augmented stream, a JetStream
// port when a stream is configured.
func (m *Processor) OutputPorts() []component.Port {
	if len(m.config.Ports.Outputs) == 0 {
		return []component.Port{}
	}
	def := m.config.Ports.Outputs[0]
	if m.streamName != "" {
		def.Type = "jetstream"
		def.StreamName = m.streamName
	}
	return []component.Port{component.BuildPortFromDefinition(def, component.DirectionOutput)}
}

// ConfigSchema returns the configuration schema for this processor.
func (m *Processor) ConfigSchema() component.ConfigSchema {
	return randomSchema
}

// Health returns the current health status of this processor.
func (m *Processor) Health() component.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var uptime time.Duration
	if m.running {
		uptime = time.Since(m.startTime)
	}

	return component.HealthStatus{
		Healthy:    m.running,
		LastCheck:  time.Now(),
		ErrorCount: int(atomic.LoadInt64(&m.errors)),
		LastError:  m.lastError,
		Uptime:     uptime,
	}
}

// DataFlow returns current data flow metrics for this processor.
func (m *Processor) DataFlow() component.FlowMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	received := atomic.LoadInt64(&m.eventsReceived)
	errorCount := atomic.LoadInt64(&m.errors)

	var errorRate, perSecond, bytesPerSecond float64
	if received > 0 {
		errorRate = float64(errorCount) / float64(received)
	}
	if m.running {
		if secs := time.Since(m.startTime).Seconds(); secs > 0 {
			perSecond = float64(received) / secs
			bytesPerSecond = float64(atomic.LoadInt64(&m.bytesReceived)) / secs
		}
	}

	return component.FlowMetrics{
		MessagesPerSecond: perSecond,
		BytesPerSecond:    bytesPerSecond,
		ErrorRate:         errorRate,
		LastActivity:      m.lastActivity,
	}
}

// Register registers the random number processor component with the given registry
func Register(registry *component.Registry) error {
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "random_number",
		Factory:     NewProcessor,
		Schema:      randomSchema,
		Type:        "processor",
		Protocol:    "nats",
		Domain:      "sampling",
		Description: "Appends a field sampled from a Uniform, Triangular, Normal or LogNormal distribution to every record",
		Version:     "1.0.0",
	})
}
