package randomprocessor

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/c360/randstream/errors"
	"github.com/c360/randstream/message"
	"github.com/c360/randstream/metric"
	"github.com/c360/randstream/record"
)

// publishFunc sends one encoded event on a subject
type publishFunc func(ctx context.Context, subject string, data []byte) error

// natsDownstream republishes one stream as StreamEvents on the output subject
type natsDownstream struct {
	streamID string
	source   string
	subject  string
	publish  publishFunc
	logger   *slog.Logger
	core     *metric.Metrics

	// warnLimit throttles progress failure logs; nil logs every failure
	warnLimit *rate.Limiter
}

func (d *natsDownstream) send(ctx context.Context, event *message.StreamEvent) error {
	data, err := event.Marshal()
	if err != nil {
		return errors.Wrap(err, "natsDownstream", "send", "encode "+string(event.Type)+" event")
	}
	if err := d.publish(ctx, d.subject, data); err != nil {
		return errors.Wrap(err, "natsDownstream", "send", "publish "+string(event.Type)+" event")
	}
	d.core.RecordEventPublished(d.source, d.subject)
	return nil
}

// Init publishes the output schema
func (d *natsDownstream) Init(ctx context.Context, schema *record.Schema) error {
	return d.send(ctx, message.NewSchemaEvent(d.streamID, d.source, schema))
}

// Push publishes one augmented record
func (d *natsDownstream) Push(ctx context.Context, rec *record.Record) error {
	return d.send(ctx, message.NewRecordEvent(d.streamID, d.source, rec))
}

// UpdateProgress publishes progress. Failures are logged only.
func (d *natsDownstream) UpdateProgress(ctx context.Context, fraction float64, flag bool) {
	err := d.send(ctx, message.NewProgressEvent(d.streamID, d.source, fraction, flag))
	if err != nil && (d.warnLimit == nil || d.warnLimit.Allow()) {
		d.logger.Warn("Failed to publish progress",
			"component", d.source,
			"stream_id", d.streamID,
			"error", err)
	}
}

// Close publishes the end of the stream
func (d *natsDownstream) Close(ctx context.Context, flag bool) error {
	return d.send(ctx, message.NewCloseEvent(d.streamID, d.source, flag))
}
