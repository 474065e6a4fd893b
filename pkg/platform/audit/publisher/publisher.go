// Package publisher emits audit events to an audit.Store.
//
// Emission is synchronous: the caller learns whether persistence succeeded.
// Whether a failed write aborts the business operation is the caller's
// decision; the SML workflow logs and continues because the remote change has
// already happened by the time the audit record is written.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "smpadmin/pkg/platform/audit"
	"smpadmin/pkg/requestcontext"
)

// Publisher stamps and persists audit events.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	clock   func() time.Time
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(p *Publisher) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// NewPublisher creates a synchronous publisher on top of store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, clock: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit fills in ID, timestamp and request metadata from ctx when missing,
// then writes the event.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Action == "" {
		return errors.New("audit event requires Action")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ActorID == "" {
		event.ActorID = requestcontext.ActorID(ctx)
	}

	start := time.Now()
	if err := p.store.Append(ctx, event); err != nil {
		p.metrics.IncPersistFailures(event.Action)
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit persistence failed",
				"action", event.Action,
				"subject", event.Subject,
				"request_id", event.RequestID,
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}
	p.metrics.ObservePersist(event.Action, event.Success, time.Since(start))
	return nil
}

// List returns the most recent events, newest first.
func (p *Publisher) List(ctx context.Context, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Close is a no-op for the synchronous publisher.
func (p *Publisher) Close() error {
	return nil
}
