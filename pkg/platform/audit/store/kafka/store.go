// Package kafka ships audit events to a Kafka topic for downstream SIEM and
// compliance consumers. It is write-only: ListRecent is served by a
// companion store (memory or Postgres) that the caller supplies.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "smpadmin/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client used by Store.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Store publishes each appended event synchronously.
type Store struct {
	producer Producer
	topic    string
	reader   audit.Store
}

// Option configures the Store.
type Option func(*Store)

// WithReader delegates ListRecent (and mirrors Append) to another store.
func WithReader(reader audit.Store) Option {
	return func(s *Store) {
		s.reader = reader
	}
}

// New creates a Kafka-backed audit store.
func New(producer Producer, topic string, opts ...Option) *Store {
	s := &Store{producer: producer, topic: topic}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClient builds a franz-go client for the given seed brokers.
func NewClient(brokers []string, topic string) (*kgo.Client, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka audit sink requires at least one broker")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

type payload struct {
	ID           string   `json:"id"`
	Category     string   `json:"category"`
	Timestamp    string   `json:"timestamp"`
	Action       string   `json:"action"`
	Subject      string   `json:"subject"`
	Args         []string `json:"args,omitempty"`
	Success      bool     `json:"success"`
	ErrorClass   string   `json:"error_class,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
	ActorID      string   `json:"actor_id,omitempty"`
	RequestID    string   `json:"request_id,omitempty"`
}

// Append publishes the event keyed by subject so that all records of one
// SMP land on the same partition in order.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	body, err := json.Marshal(payload{
		ID:           event.ID.String(),
		Category:     string(event.Category()),
		Timestamp:    event.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:       string(event.Action),
		Subject:      event.Subject,
		Args:         event.Args,
		Success:      event.Success,
		ErrorClass:   event.ErrorClass,
		ErrorMessage: event.ErrorMessage,
		ActorID:      event.ActorID,
		RequestID:    event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Subject),
		Value: body,
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	if s.reader != nil {
		if err := s.reader.Append(ctx, event); err != nil {
			return fmt.Errorf("mirror audit event: %w", err)
		}
	}
	return nil
}

// ListRecent reads from the companion store, if any.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if s.reader == nil {
		return nil, nil
	}
	return s.reader.ListRecent(ctx, limit)
}
