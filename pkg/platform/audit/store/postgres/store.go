package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	audit "smpadmin/pkg/platform/audit"
)

// Schema creates the audit table. Rows are insert-only.
const Schema = `
CREATE TABLE IF NOT EXISTS smp_audit_events (
	id            UUID PRIMARY KEY,
	category      TEXT NOT NULL,
	timestamp     TIMESTAMPTZ NOT NULL,
	action        TEXT NOT NULL,
	subject       TEXT NOT NULL,
	args          TEXT[] NOT NULL DEFAULT '{}',
	success       BOOLEAN NOT NULL,
	error_class   TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	actor_id      TEXT NOT NULL DEFAULT '',
	request_id    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS smp_audit_events_ts_idx ON smp_audit_events (timestamp DESC);
`

// Store implements audit.Store on PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the audit table when it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate audit schema: %w", err)
	}
	return nil
}

// Append inserts one audit event. Duplicate IDs are ignored.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	args := event.Args
	if args == nil {
		args = []string{}
	}

	query := `
		INSERT INTO smp_audit_events (
			id, category, timestamp, action, subject, args,
			success, error_class, error_message, actor_id, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Category()),
		event.Timestamp,
		string(event.Action),
		event.Subject,
		pq.Array(args),
		event.Success,
		event.ErrorClass,
		event.ErrorMessage,
		event.ActorID,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, timestamp, action, subject, args,
			   success, error_class, error_message, actor_id, request_id
		FROM smp_audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event  audit.Event
			action string
		)
		err := rows.Scan(
			&event.ID,
			&event.Timestamp,
			&action,
			&event.Subject,
			pq.Array(&event.Args),
			&event.Success,
			&event.ErrorClass,
			&event.ErrorMessage,
			&event.ActorID,
			&event.RequestID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Action = audit.Action(action)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
