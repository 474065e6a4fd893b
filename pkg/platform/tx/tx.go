// Package tx carries a SQL transaction through context so that stores can
// join a unit of work started by their caller.
package tx

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const defaultTimeout = 5 * time.Second

type ctxKey struct{}

var txKey = ctxKey{}

// Conn is the subset of *sql.DB and *sql.Tx used by stores.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// ConnFrom returns the transaction in ctx, or db when there is none.
func ConnFrom(ctx context.Context, db *sql.DB) Conn {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

// Run executes fn inside a transaction on db. fn receives a context that
// carries the transaction. The transaction is committed when fn returns nil
// and rolled back otherwise. Contexts without a deadline get a 5 second one.
func Run(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
