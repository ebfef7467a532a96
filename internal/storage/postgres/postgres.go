// Package postgres implements the stores on PostgreSQL. The catalog goes
// through gorm; everything else uses database/sql with lib/pq, sharing one
// connection pool.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/database"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// execTX runs fn inside a transaction with a statement timeout applied to
// every statement. A canceled statement is reported as Unavailable so the
// caller knows the whole unit may be retried.
func execTX(ctx context.Context, db *sql.DB, stmtTimeout time.Duration, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return timeoutOr(fmt.Errorf("begin: %w", err))
	}
	defer tx.Rollback() // no-op after a successful commit

	if stmtTimeout > 0 {
		ms := stmtTimeout.Milliseconds()
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", ms)); err != nil {
			return timeoutOr(fmt.Errorf("set statement timeout: %w", err))
		}
	}

	if err := fn(tx); err != nil {
		return timeoutOr(err)
	}
	if err := tx.Commit(); err != nil {
		return timeoutOr(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func timeoutOr(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if database.IsQueryCanceled(err) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Unavailable("Request timed out, please retry", err)
	}
	return err
}

func affected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
