package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// withTx runs fn inside a transaction, rolling back when fn fails.
// Errors returned by fn are passed through unwrapped so callers can match sentinels.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback transaction: %v (cause: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isPgDuplicateKeyError checks if err is a PostgreSQL unique violation
func isPgDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// isPgForeignKeyError checks if err is a PostgreSQL foreign key violation
func isPgForeignKeyError(err error) bool {
	_, ok := pgForeignKeyConstraint(err)
	return ok
}

// pgForeignKeyConstraint returns the name of the violated foreign key
func pgForeignKeyConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// referenceError maps a foreign key violation on a user/product reference
// table to the sentinel for the missing row, or returns nil
func referenceError(err error, userConstraint, productConstraint string) error {
	constraint, ok := pgForeignKeyConstraint(err)
	if !ok {
		return nil
	}
	switch constraint {
	case userConstraint:
		return ErrUserNotFound
	case productConstraint:
		return ErrProductNotFound
	}
	return nil
}

// rowsAffectedOr returns notFound when the statement touched no rows
func rowsAffectedOr(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
