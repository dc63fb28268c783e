// Package dbx holds the database/sql helpers used by the local secure store.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DBTX is the part of *sql.DB and *sql.Tx the store queries through.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn in a transaction and commits when fn returns nil.
//
// When fn fails the transaction is rolled back and fn's error is returned;
// a rollback failure is joined to it. A panic in fn rolls back before it
// propagates.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	done := false
	defer func() {
		if !done {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, tx); err != nil {
		done = true
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	done = true
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadOrInsert reads the value stored under key in a (key, value) table.
// When the row is missing it stores create() and returns that instead;
// created reports which case happened. table must be a trusted identifier.
//
// Run it inside WithTx so that concurrent callers agree on one value.
func LoadOrInsert(ctx context.Context, tx DBTX, table, key string, create func() []byte) (value []byte, created bool, err error) {
	err = tx.QueryRowContext(ctx, `SELECT value FROM `+table+` WHERE key = ?`, key).Scan(&value)
	switch {
	case err == nil:
		return value, false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, false, fmt.Errorf("load %s/%s: %w", table, key, err)
	}

	value = create()
	if _, err := tx.ExecContext(ctx, `INSERT INTO `+table+` (key, value) VALUES (?, ?)`, key, value); err != nil {
		return nil, false, fmt.Errorf("insert %s/%s: %w", table, key, err)
	}
	return value, true, nil
}
