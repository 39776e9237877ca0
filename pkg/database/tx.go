package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReadSnapshot makes several reads see one committed state
var ReadSnapshot = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

// InTx runs fn inside a transaction and commits when fn returns nil.
// Any error rolls back.
func InTx(ctx context.Context, pool *pgxpool.Pool, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SchemaReady reports whether EnsureSchema has been applied
func (db *DB) SchemaReady(ctx context.Context) (bool, error) {
	var ready bool
	err := db.Pool.QueryRow(ctx, "SELECT to_regclass('liga.standings') IS NOT NULL").Scan(&ready)
	if err != nil {
		return false, fmt.Errorf("failed to check schema: %w", err)
	}
	return ready, nil
}
