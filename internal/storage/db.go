package storage

import (
	"context"
	"errors"
	"fmt"
)

// Config wires the two long-lived stores the worker writes to. Defaults
// come from internal/config; the review store is a local file opened
// separately via OpenReview.
type Config struct {
	ClickHouse ClickHouseConfig
	Postgres   PostgresConfig
}

// DB bundles the event log and the trip store behind one handle.
type DB struct {
	CH *ClickHouseDB // append-only extraction event log
	PG *PostgresDB   // current trip state and fare observations
}

// Open connects to both stores. A failure on either side closes whatever
// already opened and fails the whole open.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	ch, err := OpenClickHouse(ctx, cfg.ClickHouse)
	if err != nil {
		return nil, fmt.Errorf("clickhouse: %w", err)
	}

	pg, err := OpenPostgres(ctx, cfg.Postgres)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &DB{CH: ch, PG: pg}, nil
}

// Close releases both connections, reporting every close error.
func (d *DB) Close() error {
	var errs []error
	if d.CH != nil {
		if err := d.CH.Close(); err != nil {
			errs = append(errs, fmt.Errorf("clickhouse: %w", err))
		}
	}
	if d.PG != nil {
		d.PG.Close()
	}
	return errors.Join(errs...)
}

// CreateSchemas creates the tables on both sides. Safe to call on every
// startup; both schemas use IF NOT EXISTS.
func (d *DB) CreateSchemas(ctx context.Context) error {
	if err := d.CH.CreateSchema(ctx); err != nil {
		return fmt.Errorf("clickhouse schema: %w", err)
	}
	if err := d.PG.CreateSchema(ctx); err != nil {
		return fmt.Errorf("postgres schema: %w", err)
	}
	return nil
}
