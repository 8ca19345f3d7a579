// Package storage provides persistent storage for extracted trip records.
// PostgreSQL holds the mutable trip state, ClickHouse the append-only
// extraction event log, and SQLite the local review workbench.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ClickHouseDB wraps a ClickHouse connection for extraction event storage.
type ClickHouseDB struct {
	conn driver.Conn
}

// Conn returns the underlying ClickHouse connection for direct queries.
func (d *ClickHouseDB) Conn() driver.Conn {
	return d.conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	// Test the connection.
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the ClickHouse tables.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS extraction_events (
			event_id        UUID,
			timestamp       DateTime64(3),
			trip_id         String,
			doc_kind        LowCardinality(String),
			parser_types    String,
			airline         LowCardinality(String),
			origin          LowCardinality(String),
			destination     LowCardinality(String),
			confidence      LowCardinality(String),
			record_json     String,
			missing_fields  String,
			body_bytes      UInt32,
			duration_ms     Float32,
			created_at      DateTime64(3) DEFAULT now64(3)
		)
		ENGINE = MergeTree()
		PARTITION BY toYYYYMM(timestamp)
		ORDER BY (doc_kind, confidence, timestamp, event_id)
		SETTINGS index_granularity = 8192`,
	}

	for _, q := range queries {
		if err := d.conn.Exec(ctx, q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	return nil
}

// ExtractionEvent is one extraction run recorded in the event log. The
// record JSON is the full extraction output; the raw document body is
// never stored, only its size.
type ExtractionEvent struct {
	EventID       uuid.UUID
	Timestamp     time.Time
	TripID        string
	DocKind       string
	ParserTypes   []string
	Airline       string
	Origin        string
	Destination   string
	Confidence    string
	Record        interface{}
	MissingFields []string
	BodyBytes     uint32
	DurationMS    float32
}

// InsertEvent stores a single extraction event.
func (d *ClickHouseDB) InsertEvent(ctx context.Context, e ExtractionEvent) error {
	return d.InsertEventBatch(ctx, []ExtractionEvent{e})
}

// InsertEventBatch stores multiple extraction events efficiently.
func (d *ClickHouseDB) InsertEventBatch(ctx context.Context, events []ExtractionEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := d.conn.PrepareBatch(ctx, `
		INSERT INTO extraction_events (event_id, timestamp, trip_id, doc_kind, parser_types, airline, origin, destination, confidence, record_json, missing_fields, body_bytes, duration_ms)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		recordJSON, err := json.Marshal(e.Record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}

		id := e.EventID
		if id == uuid.Nil {
			id = uuid.New()
		}

		err = batch.Append(id, e.Timestamp, e.TripID, e.DocKind, strings.Join(e.ParserTypes, ","),
			e.Airline, e.Origin, e.Destination, e.Confidence, string(recordJSON),
			strings.Join(e.MissingFields, ","), e.BodyBytes, e.DurationMS)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// EventQueryParams contains filtering options for querying events.
type EventQueryParams struct {
	TripID     string
	DocKind    string
	Confidence string
	HasMissing bool
	Limit      int
	Offset     int
	OrderDesc  bool
}

// QueryEvents retrieves extraction events matching the given parameters.
func (d *ClickHouseDB) QueryEvents(ctx context.Context, p EventQueryParams) ([]ExtractionEvent, error) {
	var conditions []string
	var args []interface{}

	if p.TripID != "" {
		conditions = append(conditions, "trip_id = ?")
		args = append(args, p.TripID)
	}
	if p.DocKind != "" {
		conditions = append(conditions, "doc_kind = ?")
		args = append(args, p.DocKind)
	}
	if p.Confidence != "" {
		conditions = append(conditions, "confidence = ?")
		args = append(args, p.Confidence)
	}
	if p.HasMissing {
		conditions = append(conditions, "missing_fields != ''")
	}

	query := `SELECT event_id, timestamp, trip_id, doc_kind, parser_types, airline, origin, destination, confidence, record_json, missing_fields, body_bytes, duration_ms FROM extraction_events`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	direction := "ASC"
	if p.OrderDesc {
		direction = "DESC"
	}
	query += " ORDER BY timestamp " + direction

	limit := 100
	if p.Limit > 0 {
		limit = p.Limit
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, p.Offset)

	rows, err := d.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []ExtractionEvent
	for rows.Next() {
		var e ExtractionEvent
		var parserTypes, recordJSON, missingFields string
		err := rows.Scan(&e.EventID, &e.Timestamp, &e.TripID, &e.DocKind, &parserTypes,
			&e.Airline, &e.Origin, &e.Destination, &e.Confidence, &recordJSON,
			&missingFields, &e.BodyBytes, &e.DurationMS)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if parserTypes != "" {
			e.ParserTypes = strings.Split(parserTypes, ",")
		}
		if missingFields != "" {
			e.MissingFields = strings.Split(missingFields, ",")
		}
		e.Record = recordJSON
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return events, nil
}

// EventStats contains aggregate statistics about extraction events.
type EventStats struct {
	TotalEvents  uint64
	ByConfidence map[string]uint64
	ByAirline    map[string]uint64
	ByDocKind    map[string]uint64
	WithMissing  uint64
}

// GetEventStats returns statistics about stored extraction events.
func (d *ClickHouseDB) GetEventStats(ctx context.Context) (*EventStats, error) {
	stats := &EventStats{
		ByConfidence: make(map[string]uint64),
		ByAirline:    make(map[string]uint64),
		ByDocKind:    make(map[string]uint64),
	}

	row := d.conn.QueryRow(ctx, "SELECT count() FROM extraction_events")
	if err := row.Scan(&stats.TotalEvents); err != nil {
		return nil, err
	}

	groupings := []struct {
		column string
		into   map[string]uint64
	}{
		{"confidence", stats.ByConfidence},
		{"airline", stats.ByAirline},
		{"doc_kind", stats.ByDocKind},
	}
	for _, g := range groupings {
		query := fmt.Sprintf("SELECT %s, count() FROM extraction_events WHERE %s != '' GROUP BY %s ORDER BY count() DESC LIMIT 20", g.column, g.column, g.column)
		rows, err := d.conn.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var key string
			var count uint64
			if err := rows.Scan(&key, &count); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan %s stats: %w", g.column, err)
			}
			g.into[key] = count
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterate %s stats: %w", g.column, err)
		}
		rows.Close()
	}

	row = d.conn.QueryRow(ctx, "SELECT count() FROM extraction_events WHERE missing_fields != ''")
	if err := row.Scan(&stats.WithMissing); err != nil {
		return nil, err
	}

	return stats, nil
}

// CountEvents returns the total number of events, optionally filtered by
// confidence tier.
func (d *ClickHouseDB) CountEvents(ctx context.Context, confidence string) (uint64, error) {
	var count uint64
	var err error
	if confidence != "" {
		row := d.conn.QueryRow(ctx, "SELECT count() FROM extraction_events WHERE confidence = ?", confidence)
		err = row.Scan(&count)
	} else {
		row := d.conn.QueryRow(ctx, "SELECT count() FROM extraction_events")
		err = row.Scan(&count)
	}
	return count, err
}
