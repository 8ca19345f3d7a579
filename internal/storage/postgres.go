package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"faredrop/internal/trip"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// PostgresDB wraps a PostgreSQL connection pool for trip storage.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresDB, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Test the connection.
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the PostgreSQL connection pool.
func (d *PostgresDB) Close() {
	d.pool.Close()
}

// CreateSchema creates the PostgreSQL tables.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	schema := `
	-- Extracted trips, one row per tracked trip
	CREATE TABLE IF NOT EXISTS trips (
		trip_id          TEXT PRIMARY KEY,
		record_locator   TEXT,
		airline          TEXT,
		first_name       TEXT,
		last_name        TEXT,
		fare_brand       TEXT,
		ticket_number    TEXT,
		origin_iata      TEXT,
		destination_iata TEXT,
		departure_date   TEXT,
		return_date      TEXT,
		confidence       TEXT NOT NULL,
		note             TEXT,
		first_extracted  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_extracted   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		extract_count    INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_trips_locator ON trips(record_locator);
	CREATE INDEX IF NOT EXISTS idx_trips_route ON trips(origin_iata, destination_iata);
	CREATE INDEX IF NOT EXISTS idx_trips_confidence ON trips(confidence);

	-- Flight legs in travel order; replaced wholesale on re-extraction
	CREATE TABLE IF NOT EXISTS trip_segments (
		trip_id          TEXT NOT NULL REFERENCES trips(trip_id) ON DELETE CASCADE,
		seq              INTEGER NOT NULL,
		carrier          TEXT NOT NULL,
		flight_number    TEXT NOT NULL,
		depart_airport   TEXT NOT NULL,
		arrive_airport   TEXT NOT NULL,
		departure_time   TIMESTAMPTZ,
		arrival_time     TIMESTAMPTZ,
		PRIMARY KEY (trip_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_trip_segments_flight ON trip_segments(carrier, flight_number);

	-- Fare observations made against extracted trips
	CREATE TABLE IF NOT EXISTS price_checks (
		id               BIGSERIAL PRIMARY KEY,
		trip_id          TEXT NOT NULL REFERENCES trips(trip_id) ON DELETE CASCADE,
		checked_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		fare_cents       BIGINT NOT NULL,
		currency         TEXT NOT NULL DEFAULT 'USD',
		source           TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_price_checks_trip ON price_checks(trip_id, checked_at);
	`

	_, err := d.pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// UpsertTrip stores an extracted record. The trips row is upserted;
// segments are deleted and reinserted in the same transaction so a
// re-extraction can never leave a stale leg behind.
func (d *PostgresDB) UpsertTrip(ctx context.Context, r *trip.Record) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	_, err = tx.Exec(ctx, `
		INSERT INTO trips (trip_id, record_locator, airline, first_name, last_name, fare_brand, ticket_number,
			origin_iata, destination_iata, departure_date, return_date, confidence, note, first_extracted, last_extracted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		ON CONFLICT (trip_id) DO UPDATE SET
			record_locator = EXCLUDED.record_locator,
			airline = EXCLUDED.airline,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			fare_brand = EXCLUDED.fare_brand,
			ticket_number = EXCLUDED.ticket_number,
			origin_iata = EXCLUDED.origin_iata,
			destination_iata = EXCLUDED.destination_iata,
			departure_date = EXCLUDED.departure_date,
			return_date = EXCLUDED.return_date,
			confidence = EXCLUDED.confidence,
			note = EXCLUDED.note,
			last_extracted = EXCLUDED.last_extracted,
			extract_count = trips.extract_count + 1
	`, r.TripID, r.RecordLocator, r.Airline, r.FirstName, r.LastName, r.FareBrand, r.TicketNumber,
		r.OriginIATA, r.DestinationIATA, r.DepartureDate, r.ReturnDate, string(r.Confidence), r.Note, now)
	if err != nil {
		return fmt.Errorf("upsert trip: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM trip_segments WHERE trip_id = $1`, r.TripID); err != nil {
		return fmt.Errorf("clear segments: %w", err)
	}

	for _, s := range r.Segments {
		_, err := tx.Exec(ctx, `
			INSERT INTO trip_segments (trip_id, seq, carrier, flight_number, depart_airport, arrive_airport, departure_time, arrival_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, r.TripID, s.Index, s.Carrier, s.FlightNumber, s.DepartAirport, s.ArriveAirport, s.DepartureTime, s.ArrivalTime)
		if err != nil {
			return fmt.Errorf("insert segment %d: %w", s.Index, err)
		}
	}

	return tx.Commit(ctx)
}

// GetTrip retrieves a trip record with its segments in travel order.
// Returns nil, nil when the trip is unknown.
func (d *PostgresDB) GetTrip(ctx context.Context, tripID string) (*trip.Record, error) {
	var r trip.Record
	var confidence string
	err := d.pool.QueryRow(ctx, `
		SELECT trip_id, record_locator, airline, first_name, last_name, fare_brand, ticket_number,
			origin_iata, destination_iata, departure_date, return_date, confidence, note
		FROM trips WHERE trip_id = $1
	`, tripID).Scan(&r.TripID, &r.RecordLocator, &r.Airline, &r.FirstName, &r.LastName, &r.FareBrand,
		&r.TicketNumber, &r.OriginIATA, &r.DestinationIATA, &r.DepartureDate, &r.ReturnDate, &confidence, &r.Note)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Confidence = trip.Confidence(confidence)

	rows, err := d.pool.Query(ctx, `
		SELECT seq, carrier, flight_number, depart_airport, arrive_airport, departure_time, arrival_time
		FROM trip_segments WHERE trip_id = $1 ORDER BY seq
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s trip.Segment
		if err := rows.Scan(&s.Index, &s.Carrier, &s.FlightNumber, &s.DepartAirport, &s.ArriveAirport, &s.DepartureTime, &s.ArrivalTime); err != nil {
			return nil, err
		}
		r.Segments = append(r.Segments, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &r, nil
}

// ListTripsByConfidence retrieves trips at a given confidence tier,
// newest extraction first.
func (d *PostgresDB) ListTripsByConfidence(ctx context.Context, c trip.Confidence, limit int) ([]trip.Record, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT trip_id, record_locator, airline, origin_iata, destination_iata, departure_date, return_date, confidence, note
		FROM trips WHERE confidence = $1
		ORDER BY last_extracted DESC
		LIMIT $2
	`, string(c), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []trip.Record
	for rows.Next() {
		var r trip.Record
		var confidence string
		if err := rows.Scan(&r.TripID, &r.RecordLocator, &r.Airline, &r.OriginIATA, &r.DestinationIATA,
			&r.DepartureDate, &r.ReturnDate, &confidence, &r.Note); err != nil {
			return nil, err
		}
		r.Confidence = trip.Confidence(confidence)
		records = append(records, r)
	}
	return records, rows.Err()
}

// PriceCheck is one fare observation for a tracked trip.
type PriceCheck struct {
	ID        int64
	TripID    string
	CheckedAt time.Time
	FareCents int64
	Currency  string
	Source    string
}

// InsertPriceCheck records a fare observation.
func (d *PostgresDB) InsertPriceCheck(ctx context.Context, pc PriceCheck) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO price_checks (trip_id, checked_at, fare_cents, currency, source)
		VALUES ($1, $2, $3, $4, $5)
	`, pc.TripID, pc.CheckedAt, pc.FareCents, pc.Currency, pc.Source)
	return err
}

// ListPriceChecks retrieves fare observations for a trip, oldest first.
func (d *PostgresDB) ListPriceChecks(ctx context.Context, tripID string) ([]PriceCheck, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, trip_id, checked_at, fare_cents, currency, source
		FROM price_checks WHERE trip_id = $1 ORDER BY checked_at
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []PriceCheck
	for rows.Next() {
		var pc PriceCheck
		if err := rows.Scan(&pc.ID, &pc.TripID, &pc.CheckedAt, &pc.FareCents, &pc.Currency, &pc.Source); err != nil {
			return nil, err
		}
		checks = append(checks, pc)
	}
	return checks, rows.Err()
}

// Pool returns the underlying connection pool for advanced operations.
func (d *PostgresDB) Pool() *pgxpool.Pool {
	return d.pool
}
