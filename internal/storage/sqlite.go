package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Sample is a captured document and its extraction result, stored in the
// local review workbench. Golden samples pin expected output so extractor
// changes can be checked against real captures.
type Sample struct {
	ID            int64
	CapturedAt    time.Time
	TripID        string
	DocKind       string
	Airline       string
	Origin        string
	Destination   string
	RawBody       string
	RecordJSON    string
	MissingFields string
	Confidence    string
	IsGolden      bool
	Annotation    string
	ExpectedJSON  string
}

// ReviewDB wraps a SQLite database for the review workbench.
type ReviewDB struct {
	db *sql.DB
}

// OpenReview opens or creates a review database at the given path.
func OpenReview(path string) (*ReviewDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createReviewSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &ReviewDB{db: db}, nil
}

// Close closes the database connection.
func (d *ReviewDB) Close() error {
	return d.db.Close()
}

func createReviewSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		captured_at TEXT NOT NULL,
		trip_id TEXT,
		doc_kind TEXT NOT NULL,
		airline TEXT,
		origin TEXT,
		destination TEXT,
		raw_body TEXT NOT NULL,
		record_json TEXT NOT NULL,
		missing_fields TEXT,
		confidence TEXT,
		is_golden INTEGER DEFAULT 0,
		annotation TEXT,
		expected_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_samples_kind ON samples(doc_kind);
	CREATE INDEX IF NOT EXISTS idx_samples_confidence ON samples(confidence);
	CREATE INDEX IF NOT EXISTS idx_samples_airline ON samples(airline);
	CREATE INDEX IF NOT EXISTS idx_samples_golden ON samples(is_golden);

	-- FTS5 virtual table for full-text search on the captured body.
	CREATE VIRTUAL TABLE IF NOT EXISTS samples_fts USING fts5(
		raw_body,
		content='samples',
		content_rowid='id'
	);

	-- Triggers to keep FTS index in sync.
	CREATE TRIGGER IF NOT EXISTS samples_ai AFTER INSERT ON samples BEGIN
		INSERT INTO samples_fts(rowid, raw_body) VALUES (new.id, new.raw_body);
	END;

	CREATE TRIGGER IF NOT EXISTS samples_ad AFTER DELETE ON samples BEGIN
		INSERT INTO samples_fts(samples_fts, rowid, raw_body) VALUES('delete', old.id, old.raw_body);
	END;

	CREATE TRIGGER IF NOT EXISTS samples_au AFTER UPDATE ON samples BEGIN
		INSERT INTO samples_fts(samples_fts, rowid, raw_body) VALUES('delete', old.id, old.raw_body);
		INSERT INTO samples_fts(rowid, raw_body) VALUES (new.id, new.raw_body);
	END;
	`

	_, err := db.Exec(schema)
	return err
}

// SampleInsertParams contains the parameters for storing a sample.
type SampleInsertParams struct {
	CapturedAt    string
	TripID        string
	DocKind       string
	Airline       string
	Origin        string
	Destination   string
	RawBody       string
	Record        interface{}
	MissingFields []string
	Confidence    string
}

// InsertSample stores a captured document with its extraction result.
func (d *ReviewDB) InsertSample(p SampleInsertParams) (int64, error) {
	recordJSON, err := json.Marshal(p.Record)
	if err != nil {
		return 0, fmt.Errorf("marshal record: %w", err)
	}

	missingFields := strings.Join(p.MissingFields, ",")

	result, err := d.db.Exec(`
		INSERT INTO samples (captured_at, trip_id, doc_kind, airline, origin, destination, raw_body, record_json, missing_fields, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.CapturedAt, p.TripID, p.DocKind, p.Airline, p.Origin, p.Destination, p.RawBody, string(recordJSON), missingFields, p.Confidence)
	if err != nil {
		return 0, fmt.Errorf("insert sample: %w", err)
	}

	return result.LastInsertId()
}

// SampleQueryParams contains filtering options for querying samples.
type SampleQueryParams struct {
	ID           int64  // Filter by specific sample ID.
	DocKind      string // Filter by document kind (exact match).
	Airline      string // Filter by airline (exact match).
	Confidence   string // Filter by confidence tier (exact match).
	MissingField string // Filter by specific missing field (LIKE match).
	HasMissing   bool   // Only show samples with any missing fields.
	GoldenOnly   bool   // Only show golden samples.
	FullText     string // FTS5 full-text search on raw_body.
	Limit        int    // Max results (default 100).
	Offset       int    // Pagination offset.
	OrderDesc    bool   // Sort descending by id.
}

// QuerySamples retrieves samples matching the given parameters.
func (d *ReviewDB) QuerySamples(p SampleQueryParams) ([]Sample, error) {
	var conditions []string
	var args []interface{}

	if p.ID != 0 {
		conditions = append(conditions, "id = ?")
		args = append(args, p.ID)
	}
	if p.DocKind != "" {
		conditions = append(conditions, "doc_kind = ?")
		args = append(args, p.DocKind)
	}
	if p.Airline != "" {
		conditions = append(conditions, "airline = ?")
		args = append(args, p.Airline)
	}
	if p.Confidence != "" {
		conditions = append(conditions, "confidence = ?")
		args = append(args, p.Confidence)
	}
	if p.MissingField != "" {
		conditions = append(conditions, "missing_fields LIKE ?")
		args = append(args, "%"+p.MissingField+"%")
	}
	if p.HasMissing {
		conditions = append(conditions, "missing_fields != '' AND missing_fields IS NOT NULL")
	}
	if p.GoldenOnly {
		conditions = append(conditions, "is_golden = 1")
	}

	// FTS5 search requires a JOIN with the FTS table.
	var query string
	if p.FullText != "" {
		query = `SELECT s.id, s.captured_at, s.trip_id, s.doc_kind, s.airline, s.origin, s.destination,
				s.raw_body, s.record_json, s.missing_fields, s.confidence, s.is_golden, s.annotation, s.expected_json
				FROM samples s
				JOIN samples_fts fts ON s.id = fts.rowid
				WHERE samples_fts MATCH ?`
		args = append([]interface{}{p.FullText}, args...)
		if len(conditions) > 0 {
			query += " AND " + strings.Join(conditions, " AND ")
		}
	} else {
		query = `SELECT id, captured_at, trip_id, doc_kind, airline, origin, destination,
				raw_body, record_json, missing_fields, confidence, is_golden, annotation, expected_json
				FROM samples`
		if len(conditions) > 0 {
			query += " WHERE " + strings.Join(conditions, " AND ")
		}
	}

	direction := "ASC"
	if p.OrderDesc {
		direction = "DESC"
	}
	query += " ORDER BY id " + direction

	limit := 100
	if p.Limit > 0 {
		limit = p.Limit
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, p.Offset)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var samples []Sample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, *s)
	}

	return samples, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSample(row rowScanner) (*Sample, error) {
	var s Sample
	var capturedAt, tripID, airline, origin, destination sql.NullString
	var missing, confidence, annotation, expectedJSON sql.NullString
	var isGolden sql.NullInt64

	err := row.Scan(&s.ID, &capturedAt, &tripID, &s.DocKind, &airline, &origin, &destination,
		&s.RawBody, &s.RecordJSON, &missing, &confidence, &isGolden, &annotation, &expectedJSON)
	if err != nil {
		return nil, fmt.Errorf("scan sample: %w", err)
	}

	if capturedAt.Valid {
		s.CapturedAt, _ = time.Parse(time.RFC3339, capturedAt.String)
	}
	s.TripID = tripID.String
	s.Airline = airline.String
	s.Origin = origin.String
	s.Destination = destination.String
	s.MissingFields = missing.String
	s.Confidence = confidence.String
	s.IsGolden = isGolden.Valid && isGolden.Int64 == 1
	s.Annotation = annotation.String
	s.ExpectedJSON = expectedJSON.String

	return &s, nil
}

// GetSample retrieves a single sample by ID.
func (d *ReviewDB) GetSample(id int64) (*Sample, error) {
	row := d.db.QueryRow(`SELECT id, captured_at, trip_id, doc_kind, airline, origin, destination,
			raw_body, record_json, missing_fields, confidence, is_golden, annotation, expected_json
			FROM samples WHERE id = ?`, id)

	s, err := scanSample(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// SetGolden marks or unmarks a sample as golden.
func (d *ReviewDB) SetGolden(id int64, golden bool) error {
	val := 0
	if golden {
		val = 1
	}
	_, err := d.db.Exec(`UPDATE samples SET is_golden = ? WHERE id = ?`, val, id)
	return err
}

// SetAnnotation sets the annotation for a sample.
func (d *ReviewDB) SetAnnotation(id int64, annotation string) error {
	_, err := d.db.Exec(`UPDATE samples SET annotation = ? WHERE id = ?`, annotation, id)
	return err
}

// SetExpectedJSON pins the expected extraction output for a sample.
func (d *ReviewDB) SetExpectedJSON(id int64, expectedJSON string) error {
	_, err := d.db.Exec(`UPDATE samples SET expected_json = ? WHERE id = ?`, expectedJSON, id)
	return err
}

// UpdateRecord replaces the extraction result for an existing sample,
// used when re-running the extractor over stored captures.
func (d *ReviewDB) UpdateRecord(id int64, record interface{}, missingFields []string, confidence string) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	_, err = d.db.Exec(`UPDATE samples SET record_json = ?, missing_fields = ?, confidence = ? WHERE id = ?`,
		string(recordJSON), strings.Join(missingFields, ","), confidence, id)
	if err != nil {
		return fmt.Errorf("update sample: %w", err)
	}
	return nil
}

// GetGoldenSamples retrieves all samples marked as golden.
func (d *ReviewDB) GetGoldenSamples() ([]Sample, error) {
	return d.QuerySamples(SampleQueryParams{GoldenOnly: true, Limit: 100000})
}

// ReviewStats returns aggregate statistics about stored samples.
type ReviewStats struct {
	TotalSamples     int
	ByConfidence     map[string]int
	ByDocKind        map[string]int
	WithMissing      int
	TopMissingFields map[string]int
}

// GetStats returns statistics about the stored samples.
func (d *ReviewDB) GetStats() (*ReviewStats, error) {
	stats := &ReviewStats{
		ByConfidence:     make(map[string]int),
		ByDocKind:        make(map[string]int),
		TopMissingFields: make(map[string]int),
	}

	row := d.db.QueryRow("SELECT COUNT(*) FROM samples")
	if err := row.Scan(&stats.TotalSamples); err != nil {
		return nil, err
	}

	rows, err := d.db.Query("SELECT confidence, COUNT(*) FROM samples GROUP BY confidence ORDER BY COUNT(*) DESC")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var tier sql.NullString
		var count int
		if err := rows.Scan(&tier, &count); err != nil {
			_ = rows.Close()
			return nil, err
		}
		stats.ByConfidence[tier.String] = count
	}
	_ = rows.Close()

	rows, err = d.db.Query("SELECT doc_kind, COUNT(*) FROM samples GROUP BY doc_kind ORDER BY COUNT(*) DESC")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			_ = rows.Close()
			return nil, err
		}
		stats.ByDocKind[kind] = count
	}
	_ = rows.Close()

	row = d.db.QueryRow("SELECT COUNT(*) FROM samples WHERE missing_fields != '' AND missing_fields IS NOT NULL")
	if err := row.Scan(&stats.WithMissing); err != nil {
		return nil, err
	}

	// Top missing fields - requires parsing the comma-separated values.
	rows, err = d.db.Query("SELECT missing_fields FROM samples WHERE missing_fields != '' AND missing_fields IS NOT NULL")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var fields string
		if err := rows.Scan(&fields); err != nil {
			_ = rows.Close()
			return nil, err
		}
		for _, f := range strings.Split(fields, ",") {
			f = strings.TrimSpace(f)
			if f != "" {
				stats.TopMissingFields[f]++
			}
		}
	}
	_ = rows.Close()

	return stats, nil
}
