package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestReviewDB(t *testing.T) *ReviewDB {
	t.Helper()
	db, err := OpenReview(filepath.Join(t.TempDir(), "review.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestReviewDB_InsertAndGet(t *testing.T) {
	db := openTestReviewDB(t)

	id, err := db.InsertSample(SampleInsertParams{
		CapturedAt:  time.Now().UTC().Format(time.RFC3339),
		TripID:      "trip-1",
		DocKind:     "html",
		Airline:     "DL",
		Origin:      "LGA",
		Destination: "TQO",
		RawBody:     "<html>manage my trip</html>",
		Record:      map[string]string{"record_locator": "GO7RLB"},
		Confidence:  "exact-flight",
	})
	if err != nil {
		t.Fatal(err)
	}

	s, err := db.GetSample(id)
	if err != nil {
		t.Fatal(err)
	}
	if s == nil {
		t.Fatal("expected sample")
	}
	if s.TripID != "trip-1" || s.Airline != "DL" || s.Confidence != "exact-flight" {
		t.Errorf("sample = %+v", s)
	}
	if s.RecordJSON == "" {
		t.Error("RecordJSON should be populated")
	}

	if missing, err := db.GetSample(id + 100); err != nil || missing != nil {
		t.Errorf("unknown id: got %+v, %v", missing, err)
	}
}

func TestReviewDB_QueryFilters(t *testing.T) {
	db := openTestReviewDB(t)

	inserts := []SampleInsertParams{
		{DocKind: "html", Airline: "DL", RawBody: "delta manage trip", Record: struct{}{}, Confidence: "exact-flight"},
		{DocKind: "html", Airline: "UA", RawBody: "united receipt", Record: struct{}{}, Confidence: "route-estimate", MissingFields: []string{"record_locator"}},
		{DocKind: "text", Airline: "", RawBody: "pasted itinerary text", Record: struct{}{}, Confidence: "low", MissingFields: []string{"record_locator", "passenger"}},
	}
	for _, p := range inserts {
		p.CapturedAt = time.Now().UTC().Format(time.RFC3339)
		if _, err := db.InsertSample(p); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.QuerySamples(SampleQueryParams{DocKind: "html"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("html samples = %d, want 2", len(got))
	}

	got, err = db.QuerySamples(SampleQueryParams{HasMissing: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("samples with missing fields = %d, want 2", len(got))
	}

	got, err = db.QuerySamples(SampleQueryParams{FullText: "itinerary"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].DocKind != "text" {
		t.Errorf("full-text samples = %+v", got)
	}
}

func TestReviewDB_GoldenWorkflow(t *testing.T) {
	db := openTestReviewDB(t)

	id, err := db.InsertSample(SampleInsertParams{
		CapturedAt: time.Now().UTC().Format(time.RFC3339),
		DocKind:    "text",
		RawBody:    "Confirmation code: GO7RLB",
		Record:     struct{}{},
		Confidence: "medium",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := db.SetGolden(id, true); err != nil {
		t.Fatal(err)
	}
	if err := db.SetAnnotation(id, "locator only, no name line"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetExpectedJSON(id, `{"record_locator":"GO7RLB"}`); err != nil {
		t.Fatal(err)
	}

	golden, err := db.GetGoldenSamples()
	if err != nil {
		t.Fatal(err)
	}
	if len(golden) != 1 {
		t.Fatalf("golden samples = %d, want 1", len(golden))
	}
	if !golden[0].IsGolden || golden[0].Annotation == "" || golden[0].ExpectedJSON == "" {
		t.Errorf("golden sample = %+v", golden[0])
	}

	// Re-running the extractor updates the stored result in place.
	if err := db.UpdateRecord(id, map[string]string{"record_locator": "GO7RLB"}, nil, "medium"); err != nil {
		t.Fatal(err)
	}
	s, err := db.GetSample(id)
	if err != nil {
		t.Fatal(err)
	}
	if s.MissingFields != "" || s.Confidence != "medium" {
		t.Errorf("updated sample = %+v", s)
	}
}

func TestReviewDB_Stats(t *testing.T) {
	db := openTestReviewDB(t)

	inserts := []SampleInsertParams{
		{DocKind: "html", RawBody: "a", Record: struct{}{}, Confidence: "exact-flight"},
		{DocKind: "html", RawBody: "b", Record: struct{}{}, Confidence: "exact-flight"},
		{DocKind: "text", RawBody: "c", Record: struct{}{}, Confidence: "low", MissingFields: []string{"record_locator"}},
	}
	for _, p := range inserts {
		p.CapturedAt = time.Now().UTC().Format(time.RFC3339)
		if _, err := db.InsertSample(p); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalSamples != 3 {
		t.Errorf("TotalSamples = %d", stats.TotalSamples)
	}
	if stats.ByConfidence["exact-flight"] != 2 || stats.ByConfidence["low"] != 1 {
		t.Errorf("ByConfidence = %v", stats.ByConfidence)
	}
	if stats.ByDocKind["html"] != 2 {
		t.Errorf("ByDocKind = %v", stats.ByDocKind)
	}
	if stats.WithMissing != 1 || stats.TopMissingFields["record_locator"] != 1 {
		t.Errorf("missing stats = %d, %v", stats.WithMissing, stats.TopMissingFields)
	}
}
