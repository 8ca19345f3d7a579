// Package review provides a web UI for reviewing and annotating extraction
// samples.
package review

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"

	"faredrop/internal/storage"
)

//go:embed static/*
var staticFiles embed.FS

// Server provides the review web UI.
type Server struct {
	db     *storage.ReviewDB
	port   int
	filter string // Optional document kind filter
}

// NewServer creates a new review server.
func NewServer(db *storage.ReviewDB, port int, filter string) *Server {
	return &Server{
		db:     db,
		port:   port,
		filter: filter,
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	mux := http.NewServeMux()

	// API routes.
	mux.HandleFunc("/api/samples", s.handleSamples)
	mux.HandleFunc("/api/samples/", s.handleSample) // /api/samples/{id}
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/export/json", s.handleExportJSON)
	mux.HandleFunc("/api/export/go", s.handleExportGo)

	// Static files.
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("embed static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Review UI starting at http://localhost%s", addr)
	if s.filter != "" {
		log.Printf("Filtering to document kind: %s", s.filter)
	}

	return http.ListenAndServe(addr, mux)
}

// APISample is the JSON representation of a sample.
type APISample struct {
	ID            int64                  `json:"id"`
	CapturedAt    string                 `json:"captured_at"`
	TripID        string                 `json:"trip_id"`
	DocKind       string                 `json:"doc_kind"`
	Airline       string                 `json:"airline"`
	Origin        string                 `json:"origin"`
	Destination   string                 `json:"destination"`
	RawBody       string                 `json:"raw_body"`
	Record        map[string]interface{} `json:"record"`
	MissingFields []string               `json:"missing_fields"`
	Confidence    string                 `json:"confidence"`
	IsGolden      bool                   `json:"is_golden"`
	Annotation    string                 `json:"annotation"`
	Expected      map[string]interface{} `json:"expected,omitempty"`
}

func sampleToAPI(m *storage.Sample) APISample {
	api := APISample{
		ID:          m.ID,
		CapturedAt:  m.CapturedAt.Format("2006-01-02 15:04:05"),
		TripID:      m.TripID,
		DocKind:     m.DocKind,
		Airline:     m.Airline,
		Origin:      m.Origin,
		Destination: m.Destination,
		RawBody:     m.RawBody,
		Confidence:  m.Confidence,
		IsGolden:    m.IsGolden,
		Annotation:  m.Annotation,
	}

	// Parse missing fields.
	if m.MissingFields != "" {
		api.MissingFields = strings.Split(m.MissingFields, ",")
	}

	// Parse JSON fields.
	if m.RecordJSON != "" {
		_ = json.Unmarshal([]byte(m.RecordJSON), &api.Record)
	}
	if m.ExpectedJSON != "" {
		_ = json.Unmarshal([]byte(m.ExpectedJSON), &api.Expected)
	}

	return api
}

func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse query parameters.
	q := r.URL.Query()
	params := storage.SampleQueryParams{
		DocKind:      q.Get("kind"),
		Airline:      q.Get("airline"),
		Confidence:   q.Get("confidence"),
		MissingField: q.Get("missing"),
		HasMissing:   q.Get("has_missing") == "true",
		GoldenOnly:   q.Get("golden") == "true",
		FullText:     q.Get("search"),
		OrderDesc:    q.Get("desc") != "false",
	}

	// Apply server-level filter.
	if s.filter != "" && params.DocKind == "" {
		params.DocKind = s.filter
	}

	// Pagination.
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		params.Limit = limit
	} else {
		params.Limit = 50
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		params.Offset = offset
	}

	samples, err := s.db.QuerySamples(params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Convert to API format.
	var result []APISample
	for i := range samples {
		result = append(result, sampleToAPI(&samples[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	// Extract ID from path: /api/samples/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/samples/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Missing sample ID", http.StatusBadRequest)
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Error(w, "Invalid sample ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getSample(w, id)
	case http.MethodPost, http.MethodPatch:
		// Check for sub-action.
		if len(parts) > 1 {
			switch parts[1] {
			case "golden":
				s.setGolden(w, r, id)
			case "annotation":
				s.setAnnotation(w, r, id)
			case "expected":
				s.setExpected(w, r, id)
			default:
				http.Error(w, "Unknown action", http.StatusBadRequest)
			}
		} else {
			http.Error(w, "No action specified", http.StatusBadRequest)
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) getSample(w http.ResponseWriter, id int64) {
	sample, err := s.db.GetSample(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sample == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sampleToAPI(sample))
}

func (s *Server) setGolden(w http.ResponseWriter, r *http.Request, id int64) {
	var req struct {
		Golden bool `json:"golden"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.db.SetGolden(id, req.Golden); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (s *Server) setAnnotation(w http.ResponseWriter, r *http.Request, id int64) {
	var req struct {
		Annotation string `json:"annotation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.db.SetAnnotation(id, req.Annotation); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (s *Server) setExpected(w http.ResponseWriter, r *http.Request, id int64) {
	var req struct {
		Expected map[string]interface{} `json:"expected"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	expectedJSON, err := json.Marshal(req.Expected)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.db.SetExpectedJSON(id, string(expectedJSON)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := s.db.GetStats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}

// GoldenExport represents a golden sample for export.
type GoldenExport struct {
	ID         int64                  `json:"id"`
	RawBody    string                 `json:"raw_body"`
	DocKind    string                 `json:"doc_kind"`
	Airline    string                 `json:"airline,omitempty"`
	Expected   map[string]interface{} `json:"expected"`
	Annotation string                 `json:"annotation,omitempty"`
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	samples, err := s.db.GetGoldenSamples()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var exports []GoldenExport
	for _, m := range samples {
		export := GoldenExport{
			ID:         m.ID,
			RawBody:    m.RawBody,
			DocKind:    m.DocKind,
			Airline:    m.Airline,
			Annotation: m.Annotation,
		}

		// Use expected_json if set, otherwise use the stored record.
		if m.ExpectedJSON != "" {
			_ = json.Unmarshal([]byte(m.ExpectedJSON), &export.Expected)
		} else if m.RecordJSON != "" {
			_ = json.Unmarshal([]byte(m.RecordJSON), &export.Expected)
		}

		exports = append(exports, export)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=golden_samples.json")
	_ = json.NewEncoder(w).Encode(exports)
}

func (s *Server) handleExportGo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	samples, err := s.db.GetGoldenSamples()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Group by document kind.
	byKind := make(map[string][]storage.Sample)
	for _, m := range samples {
		byKind[m.DocKind] = append(byKind[m.DocKind], m)
	}

	// Generate Go test code.
	var code strings.Builder
	code.WriteString("// Code generated from golden samples. DO NOT EDIT.\n\n")
	code.WriteString("package extractor_test\n\n")
	code.WriteString("import (\n")
	code.WriteString("\t\"testing\"\n\n")
	code.WriteString("\t\"faredrop/internal/extractor\"\n")
	code.WriteString("\t_ \"faredrop/internal/parsers\"\n")
	code.WriteString("\t\"faredrop/internal/trip\"\n")
	code.WriteString(")\n\n")

	for kind, group := range byKind {
		code.WriteString(fmt.Sprintf("func TestGolden_%s(t *testing.T) {\n", exportName(kind)))
		code.WriteString("\tcases := []struct {\n")
		code.WriteString("\t\tname           string\n")
		code.WriteString("\t\tbody           string\n")
		code.WriteString("\t\tairline        string\n")
		code.WriteString("\t\twantConfidence string\n")
		code.WriteString("\t}{\n")

		for _, m := range group {
			name := fmt.Sprintf("sample_%d", m.ID)
			if m.TripID != "" {
				name = m.TripID
			}
			// Escape backticks in raw body.
			rawBody := strings.ReplaceAll(m.RawBody, "`", "` + \"`\" + `")
			code.WriteString(fmt.Sprintf("\t\t{%q, `%s`, %q, %q},\n", name, rawBody, m.Airline, m.Confidence))
		}

		code.WriteString("\t}\n\n")
		code.WriteString("\tfor _, tc := range cases {\n")
		code.WriteString("\t\tt.Run(tc.name, func(t *testing.T) {\n")
		code.WriteString(fmt.Sprintf("\t\t\tdoc := &trip.Document{Kind: trip.Kind(%q), Airline: tc.airline, Body: tc.body}\n", kind))
		code.WriteString("\t\t\trecord, err := extractor.Extract(doc)\n")
		code.WriteString("\t\t\tif err != nil {\n")
		code.WriteString("\t\t\t\tt.Fatalf(\"Extract: %v\", err)\n")
		code.WriteString("\t\t\t}\n")
		code.WriteString("\t\t\tif string(record.Confidence) != tc.wantConfidence {\n")
		code.WriteString("\t\t\t\tt.Errorf(\"got confidence %q, want %q\", record.Confidence, tc.wantConfidence)\n")
		code.WriteString("\t\t\t}\n")
		code.WriteString("\t\t})\n")
		code.WriteString("\t}\n")
		code.WriteString("}\n\n")
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=golden_test.go")
	_, _ = w.Write([]byte(code.String()))
}

// exportName turns a document kind into a Go test name suffix.
func exportName(kind string) string {
	if kind == "" {
		return "Unknown"
	}
	return strings.ToUpper(kind[:1]) + kind[1:]
}
