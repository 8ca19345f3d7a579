// Package api provides REST API endpoints for extracted trip data.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"faredrop/internal/storage"
	"faredrop/internal/trip"
)

// TripServer provides REST API access to extracted trips and their fare
// observations.
type TripServer struct {
	pg          *storage.PostgresDB
	port        int
	authEnabled bool
	apiKeys     map[string]bool // Simple API key auth (when enabled).
}

// Config holds configuration for the trips API server.
type Config struct {
	Port        int
	AuthEnabled bool
	APIKeys     []string // List of valid API keys.
}

// NewTripServer creates a new trips API server.
func NewTripServer(pg *storage.PostgresDB, cfg Config) *TripServer {
	keys := make(map[string]bool)
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys[k] = true
		}
	}

	return &TripServer{
		pg:          pg,
		port:        cfg.Port,
		authEnabled: cfg.AuthEnabled,
		apiKeys:     keys,
	}
}

// Run starts the HTTP server.
func (s *TripServer) Run() error {
	r := chi.NewRouter()

	// Standard middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS for browser access.
	r.Use(corsMiddleware)

	// Optional authentication.
	if s.authEnabled {
		r.Use(s.authMiddleware)
	}

	// API routes.
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required).
		r.Get("/health", s.handleHealth)

		// Trip endpoints.
		r.Get("/trips", s.handleListTrips)
		r.Get("/trips/{trip_id}", s.handleGetTrip)
		r.Get("/trips/{trip_id}/prices", s.handleListPrices)
		r.Post("/trips/{trip_id}/prices", s.handleInsertPrice)

		// Batch lookup for multiple trips.
		r.Post("/trips/batch", s.handleBatchTrips)
	})

	addr := ":" + itoa(s.port)
	log.Printf("Trips API starting at http://localhost%s", addr)
	if s.authEnabled {
		log.Printf("Authentication: ENABLED (API key required)")
	} else {
		log.Printf("Authentication: DISABLED (open access)")
	}

	return http.ListenAndServe(addr, r)
}

// Router returns the configured chi router for embedding in other servers.
func (s *TripServer) Router() chi.Router {
	r := chi.NewRouter()

	// Optional authentication.
	if s.authEnabled {
		r.Use(s.authMiddleware)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/trips", s.handleListTrips)
	r.Get("/trips/{trip_id}", s.handleGetTrip)
	r.Get("/trips/{trip_id}/prices", s.handleListPrices)
	r.Post("/trips/{trip_id}/prices", s.handleInsertPrice)
	r.Post("/trips/batch", s.handleBatchTrips)

	return r
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware validates API key authentication.
func (s *TripServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check X-API-Key header first.
		apiKey := r.Header.Get("X-API-Key")

		// Fall back to Authorization: Bearer <key>.
		if apiKey == "" {
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				apiKey = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		// Fall back to query parameter (for simple testing).
		if apiKey == "" {
			apiKey = r.URL.Query().Get("api_key")
		}

		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "API key required")
			return
		}

		if !s.apiKeys[apiKey] {
			writeError(w, http.StatusForbidden, "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SegmentResponse is the JSON representation of one flight leg.
type SegmentResponse struct {
	Carrier       string `json:"carrier"`
	FlightNumber  string `json:"flight_number"`
	DepartAirport string `json:"depart_airport"`
	ArriveAirport string `json:"arrive_airport"`
	DepartureTime string `json:"departure_time,omitempty"`
	ArrivalTime   string `json:"arrival_time,omitempty"`
}

// TripResponse is the JSON response for trip queries.
type TripResponse struct {
	TripID        string            `json:"trip_id"`
	RecordLocator string            `json:"record_locator,omitempty"`
	Airline       string            `json:"airline,omitempty"`
	Passenger     string            `json:"passenger,omitempty"`
	FareBrand     string            `json:"fare_brand,omitempty"`
	TicketNumber  string            `json:"ticket_number,omitempty"`
	Origin        string            `json:"origin,omitempty"`
	Destination   string            `json:"destination,omitempty"`
	DepartureDate string            `json:"departure_date,omitempty"`
	ReturnDate    string            `json:"return_date,omitempty"`
	Segments      []SegmentResponse `json:"segments,omitempty"`
	Confidence    string            `json:"confidence"`
	Note          string            `json:"note,omitempty"`
}

func recordToResponse(r *trip.Record) TripResponse {
	resp := TripResponse{
		TripID:        r.TripID,
		RecordLocator: r.RecordLocator,
		Airline:       r.Airline,
		FareBrand:     r.FareBrand,
		TicketNumber:  r.TicketNumber,
		Origin:        r.OriginIATA,
		Destination:   r.DestinationIATA,
		DepartureDate: r.DepartureDate,
		ReturnDate:    r.ReturnDate,
		Confidence:    string(r.Confidence),
		Note:          r.Note,
	}

	if r.LastName != "" {
		resp.Passenger = strings.TrimSpace(r.FirstName + " " + r.LastName)
	}

	for _, seg := range r.Segments {
		sr := SegmentResponse{
			Carrier:       seg.Carrier,
			FlightNumber:  seg.FlightNumber,
			DepartAirport: seg.DepartAirport,
			ArriveAirport: seg.ArriveAirport,
		}
		if seg.DepartureTime != nil {
			sr.DepartureTime = seg.DepartureTime.Format(time.RFC3339)
		}
		if seg.ArrivalTime != nil {
			sr.ArrivalTime = seg.ArrivalTime.Format(time.RFC3339)
		}
		resp.Segments = append(resp.Segments, sr)
	}

	return resp
}

func (s *TripServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *TripServer) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "trip_id")
	if tripID == "" {
		writeError(w, http.StatusBadRequest, "trip_id is required")
		return
	}

	record, err := s.pg.GetTrip(r.Context(), tripID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "No trip found")
		return
	}

	writeJSON(w, http.StatusOK, recordToResponse(record))
}

func (s *TripServer) handleListTrips(w http.ResponseWriter, r *http.Request) {
	confidence := r.URL.Query().Get("confidence")
	if confidence == "" {
		writeError(w, http.StatusBadRequest, "confidence query parameter is required")
		return
	}

	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}

	records, err := s.pg.ListTripsByConfidence(r.Context(), trip.Confidence(confidence), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	results := make([]TripResponse, 0, len(records))
	for i := range records {
		results = append(results, recordToResponse(&records[i]))
	}

	writeJSON(w, http.StatusOK, results)
}

// PriceResponse is the JSON representation of one fare observation.
type PriceResponse struct {
	CheckedAt string `json:"checked_at"`
	FareCents int64  `json:"fare_cents"`
	Currency  string `json:"currency"`
	Source    string `json:"source,omitempty"`
}

func (s *TripServer) handleListPrices(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "trip_id")
	if tripID == "" {
		writeError(w, http.StatusBadRequest, "trip_id is required")
		return
	}

	checks, err := s.pg.ListPriceChecks(r.Context(), tripID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	results := make([]PriceResponse, 0, len(checks))
	for _, pc := range checks {
		results = append(results, PriceResponse{
			CheckedAt: pc.CheckedAt.UTC().Format(time.RFC3339),
			FareCents: pc.FareCents,
			Currency:  pc.Currency,
			Source:    pc.Source,
		})
	}

	writeJSON(w, http.StatusOK, results)
}

// InsertPriceRequest is the request body for recording a fare observation.
type InsertPriceRequest struct {
	FareCents int64  `json:"fare_cents"`
	Currency  string `json:"currency,omitempty"`
	Source    string `json:"source,omitempty"`
}

func (s *TripServer) handleInsertPrice(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "trip_id")
	if tripID == "" {
		writeError(w, http.StatusBadRequest, "trip_id is required")
		return
	}

	var req InsertPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if req.FareCents <= 0 {
		writeError(w, http.StatusBadRequest, "fare_cents must be positive")
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	err := s.pg.InsertPriceCheck(r.Context(), storage.PriceCheck{
		TripID:    tripID,
		CheckedAt: time.Now().UTC(),
		FareCents: req.FareCents,
		Currency:  req.Currency,
		Source:    req.Source,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

// BatchRequest is the request body for batch trip lookups.
type BatchRequest struct {
	TripIDs []string `json:"trip_ids"`
}

// BatchResponse is the response for batch trip lookups.
type BatchResponse struct {
	Results map[string]TripResponse `json:"results"` // Keyed by trip_id.
	Errors  map[string]string       `json:"errors,omitempty"`
}

func (s *TripServer) handleBatchTrips(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	if len(req.TripIDs) == 0 {
		writeError(w, http.StatusBadRequest, "No trips specified")
		return
	}

	if len(req.TripIDs) > 100 {
		writeError(w, http.StatusBadRequest, "Maximum 100 trips per batch request")
		return
	}

	ctx := context.Background()

	resp := BatchResponse{
		Results: make(map[string]TripResponse),
		Errors:  make(map[string]string),
	}

	for _, tripID := range req.TripIDs {
		if tripID == "" {
			continue
		}

		record, err := s.pg.GetTrip(ctx, tripID)
		if err != nil {
			resp.Errors[tripID] = err.Error()
			continue
		}
		if record != nil {
			resp.Results[tripID] = recordToResponse(record)
		}
	}

	// Remove empty errors map for cleaner output.
	if len(resp.Errors) == 0 {
		resp.Errors = nil
	}

	writeJSON(w, http.StatusOK, resp)
}

// Helper functions.

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
