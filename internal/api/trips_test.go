package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"faredrop/internal/trip"
)

func TestHealthEndpoint(t *testing.T) {
	server := NewTripServer(nil, Config{Port: 8081})
	router := server.Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestAuthMiddleware(t *testing.T) {
	server := NewTripServer(nil, Config{
		Port:        8081,
		AuthEnabled: true,
		APIKeys:     []string{"test-key-123", "another-key"},
	})
	router := server.Router()

	tests := []struct {
		name       string
		apiKey     string
		keyHeader  string
		wantStatus int
	}{
		{
			name:       "no key",
			apiKey:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid key",
			apiKey:     "wrong-key",
			keyHeader:  "X-API-Key",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "valid key via X-API-Key",
			apiKey:     "test-key-123",
			keyHeader:  "X-API-Key",
			wantStatus: http.StatusOK,
		},
		{
			name:       "valid key via Bearer",
			apiKey:     "another-key",
			keyHeader:  "Authorization",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.apiKey != "" {
				if tt.keyHeader == "Authorization" {
					req.Header.Set("Authorization", "Bearer "+tt.apiKey)
				} else {
					req.Header.Set(tt.keyHeader, tt.apiKey)
				}
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestAuthMiddlewareQueryParam(t *testing.T) {
	server := NewTripServer(nil, Config{
		Port:        8081,
		AuthEnabled: true,
		APIKeys:     []string{"query-key"},
	})
	router := server.Router()

	req := httptest.NewRequest(http.MethodGet, "/health?api_key=query-key", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestTripResponseFormat(t *testing.T) {
	dep := time.Date(2026, 3, 31, 13, 15, 0, 0, time.UTC)
	arr := time.Date(2026, 3, 31, 17, 5, 0, 0, time.UTC)

	r := &trip.Record{
		TripID:          "trip-1",
		RecordLocator:   "GO7RLB",
		Airline:         "DL",
		FirstName:       "John",
		LastName:        "Smith",
		FareBrand:       "Main Cabin",
		TicketNumber:    "0062345678901",
		OriginIATA:      "LGA",
		DestinationIATA: "TQO",
		DepartureDate:   "2026-03-31",
		ReturnDate:      "2026-04-07",
		Confidence:      trip.ConfidenceExactFlight,
		Segments: []trip.Segment{
			{
				Index:         0,
				Carrier:       "DL",
				FlightNumber:  "342",
				DepartAirport: "LGA",
				ArriveAirport: "TQO",
				DepartureTime: &dep,
				ArrivalTime:   &arr,
			},
		},
	}

	resp := recordToResponse(r)

	if resp.TripID != "trip-1" {
		t.Errorf("expected TripID 'trip-1', got %q", resp.TripID)
	}
	if resp.RecordLocator != "GO7RLB" {
		t.Errorf("expected RecordLocator 'GO7RLB', got %q", resp.RecordLocator)
	}
	if resp.Passenger != "John Smith" {
		t.Errorf("expected Passenger 'John Smith', got %q", resp.Passenger)
	}
	if resp.Origin != "LGA" || resp.Destination != "TQO" {
		t.Errorf("expected route LGA-TQO, got %s-%s", resp.Origin, resp.Destination)
	}
	if resp.Confidence != "exact-flight" {
		t.Errorf("expected Confidence 'exact-flight', got %q", resp.Confidence)
	}
	if len(resp.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(resp.Segments))
	}
	if resp.Segments[0].DepartureTime != dep.Format(time.RFC3339) {
		t.Errorf("expected DepartureTime %q, got %q", dep.Format(time.RFC3339), resp.Segments[0].DepartureTime)
	}
}

func TestTripResponseOmitsPassengerWithoutSurname(t *testing.T) {
	r := &trip.Record{
		TripID:     "trip-2",
		FirstName:  "John",
		Confidence: trip.ConfidenceLow,
	}

	resp := recordToResponse(r)
	if resp.Passenger != "" {
		t.Errorf("expected empty Passenger without surname, got %q", resp.Passenger)
	}
}

func TestBatchRequestValidation(t *testing.T) {
	server := NewTripServer(nil, Config{Port: 8081})
	router := chi.NewRouter()
	router.Post("/trips/batch", server.handleBatchTrips)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "empty body",
			body:       "",
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid JSON",
		},
		{
			name:       "invalid json",
			body:       "not json",
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid JSON",
		},
		{
			name:       "empty trip list",
			body:       `{"trip_ids": []}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "No trips specified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/trips/batch", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var resp map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&resp); err == nil {
				if tt.wantError != "" && resp["error"] == "" {
					t.Errorf("expected error containing %q", tt.wantError)
				}
			}
		})
	}
}

func TestInsertPriceValidation(t *testing.T) {
	server := NewTripServer(nil, Config{Port: 8081})
	router := chi.NewRouter()
	router.Post("/trips/{trip_id}/prices", server.handleInsertPrice)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "invalid json",
			body:       "not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero fare",
			body:       `{"fare_cents": 0}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative fare",
			body:       `{"fare_cents": -100}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/trips/trip-1/prices", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCORSHeaders(t *testing.T) {
	r := chi.NewRouter()
	r.Use(corsMiddleware)
	r.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Test OPTIONS request.
	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 for OPTIONS, got %d", rec.Code)
	}

	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS Allow-Origin header")
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected CORS Allow-Methods header")
	}
}
