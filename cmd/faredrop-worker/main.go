// faredrop-worker consumes captured documents from NATS, runs the
// extractor, and persists the results: trips to PostgreSQL, extraction
// events to ClickHouse, and an optional sample stream to the local
// review database.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"faredrop/internal/config"
	"faredrop/internal/extractor"
	_ "faredrop/internal/parsers" // register all parsers via init()
	"faredrop/internal/registry"
	"faredrop/internal/storage"
	"faredrop/internal/trip"
	"faredrop/pkg/logger"
	"faredrop/pkg/metrics"
)

func main() {
	log := logger.NewLogger()
	log.Info("Starting faredrop worker")

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ensure parser priority ordering is stable.
	registry.Default().Sort()

	log.Info("Connecting to storage",
		"postgres", cfg.PostgresHost, "clickhouse", cfg.ClickHouseHost)
	db, err := storage.Open(ctx, cfg.StorageConfig())
	if err != nil {
		log.Fatal("Failed to open storage", "error", err)
	}
	if err := db.CreateSchemas(ctx); err != nil {
		log.Fatal("Failed to create schemas", "error", err)
	}

	var review *storage.ReviewDB
	if cfg.SampleEveryN > 0 {
		review, err = storage.OpenReview(cfg.ReviewDBPath)
		if err != nil {
			log.Fatal("Failed to open review db", "path", cfg.ReviewDBPath, "error", err)
		}
		log.Info("Sampling to review db", "path", cfg.ReviewDBPath, "every_n", cfg.SampleEveryN)
	}

	m := metrics.NewMetrics("faredrop")

	nc, err := nats.Connect(cfg.NATSURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		log.Fatal("Failed to connect to NATS", "url", cfg.NATSURL, "error", err)
	}
	log.Info("Connected to NATS", "url", cfg.NATSURL)

	w := &worker{
		log:           log,
		db:            db,
		review:        review,
		metrics:       m,
		nc:            nc,
		resultSubject: cfg.ResultSubject,
		sampleEveryN:  int64(cfg.SampleEveryN),
	}

	sub, err := nc.Subscribe(cfg.CaptureSubject, w.handle)
	if err != nil {
		log.Fatal("Failed to subscribe", "subject", cfg.CaptureSubject, "error", err)
	}
	log.Info("Subscribed", "subject", cfg.CaptureSubject)

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         cfg.MetricsAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting metrics server", "addr", cfg.MetricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Metrics server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := sub.Drain(); err != nil {
		log.Error("Subscription drain error", "error", err)
	}
	nc.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics server shutdown error", "error", err)
	}

	cancel()

	if err := db.Close(); err != nil {
		log.Error("Storage close error", "error", err)
	}
	if review != nil {
		if err := review.Close(); err != nil {
			log.Error("Review db close error", "error", err)
		}
	}

	log.Info("faredrop worker stopped")
	_ = log.Sync()
}

type worker struct {
	log           logger.Logger
	db            *storage.DB
	review        *storage.ReviewDB
	metrics       *metrics.Metrics
	nc            *nats.Conn
	resultSubject string
	sampleEveryN  int64
	seen          atomic.Int64
}

func (w *worker) handle(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	doc, capturedAt := decodeCapture(msg.Data)
	if doc == nil {
		w.log.Warn("Dropping capture with no document body", "subject", msg.Subject)
		return
	}

	start := time.Now()
	record, err := extractor.Extract(doc)
	elapsed := time.Since(start)
	if err != nil {
		w.log.Error("Extraction failed", "kind", doc.Kind, "error", err)
		return
	}

	w.metrics.DocumentsProcessed.WithLabelValues(string(doc.Kind), string(record.Confidence)).Inc()
	w.metrics.ExtractionTime.Observe(elapsed.Seconds())

	w.log.Info("Extracted trip",
		"trip_id", record.TripID,
		"locator", record.MaskedLocator(),
		"airline", record.Airline,
		"route", record.OriginIATA+"-"+record.DestinationIATA,
		"confidence", record.Confidence,
		"duration_ms", elapsed.Milliseconds())

	if record.TripID != "" {
		if err := w.db.PG.UpsertTrip(ctx, record); err != nil {
			w.metrics.StorageErrors.WithLabelValues("postgres").Inc()
			w.log.Error("Trip upsert failed", "trip_id", record.TripID, "error", err)
		}
	}

	event := storage.ExtractionEvent{
		Timestamp:     start.UTC(),
		TripID:        record.TripID,
		DocKind:       string(doc.Kind),
		Airline:       record.Airline,
		Origin:        record.OriginIATA,
		Destination:   record.DestinationIATA,
		Confidence:    string(record.Confidence),
		Record:        record,
		MissingFields: missingFields(record),
		BodyBytes:     uint32(len(doc.Body)),
		DurationMS:    float32(elapsed.Seconds() * 1000),
	}
	if err := w.db.CH.InsertEvent(ctx, event); err != nil {
		w.metrics.StorageErrors.WithLabelValues("clickhouse").Inc()
		w.log.Error("Event insert failed", "trip_id", record.TripID, "error", err)
	}

	w.maybeSample(doc, record, capturedAt)

	if w.resultSubject != "" {
		out, err := json.Marshal(record)
		if err == nil {
			if err := w.nc.Publish(w.resultSubject, out); err != nil {
				w.log.Error("Result publish failed", "subject", w.resultSubject, "error", err)
			} else {
				w.metrics.ResultsPublished.Inc()
			}
		}
	}
}

// maybeSample writes every Nth document to the review database so parser
// regressions can be replayed against real captures.
func (w *worker) maybeSample(doc *trip.Document, record *trip.Record, capturedAt string) {
	if w.review == nil {
		return
	}
	n := w.seen.Add(1)
	if n%w.sampleEveryN != 0 {
		return
	}
	if capturedAt == "" {
		capturedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := w.review.InsertSample(storage.SampleInsertParams{
		CapturedAt:    capturedAt,
		TripID:        record.TripID,
		DocKind:       string(doc.Kind),
		Airline:       record.Airline,
		Origin:        record.OriginIATA,
		Destination:   record.DestinationIATA,
		RawBody:       doc.Body,
		Record:        record,
		Confidence:    string(record.Confidence),
		MissingFields: missingFields(record),
	})
	if err != nil {
		w.metrics.StorageErrors.WithLabelValues("sqlite").Inc()
		w.log.Error("Sample insert failed", "error", err)
	}
}

func decodeCapture(b []byte) (*trip.Document, string) {
	var env trip.Envelope
	if err := json.Unmarshal(b, &env); err == nil && env.Document != nil {
		if doc := env.ToDocument(); doc != nil && strings.TrimSpace(doc.Body) != "" {
			return doc, env.CapturedAt
		}
	}

	var doc trip.Document
	if err := json.Unmarshal(b, &doc); err == nil && strings.TrimSpace(doc.Body) != "" {
		return &doc, ""
	}

	return nil, ""
}

// missingFields lists the core fields the extractor could not recover,
// in the order the review tooling expects.
func missingFields(r *trip.Record) []string {
	var missing []string
	if r.RecordLocator == "" {
		missing = append(missing, "record_locator")
	}
	if r.LastName == "" {
		missing = append(missing, "passenger")
	}
	if !r.HasRoute() {
		missing = append(missing, "route")
	}
	if r.DepartureDate == "" {
		missing = append(missing, "departure_date")
	}
	if len(r.Segments) == 0 {
		missing = append(missing, "segments")
	}
	return missing
}
