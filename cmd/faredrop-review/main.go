// faredrop-review serves the local review workbench over a sample
// database written by faredrop-worker.
//
// Usage:
//
//	faredrop-review [-db review.db] [-port 8090] [-kind html|text]
package main

import (
	"flag"
	"fmt"
	"os"

	"faredrop/internal/review"
	"faredrop/internal/storage"
)

func main() {
	dbPath := flag.String("db", "review.db", "Review database file")
	port := flag.Int("port", 8090, "HTTP port for the review UI")
	kind := flag.String("kind", "", "Filter to a document kind (html or text)")
	flag.Parse()

	db, err := storage.OpenReview(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening review database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	server := review.NewServer(db, *port, *kind)
	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
