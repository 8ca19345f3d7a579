// Command-line entry point for the fare-tracking extractor.
//
// Note about input formats
// ------------------------
// The extractor consumes a "trip.Document" with at least:
//   - kind (html or text)
//   - body (captured markup or pasted confirmation text)
//
// In the real world, you may have either of these inputs:
//  1. Capture feed envelope: {"document":{...}, "captured_at":"...", ...}
//  2. Flat document:         {"kind":"html","body":"...", ...}
//
// This CLI autodetects both. Use -all to keep documents even when nothing
// was recovered from them.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"faredrop/internal/extractor"
	_ "faredrop/internal/parsers" // register all parsers via init()
	"faredrop/internal/registry"
	"faredrop/internal/trip"
)

type ExtractOut struct {
	Document *trip.Document `json:"document"`
	Record   *trip.Record   `json:"record,omitempty"`
}

type Stats struct {
	Lines          int
	ParsedEnvelope int
	ParsedFlat     int
	SkippedNoBody  int
	Failed         int
	Emitted        int
	Recovered      int
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "faredrop-extract - commands:")
	fmt.Fprintln(w, "  extract  - parse JSONL file and output JSON")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  faredrop-extract extract -input captures.jsonl [-output out.json] [-pretty] [-all] [-stats]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - Input must be JSONL (one JSON object per line).")
	fmt.Fprintln(w, "  - Capture feed envelopes and flat documents are both accepted.")
	fmt.Fprintln(w, "")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "extract":
		runExtract(os.Args[2:])
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func runExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	inPath := fs.String("input", "", "Input JSONL file (default: stdin)")
	outPath := fs.String("output", "", "Output JSON file (default: stdout)")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	includeAll := fs.Bool("all", false, "Include documents even when nothing was recovered")
	showStats := fs.Bool("stats", false, "Print basic counters to stderr")
	_ = fs.Parse(args)

	// Ensure parser priority ordering is stable.
	registry.Default().Sort()

	var r io.Reader = os.Stdin
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open input: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	scanner := bufio.NewScanner(r)
	// Captured pages can be large; bump buffer (20MB).
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 20*1024*1024)

	out := make([]ExtractOut, 0, 1024)
	st := &Stats{}

	for scanner.Scan() {
		st.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		doc, kind := decodeToDocument([]byte(line))
		if doc == nil {
			st.SkippedNoBody++
			continue
		}
		switch kind {
		case "envelope":
			st.ParsedEnvelope++
		case "flat":
			st.ParsedFlat++
		}

		record, err := extractor.Extract(doc)
		if err != nil {
			st.Failed++
			fmt.Fprintf(os.Stderr, "Extract error (line %d): %v\n", st.Lines, err)
			continue
		}

		recovered := record.Confidence != trip.ConfidenceUnknown
		if recovered {
			st.Recovered++
		}
		if !recovered && !*includeAll {
			continue
		}
		out = append(out, ExtractOut{Document: doc, Record: record})
		st.Emitted++
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Input read error: %v\n", err)
		os.Exit(1)
	}

	var wout io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		wout = f
	}

	enc, err := marshalJSON(out, *pretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "JSON encode error: %v\n", err)
		os.Exit(1)
	}
	_, _ = wout.Write(enc)
	if wout == os.Stdout {
		_, _ = wout.Write([]byte("\n"))
	}

	if *showStats {
		fmt.Fprintf(os.Stderr,
			"stats: lines=%d parsed(envelope=%d flat=%d) skipped(no_body)=%d failed=%d emitted=%d recovered=%d\n",
			st.Lines, st.ParsedEnvelope, st.ParsedFlat, st.SkippedNoBody, st.Failed, st.Emitted, st.Recovered,
		)
	}
}

func decodeToDocument(b []byte) (*trip.Document, string) {
	// 1) Capture feed envelope
	var env trip.Envelope
	if err := json.Unmarshal(b, &env); err == nil && env.Document != nil {
		if doc := env.ToDocument(); doc != nil && strings.TrimSpace(doc.Body) != "" {
			return doc, "envelope"
		}
	}

	// 2) Flat document (only accept if it actually carries a body)
	var doc trip.Document
	if err := json.Unmarshal(b, &doc); err == nil {
		if strings.TrimSpace(doc.Body) != "" {
			if doc.Kind == "" {
				doc.Kind = sniffKind(doc.Body)
			}
			return &doc, "flat"
		}
	}

	return nil, ""
}

// sniffKind guesses the document kind when the capture agent did not set
// one. Anything that looks like markup is treated as HTML.
func sniffKind(body string) trip.Kind {
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<body") || strings.Contains(lower, "<div") {
		return trip.KindHTML
	}
	return trip.KindText
}

func marshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
