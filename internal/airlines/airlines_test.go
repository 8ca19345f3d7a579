package airlines

import (
	"testing"
)

func TestLookup(t *testing.T) {
	cfg, ok := Lookup("DL")
	if !ok {
		t.Fatal("expected DL to be known")
	}
	if cfg.TicketPrefix != "006" {
		t.Errorf("TicketPrefix = %q, want %q", cfg.TicketPrefix, "006")
	}

	if _, ok := Lookup("dl"); !ok {
		t.Error("lookup should be case-insensitive")
	}
	if _, ok := Lookup("ZZ"); ok {
		t.Error("unknown carrier should not resolve")
	}
	if _, ok := Lookup(""); ok {
		t.Error("empty carrier should not resolve")
	}
}

func TestByBeaconHost(t *testing.T) {
	cfg, ok := ByBeaconHost("smetrics.delta.com")
	if !ok || cfg.Code != "DL" {
		t.Fatalf("ByBeaconHost = %v, %v", cfg.Code, ok)
	}

	if _, ok := ByBeaconHost("www.example.com"); ok {
		t.Error("unrelated host should not resolve")
	}
}

func TestLegCompiler(t *testing.T) {
	comp := LegCompiler("DL")
	if comp == nil {
		t.Fatal("expected compiler for DL")
	}

	matches := comp.FindAllMatches("DL342 LGA-TQO", "leg")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m["carrier"] != "DL" || m["num"] != "342" || m["dep"] != "LGA" || m["arr"] != "TQO" {
		t.Errorf("captures = %v", m)
	}

	// The DL compiler must not match another carrier's legs.
	if got := comp.FindAllMatches("AA1234 JFK-LAX", "leg"); len(got) != 0 {
		t.Errorf("DL compiler matched AA leg: %v", got)
	}

	if LegCompiler("ZZ") != nil {
		t.Error("unknown carrier should have no compiler")
	}
}
