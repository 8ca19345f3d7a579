package htmldoc

import (
	"reflect"
	"strings"
	"testing"
)

const sampleDoc = `<html><head>
<style>.x { color: red }</style>
<script src="https://smetrics.delta.com/b/ss/dlprod/1/H.27/s123?v20=LGA&v21=TQO"></script>
<script>var leaked = "SCRIPTPAYLOAD";</script>
</head><body>
<div class="route-display">LGA &rarr; TQO</div>
<p>Confirmation   code:
GO7RLB</p>
<table><tr><td>DL342</td><td>LGA-TQO</td></tr></table>
</body></html>`

func TestNormalize(t *testing.T) {
	got := Normalize(sampleDoc)

	if want := "Confirmation code: GO7RLB"; !contains(got, want) {
		t.Errorf("normalized text missing %q: %q", want, got)
	}
	if contains(got, "SCRIPTPAYLOAD") {
		t.Error("script payload leaked into text projection")
	}
	if contains(got, "color: red") {
		t.Error("style payload leaked into text projection")
	}
	if contains(got, "<") {
		t.Error("tags left in text projection")
	}
}

func TestNormalize_PlainText(t *testing.T) {
	got := Normalize("  hello\n\n  world\t! ")
	if got != "hello world !" {
		t.Errorf("Normalize = %q", got)
	}
	if Normalize("") != "" {
		t.Error("empty input should normalize to empty string")
	}
}

func TestLines(t *testing.T) {
	lines := Lines(sampleDoc)

	foundLeg := false
	for i, l := range lines {
		if l == "DL342" && i+1 < len(lines) && lines[i+1] == "LGA-TQO" {
			foundLeg = true
		}
	}
	if !foundLeg {
		t.Errorf("expected leg cells on separate lines, got %v", lines)
	}
}

func TestFinders_Consistent(t *testing.T) {
	finders := []Finder{&treeFinder{}, Fallback()}

	for _, f := range finders {
		srcs := f.ScriptSources(sampleDoc)
		if len(srcs) != 1 {
			t.Fatalf("%s: expected 1 script src, got %v", f.Name(), srcs)
		}
		if !contains(srcs[0], "smetrics.delta.com") {
			t.Errorf("%s: src = %q", f.Name(), srcs[0])
		}

		texts := f.SelectText(sampleDoc, ".route-display")
		if !reflect.DeepEqual(texts, []string{"LGA → TQO"}) {
			t.Errorf("%s: SelectText = %v", f.Name(), texts)
		}
	}
}

func TestActive(t *testing.T) {
	f := Active()
	if f == nil {
		t.Fatal("no active finder")
	}
	// Selection is one-time: repeated calls return the same instance.
	if Active() != f {
		t.Error("Active() changed between calls")
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}
