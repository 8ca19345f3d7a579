// Package htmldoc provides the plain-text projection of captured documents
// and a capability interface over the optional structured HTML parser.
//
// Extractors are written against Finder only. The tree-backed finder is
// preferred; when it cannot be initialised the regex-only finder takes over
// for the remainder of the process lifetime, so both code paths must stay
// behaviourally consistent for the same input.
package htmldoc

import (
	"sync"
)

// Finder is the structured-document capability: query a document by
// selector and enumerate script resources. Implementations must be
// stateless and safe for concurrent use.
type Finder interface {
	// Name identifies the implementation ("tree" or "regex").
	Name() string

	// ScriptSources returns the src attribute of every <script> element,
	// in document order.
	ScriptSources(body string) []string

	// SelectText returns the normalized text content of elements matching
	// a class selector like ".route-display", in document order. The
	// regex-only finder supports class selectors only; callers must not
	// rely on richer selector syntax.
	SelectText(body, selector string) []string
}

var (
	activeOnce sync.Once
	active     Finder
)

// Active returns the process-wide finder, selected once on first use and
// never torn down. The tree finder is probed against a trivial document;
// if the probe fails the regex finder is used instead.
func Active() Finder {
	activeOnce.Do(func() {
		tf := &treeFinder{}
		if tf.probe() {
			active = tf
		} else {
			active = &regexFinder{}
		}
	})
	return active
}

// Fallback returns the regex-only finder. Exposed so the degraded mode can
// be exercised directly in tests.
func Fallback() Finder {
	return &regexFinder{}
}
