// Package registry provides a document parser registry for dispatching
// captured trip documents to appropriate parsers.
package registry

import (
	"sort"
	"sync"

	"faredrop/internal/trip"
)

// Result is the common interface for all parse results.
type Result interface {
	Type() string   // e.g., "managetrip", "confirmation", "paste"
	TripID() string // The originating trip ID
}

// Parser is implemented by each document parser.
type Parser interface {
	// Name returns the parser's unique identifier.
	Name() string

	// Kinds returns which document kinds this parser handles.
	// Empty slice means "all kinds" (content-based parser).
	Kinds() []trip.Kind

	// QuickCheck performs a fast string check before expensive regex.
	// Returns true if the document MIGHT be parseable (false = definitely skip).
	// This should use strings.Contains/HasPrefix, NOT regex.
	QuickCheck(text string) bool

	// Priority determines order when multiple parsers match the same kind.
	// Lower number = checked first. Cheaper checks should have lower priority.
	Priority() int

	// Parse attempts to parse the document, returns nil if not applicable.
	Parse(doc *trip.Document) Result
}

// Registry holds all registered parsers organised for efficient dispatch.
type Registry struct {
	mu sync.RWMutex

	// byKind maps document kinds to parser slices, sorted by Priority (ascending)
	byKind map[trip.Kind][]Parser

	// global holds parsers that check all documents (content-based)
	global []Parser

	// catchAll holds parsers that run only when nothing else matched
	catchAll []Parser

	// sorted tracks whether parsers have been sorted
	sorted bool
}

// New creates a new Registry instance.
func New() *Registry {
	return &Registry{
		byKind: make(map[trip.Kind][]Parser),
	}
}

// Global default registry.
var defaultRegistry = New()

// Default returns the global registry instance.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a parser to the default registry.
// Called during init() in each parser package.
func Register(p Parser) {
	defaultRegistry.Register(p)
}

// RegisterCatchAll adds a catch-all parser that runs when nothing else matches.
func RegisterCatchAll(p Parser) {
	defaultRegistry.RegisterCatchAll(p)
}

// Register adds a parser to the registry.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := p.Kinds()
	if len(kinds) == 0 {
		// Content-based parser - checks all documents
		r.global = append(r.global, p)
	} else {
		for _, kind := range kinds {
			r.byKind[kind] = append(r.byKind[kind], p)
		}
	}
	r.sorted = false
}

// RegisterCatchAll adds a catch-all parser.
func (r *Registry) RegisterCatchAll(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catchAll = append(r.catchAll, p)
	r.sorted = false
}

// Sort sorts all parser slices by priority. Call before dispatching.
func (r *Registry) Sort() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sorted {
		return
	}

	for kind := range r.byKind {
		parsers := r.byKind[kind]
		sort.Slice(parsers, func(i, j int) bool {
			return parsers[i].Priority() < parsers[j].Priority()
		})
	}

	sort.Slice(r.global, func(i, j int) bool {
		return r.global[i].Priority() < r.global[j].Priority()
	})

	sort.Slice(r.catchAll, func(i, j int) bool {
		return r.catchAll[i].Priority() < r.catchAll[j].Priority()
	})

	r.sorted = true
}

// Dispatch routes a document to appropriate parsers and returns all results.
// Multiple parsers can match the same document (e.g., beacon + visible legs).
// Note: Sort() should be called before Dispatch() for optimal performance.
// If Sort() has not been called, parsers will be in registration order.
func (r *Registry) Dispatch(doc *trip.Document) []Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []Result

	// 1. Try kind-specific parsers first (most efficient path)
	if parsers, ok := r.byKind[doc.Kind]; ok {
		for _, p := range parsers {
			// Quick check before expensive parse
			if !p.QuickCheck(doc.Body) {
				continue
			}
			if result := p.Parse(doc); result != nil {
				results = append(results, result)
			}
		}
	}

	// 2. Try global (content-based) parsers
	for _, p := range r.global {
		if !p.QuickCheck(doc.Body) {
			continue
		}
		if result := p.Parse(doc); result != nil {
			results = append(results, result)
		}
	}

	// 3. If nothing matched, try catch-all parsers
	if len(results) == 0 && len(r.catchAll) > 0 {
		for _, p := range r.catchAll {
			if result := p.Parse(doc); result != nil {
				results = append(results, result)
			}
		}
	}

	return results
}

// DispatchFirst returns only the first successful parse result.
// Useful when you only need one result per document.
func (r *Registry) DispatchFirst(doc *trip.Document) Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Try kind-specific parsers
	if parsers, ok := r.byKind[doc.Kind]; ok {
		for _, p := range parsers {
			if !p.QuickCheck(doc.Body) {
				continue
			}
			if result := p.Parse(doc); result != nil {
				return result
			}
		}
	}

	// Try global parsers
	for _, p := range r.global {
		if !p.QuickCheck(doc.Body) {
			continue
		}
		if result := p.Parse(doc); result != nil {
			return result
		}
	}

	// Try catch-all
	for _, p := range r.catchAll {
		if result := p.Parse(doc); result != nil {
			return result
		}
	}

	return nil
}

// RegisteredKinds returns all document kinds that have parsers registered.
func (r *Registry) RegisteredKinds() []trip.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]trip.Kind, 0, len(r.byKind))
	for kind := range r.byKind {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// ParserCount returns the total number of unique registered parsers.
// Parsers registered for multiple kinds are only counted once.
func (r *Registry) ParserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)

	for _, p := range r.global {
		seen[p.Name()] = true
	}
	for _, parsers := range r.byKind {
		for _, p := range parsers {
			seen[p.Name()] = true
		}
	}
	for _, p := range r.catchAll {
		seen[p.Name()] = true
	}

	return len(seen)
}

// AllParsers returns all registered parsers (global, kind-specific, and
// catch-all). Useful for debugging and listing available parsers.
func (r *Registry) AllParsers() []Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var result []Parser

	for _, p := range r.global {
		if !seen[p.Name()] {
			seen[p.Name()] = true
			result = append(result, p)
		}
	}

	for _, parsers := range r.byKind {
		for _, p := range parsers {
			if !seen[p.Name()] {
				seen[p.Name()] = true
				result = append(result, p)
			}
		}
	}

	for _, p := range r.catchAll {
		if !seen[p.Name()] {
			seen[p.Name()] = true
			result = append(result, p)
		}
	}

	return result
}
