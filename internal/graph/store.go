package graph

import (
	"errors"
	"fmt"
	"io"
)

// Store is the read-only query surface of a cultural knowledge graph.
// Implementations: Index (in-memory, default), KuzuStore (cgo builds).
// Queries are total: a miss yields an empty result, never an error.
type Store interface {
	io.Closer

	// FindNodeByLabel returns the first node in load order whose label
	// matches label case-insensitively.
	FindNodeByLabel(label string) (CulturalNode, bool)

	// OwnerCulture returns the country label that owns nodeID.
	OwnerCulture(nodeID string) (string, bool)

	// NodesByTypeAndCulture returns the nodes of nodeType owned by culture.
	// Culture matching is case-insensitive, type matching is exact.
	NodesByTypeAndCulture(nodeType, culture string) []CulturalNode

	// Stats reports the size of the loaded graph.
	Stats() Stats
}

var (
	// ErrNotFound is returned when a graph file does not exist.
	ErrNotFound = errors.New("graph: file not found")

	// ErrMalformedGraph is returned when a graph file is not a valid graph document.
	ErrMalformedGraph = errors.New("graph: malformed graph")

	// ErrKuzuUnavailable is returned by the KuzuDB constructors in binaries
	// built without CGO.
	ErrKuzuUnavailable = errors.New("graph: kuzu backend requires a cgo build")
)

// LoadError reports a failure to construct a store from a file. It matches
// ErrNotFound or ErrMalformedGraph through errors.Is.
type LoadError struct {
	Path  string
	Kind  error // ErrNotFound or ErrMalformedGraph
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Cause)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Path)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *LoadError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Lookup finds the node labeled label and annotates it with its owner
// culture, if any.
func Lookup(s Store, label string) (CulturalNode, bool) {
	n, ok := s.FindNodeByLabel(label)
	if !ok {
		return CulturalNode{}, false
	}
	if c, ok := s.OwnerCulture(n.ID); ok {
		n.Culture = c
	}
	return n, true
}
