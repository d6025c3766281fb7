package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// rawDocument mirrors the on-disk layout. Edges may be declared under either
// "edges" or "links"; "edges" wins when both keys are present.
type rawDocument struct {
	Nodes []Node          `json:"nodes"`
	Edges json.RawMessage `json:"edges"`
	Links json.RawMessage `json:"links"`
}

// DecodeDocument parses a graph document from r. A missing "nodes" key yields
// an empty graph; anything that is not a JSON object with well-formed node and
// edge collections is reported as ErrMalformedGraph.
func DecodeDocument(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("graph: read document: %w", err)
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, errors.Join(ErrMalformedGraph, err)
	}

	for i, n := range raw.Nodes {
		if n.ID == "" {
			return Document{}, fmt.Errorf("%w: node %d has no id", ErrMalformedGraph, i)
		}
	}

	edgeData := raw.Edges
	key := "edges"
	if edgeData == nil {
		edgeData = raw.Links
		key = "links"
	}

	var edges []Edge
	if len(edgeData) > 0 {
		if err := json.Unmarshal(edgeData, &edges); err != nil {
			return Document{}, errors.Join(fmt.Errorf("%w: %s", ErrMalformedGraph, key), err)
		}
	}

	return Document{Nodes: raw.Nodes, Edges: edges}, nil
}

// ReadDocument opens and decodes the graph file at path.
func ReadDocument(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, &LoadError{Path: path, Kind: ErrNotFound}
		}
		return Document{}, fmt.Errorf("graph: open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := DecodeDocument(f)
	if err != nil {
		return Document{}, &LoadError{Path: path, Kind: ErrMalformedGraph, Cause: err}
	}
	return doc, nil
}

// Load reads the graph file at path and builds its in-memory Index.
// Construction is all-or-nothing: no partial index is ever returned.
func Load(path string) (*Index, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return NewIndex(doc), nil
}
