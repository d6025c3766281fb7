package graph

import "strings"

// Compile-time assertion: *Index satisfies Store.
var _ Store = (*Index)(nil)

// Index is the in-memory Store. It is built once from a Document and never
// mutated afterwards, so any number of goroutines may query it concurrently.
type Index struct {
	nodes   []Node         // deduplicated, in first-declaration order
	byID    map[string]int // node id -> position in nodes
	byLabel map[string]int // lowercase label -> first position in nodes

	// ownerByNodeID maps an attribute node id to its country label.
	// A target owned by several countries keeps the last one declared.
	ownerByNodeID map[string]string

	// byCultureAndType maps country label -> type key -> node positions,
	// one entry per country-rooted edge, in edge order.
	byCultureAndType map[string]map[string][]int

	// cultureByLower maps a lowercased culture label to the first index key
	// that lowercases to it, matching a scan of keys in insertion order.
	cultureByLower map[string]string

	edgeCount int
}

// NewIndex builds the node, ownership and culture/type indexes in a single
// pass over the document's edges.
func NewIndex(doc Document) *Index {
	idx := &Index{
		byID:             make(map[string]int, len(doc.Nodes)),
		byLabel:          make(map[string]int, len(doc.Nodes)),
		ownerByNodeID:    make(map[string]string),
		byCultureAndType: make(map[string]map[string][]int),
		cultureByLower:   make(map[string]string),
		edgeCount:        len(doc.Edges),
	}

	idx.nodes = dedupeNodes(doc.Nodes)
	for i, n := range idx.nodes {
		idx.byID[n.ID] = i
		lower := strings.ToLower(n.Label)
		if _, seen := idx.byLabel[lower]; !seen {
			idx.byLabel[lower] = i
		}
	}

	countries := countryLabels(idx.nodes)

	for _, e := range doc.Edges {
		country, ok := countries[e.Source]
		if !ok {
			continue
		}
		idx.ownerByNodeID[e.Target] = country

		pos, ok := idx.byID[e.Target]
		if !ok {
			continue
		}
		types, ok := idx.byCultureAndType[country]
		if !ok {
			types = make(map[string][]int)
			idx.byCultureAndType[country] = types
			lower := strings.ToLower(country)
			if _, seen := idx.cultureByLower[lower]; !seen {
				idx.cultureByLower[lower] = country
			}
		}
		key := typeKey(idx.nodes[pos].Type)
		types[key] = append(types[key], pos)
	}

	return idx
}

// FindNodeByLabel returns the first node in load order whose label equals
// label ignoring case.
func (x *Index) FindNodeByLabel(label string) (CulturalNode, bool) {
	pos, ok := x.byLabel[strings.ToLower(label)]
	if !ok {
		return CulturalNode{}, false
	}
	return toCultural(x.nodes[pos], ""), true
}

// OwnerCulture returns the country label recorded for nodeID.
func (x *Index) OwnerCulture(nodeID string) (string, bool) {
	c, ok := x.ownerByNodeID[nodeID]
	return c, ok
}

// NodesByTypeAndCulture returns a fresh slice of the nodes of nodeType owned
// by culture. It returns an empty, non-nil slice when nothing matches.
func (x *Index) NodesByTypeAndCulture(nodeType, culture string) []CulturalNode {
	key, ok := x.cultureByLower[strings.ToLower(culture)]
	if !ok {
		return []CulturalNode{}
	}
	positions := x.byCultureAndType[key][nodeType]
	out := make([]CulturalNode, 0, len(positions))
	for _, pos := range positions {
		out = append(out, toCultural(x.nodes[pos], key))
	}
	return out
}

// Stats returns counts of the loaded graph.
func (x *Index) Stats() Stats {
	return Stats{
		NodeCount:    len(x.nodes),
		EdgeCount:    x.edgeCount,
		CultureCount: len(x.byCultureAndType),
		OwnedCount:   len(x.ownerByNodeID),
	}
}

// Close is a no-op for the in-memory index.
func (x *Index) Close() error {
	return nil
}

// dedupeNodes collapses repeated ids: the last declaration's fields win while
// the node keeps the position of its first declaration.
func dedupeNodes(in []Node) []Node {
	pos := make(map[string]int, len(in))
	out := make([]Node, 0, len(in))
	for _, n := range in {
		if i, ok := pos[n.ID]; ok {
			out[i] = n
			continue
		}
		pos[n.ID] = len(out)
		out = append(out, n)
	}
	return out
}

// countryLabels maps the id of every COUNTRY node to its label.
func countryLabels(nodes []Node) map[string]string {
	out := make(map[string]string)
	for _, n := range nodes {
		if n.Type == TypeCountry {
			out[n.ID] = n.Label
		}
	}
	return out
}
