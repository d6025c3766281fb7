// Package export renders the knowledge graph and the run archive in formats
// meant for people and other tools: Mermaid diagrams and JSON documents.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/transcreate/internal/graph"
)

// MermaidOptions filters the diagram.
type MermaidOptions struct {
	// Culture limits the diagram to one country label (case-insensitive).
	Culture string
	// Type limits attribute nodes to one node type, e.g. FOOD.
	Type string
}

// GenerateMermaid produces a Mermaid graph LR diagram from a graph document.
// Each country becomes a subgraph holding the attributes it owns; ownership
// follows the same last-edge-wins rule as the index. Attributes no country
// owns are omitted.
func GenerateMermaid(doc graph.Document, opts MermaidOptions) string {
	byID := make(map[string]graph.Node, len(doc.Nodes))
	var countries []string // ids in first-declaration order
	for _, n := range doc.Nodes {
		if _, seen := byID[n.ID]; !seen && n.Type == graph.TypeCountry {
			countries = append(countries, n.ID)
		}
		byID[n.ID] = n
	}

	owner := make(map[string]string) // attribute id -> country id
	var order []string               // attribute ids in first-edge order
	for _, e := range doc.Edges {
		src, ok := byID[e.Source]
		if !ok || src.Type != graph.TypeCountry {
			continue
		}
		if _, ok := byID[e.Target]; !ok {
			continue
		}
		if _, seen := owner[e.Target]; !seen {
			order = append(order, e.Target)
		}
		owner[e.Target] = e.Source
	}

	members := make(map[string][]string)
	for _, id := range order {
		if opts.Type != "" && byID[id].Type != opts.Type {
			continue
		}
		members[owner[id]] = append(members[owner[id]], id)
	}

	// Mermaid node ids must be alphanumeric.
	nodeIDs := make(map[string]string)
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", len(nodeIDs))
		nodeIDs[key] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, cid := range countries {
		country := byID[cid]
		if opts.Culture != "" && !strings.EqualFold(country.Label, opts.Culture) {
			continue
		}
		attrs := members[cid]
		if len(attrs) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%s\"]\n", getID("country:"+cid), escapeLabel(country.Label)))
		for _, group := range groupByType(attrs, byID) {
			for _, id := range group {
				n := byID[id]
				sb.WriteString(fmt.Sprintf("    %s[\"%s<br/><i>%s</i>\"]\n", getID(id), escapeLabel(n.Label), escapeLabel(typeLabel(n.Type))))
			}
		}
		sb.WriteString("  end\n")
	}

	return sb.String()
}

// groupByType buckets ids by node type, types sorted, load order kept
// within each bucket.
func groupByType(ids []string, byID map[string]graph.Node) [][]string {
	buckets := make(map[string][]string)
	for _, id := range ids {
		t := typeLabel(byID[id].Type)
		buckets[t] = append(buckets[t], id)
	}
	types := make([]string, 0, len(buckets))
	for t := range buckets {
		types = append(types, t)
	}
	sort.Strings(types)

	out := make([][]string, 0, len(types))
	for _, t := range types {
		out = append(out, buckets[t])
	}
	return out
}

func typeLabel(t string) string {
	if t == "" {
		return graph.TypeUnknown
	}
	return t
}

// escapeLabel keeps quotes from terminating a Mermaid label.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
