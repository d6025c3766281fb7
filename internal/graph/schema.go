package graph

// --- Enums ---

// TypeCountry marks nodes that own cultural attributes. An edge whose source
// is a COUNTRY node assigns its target to that country's culture.
const TypeCountry = "COUNTRY"

// TypeUnknown is the index key used for attribute nodes declared without a type.
const TypeUnknown = "UNKNOWN"

// --- Models ---

// Node is a knowledge graph vertex as it appears in the graph file.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// Edge is a directed relationship between two node ids.
type Edge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation,omitempty"`
}

// Document is a decoded graph file. Edges holds whichever of the "edges" or
// "links" collections the file declared.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// CulturalNode is the typed projection of a Node handed to callers,
// optionally annotated with the culture it was resolved under.
type CulturalNode struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Type    string `json:"type"`
	Culture string `json:"culture,omitempty"`
}

// Stats summarizes a loaded knowledge graph.
type Stats struct {
	NodeCount    int `json:"nodeCount"`
	EdgeCount    int `json:"edgeCount"`
	CultureCount int `json:"cultureCount"`
	OwnedCount   int `json:"ownedCount"` // node ids with a recorded owner culture
}

// typeKey returns the index key for a node type.
func typeKey(t string) string {
	if t == "" {
		return TypeUnknown
	}
	return t
}

// toCultural projects a Node into the caller-facing DTO.
func toCultural(n Node, culture string) CulturalNode {
	return CulturalNode{
		ID:      n.ID,
		Label:   n.Label,
		Type:    n.Type,
		Culture: culture,
	}
}
