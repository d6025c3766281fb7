package mcptools

import (
	"github.com/dusk-indust/transcreate/internal/graph"
	"github.com/dusk-indust/transcreate/internal/plan"
)

// --- MCP Tool Types ---
// Structured outputs are always objects, so list results are wrapped.

// FindCulturalNodeInput is the input for the find_cultural_node MCP tool.
type FindCulturalNodeInput struct {
	Label string `json:"label" jsonschema:"object label to look up, matched case-insensitively"`
}

// FindCulturalNodeOutput is the result of the find_cultural_node MCP tool.
type FindCulturalNodeOutput struct {
	Found bool                `json:"found"`
	Node  *graph.CulturalNode `json:"node,omitempty"`
}

// GetCandidatesInput is the input for the get_candidates MCP tool.
type GetCandidatesInput struct {
	Type    string `json:"type" jsonschema:"node type such as FOOD or CLOTHING, matched exactly"`
	Culture string `json:"culture" jsonschema:"country label, matched case-insensitively"`
}

// GetCandidatesOutput is the result of the get_candidates MCP tool.
type GetCandidatesOutput struct {
	Candidates []graph.CulturalNode `json:"candidates"`
	Total      int                  `json:"total"`
}

// AnalyzeSceneInput is the input for the analyze_scene MCP tool.
type AnalyzeSceneInput struct {
	SceneGraph    map[string]any `json:"scene_graph" jsonschema:"perception output with an objects list and optional scene.description"`
	TargetCulture string         `json:"target_culture" jsonschema:"destination culture, e.g. Japan"`
	AvoidList     []string       `json:"avoid_list,omitempty" jsonschema:"items the adaptation must avoid"`
}

// AnalyzeSceneOutput is the result of the analyze_scene MCP tool.
type AnalyzeSceneOutput struct {
	Plan  plan.TranscreationPlan `json:"plan"`
	RunID string                 `json:"runId,omitempty"`
}

// ValidatePlanInput is the input for the validate_plan MCP tool.
type ValidatePlanInput struct {
	Kind string         `json:"kind,omitempty" jsonschema:"transcreation or edit; detected from the document when empty"`
	Plan map[string]any `json:"plan" jsonschema:"plan document to validate"`
}

// ValidatePlanOutput is the result of the validate_plan MCP tool.
type ValidatePlanOutput struct {
	Valid      bool              `json:"valid"`
	Kind       string            `json:"kind"`
	Violations []plan.FieldError `json:"violations"`
}

// GetPlanSchemaInput is the input for the get_plan_schema MCP tool.
type GetPlanSchemaInput struct {
	Kind string `json:"kind" jsonschema:"transcreation or edit"`
}

// GetPlanSchemaOutput is the result of the get_plan_schema MCP tool.
type GetPlanSchemaOutput struct {
	Kind   string         `json:"kind"`
	Schema map[string]any `json:"schema"`
}
