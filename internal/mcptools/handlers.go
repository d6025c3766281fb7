package mcptools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/dusk-indust/transcreate/internal/archive"
	"github.com/dusk-indust/transcreate/internal/graph"
	"github.com/dusk-indust/transcreate/internal/orchestrator"
	"github.com/dusk-indust/transcreate/internal/plan"
	"github.com/dusk-indust/transcreate/internal/scene"
)

// TranscreateService holds the graph store and engine used by MCP tool handlers.
type TranscreateService struct {
	store   graph.Store
	engine  *orchestrator.Engine
	archive *archive.Store
	logger  *zap.Logger
}

// NewTranscreateService creates a TranscreateService. archive may be nil.
func NewTranscreateService(store graph.Store, engine *orchestrator.Engine, a *archive.Store, logger *zap.Logger) *TranscreateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscreateService{store: store, engine: engine, archive: a, logger: logger}
}

// FindCulturalNode looks up a node by label and reports its owner culture.
func (s *TranscreateService) FindCulturalNode(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input FindCulturalNodeInput,
) (*mcp.CallToolResult, FindCulturalNodeOutput, error) {
	if input.Label == "" {
		return nil, FindCulturalNodeOutput{}, fmt.Errorf("label is required")
	}
	node, ok := graph.Lookup(s.store, input.Label)
	if !ok {
		return nil, FindCulturalNodeOutput{}, nil
	}
	return nil, FindCulturalNodeOutput{Found: true, Node: &node}, nil
}

// GetCandidates lists the nodes of a type owned by a culture.
func (s *TranscreateService) GetCandidates(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetCandidatesInput,
) (*mcp.CallToolResult, GetCandidatesOutput, error) {
	if input.Type == "" || input.Culture == "" {
		return nil, GetCandidatesOutput{}, fmt.Errorf("type and culture are required")
	}
	nodes := s.store.NodesByTypeAndCulture(input.Type, input.Culture)
	return nil, GetCandidatesOutput{Candidates: nodes, Total: len(nodes)}, nil
}

// AnalyzeScene runs cultural reasoning over a scene graph.
func (s *TranscreateService) AnalyzeScene(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeSceneInput,
) (*mcp.CallToolResult, AnalyzeSceneOutput, error) {
	if input.TargetCulture == "" {
		return nil, AnalyzeSceneOutput{}, fmt.Errorf("target_culture is required")
	}

	// Re-decode through the scene package so label/class_name folding
	// happens in one place.
	raw, err := json.Marshal(input.SceneGraph)
	if err != nil {
		return nil, AnalyzeSceneOutput{}, fmt.Errorf("encode scene_graph: %w", err)
	}
	sg, err := scene.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, AnalyzeSceneOutput{}, fmt.Errorf("scene_graph: %w", err)
	}

	p, err := s.engine.Analyze(ctx, orchestrator.Input{
		Scene:         sg,
		TargetCulture: input.TargetCulture,
		AvoidList:     input.AvoidList,
	})
	if err != nil {
		return nil, AnalyzeSceneOutput{}, fmt.Errorf("analyze: %w", err)
	}

	out := AnalyzeSceneOutput{Plan: *p}
	if s.archive != nil {
		run, err := s.archive.Save(ctx, "mcp", p)
		if err != nil {
			s.logger.Error("archive plan", zap.Error(err))
		} else {
			out.RunID = run.ID
		}
	}
	return nil, out, nil
}

// ValidatePlan checks a plan document and lists every violation.
func (s *TranscreateService) ValidatePlan(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ValidatePlanInput,
) (*mcp.CallToolResult, ValidatePlanOutput, error) {
	var (
		kind plan.Kind
		err  error
	)
	if input.Kind != "" {
		kind, err = plan.ParseKind(input.Kind)
	} else {
		kind, err = plan.DetectKind(input.Plan)
	}
	if err != nil {
		return nil, ValidatePlanOutput{}, err
	}

	out := ValidatePlanOutput{Kind: string(kind), Violations: []plan.FieldError{}}
	_, err = plan.Validate(kind, input.Plan)
	var se *plan.SchemaError
	switch {
	case errors.As(err, &se):
		out.Violations = se.Violations
	case err != nil:
		return nil, ValidatePlanOutput{}, err
	default:
		out.Valid = true
	}
	return nil, out, nil
}

// GetPlanSchema returns the JSON Schema of a plan kind.
func (s *TranscreateService) GetPlanSchema(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetPlanSchemaInput,
) (*mcp.CallToolResult, GetPlanSchemaOutput, error) {
	kind, err := plan.ParseKind(input.Kind)
	if err != nil {
		return nil, GetPlanSchemaOutput{}, err
	}
	schema, err := plan.Schema(kind)
	if err != nil {
		return nil, GetPlanSchemaOutput{}, err
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, GetPlanSchemaOutput{}, fmt.Errorf("encode schema: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, GetPlanSchemaOutput{}, fmt.Errorf("decode schema: %w", err)
	}
	return nil, GetPlanSchemaOutput{Kind: string(kind), Schema: m}, nil
}
