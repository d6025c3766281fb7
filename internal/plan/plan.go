// Package plan defines the two hand-off documents of the pipeline, the
// Transcreation Plan produced by cultural reasoning and the Edit Plan consumed
// by realization, together with their validators and JSON persistence.
package plan

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names a plan shape.
type Kind string

const (
	KindTranscreation Kind = "transcreation"
	KindEdit          Kind = "edit"
)

// ErrUnknownKind is returned for unrecognized plan kinds.
var ErrUnknownKind = errors.New("plan: unknown plan kind")

// Kinds lists every supported plan kind.
func Kinds() []Kind {
	return []Kind{KindTranscreation, KindEdit}
}

// ParseKind maps user input ("edit", "edit_plan", "Transcreation", ...) to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "transcreation", "transcreation_plan":
		return KindTranscreation, nil
	case "edit", "edit_plan":
		return KindEdit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Transformation replaces one scene object with a target-culture counterpart.
type Transformation struct {
	OriginalObject string  `json:"original_object" jsonschema:"label of the object in the source image"`
	OriginalType   string  `json:"original_type" jsonschema:"knowledge-graph type of the object, or object when unknown"`
	TargetObject   string  `json:"target_object" jsonschema:"replacement chosen for the target culture"`
	Rationale      string  `json:"rationale"`
	Confidence     float64 `json:"confidence" jsonschema:"decision confidence between 0 and 1"`
}

// Preservation keeps a scene object unchanged.
type Preservation struct {
	OriginalObject string `json:"original_object"`
	Rationale      string `json:"rationale"`
}

// TranscreationPlan is the output of cultural reasoning. Slices are never nil
// in plans produced or validated by this module.
type TranscreationPlan struct {
	TargetCulture      string           `json:"target_culture"`
	Transformations    []Transformation `json:"transformations"`
	Preservations      []Preservation   `json:"preservations"`
	AvoidanceAdherence []string         `json:"avoidance_adherence" jsonschema:"notes on what was avoided"`
}

// NewTranscreationPlan returns an empty plan for culture with non-nil slices.
func NewTranscreationPlan(culture string) *TranscreationPlan {
	return &TranscreationPlan{
		TargetCulture:      culture,
		Transformations:    []Transformation{},
		Preservations:      []Preservation{},
		AvoidanceAdherence: []string{},
	}
}

// ReplaceAction substitutes the object with ObjectID in the original scene.
type ReplaceAction struct {
	ObjectID    int            `json:"object_id" jsonschema:"ID of the object in the original scene graph"`
	Original    string         `json:"original"`
	New         string         `json:"new"`
	Constraints map[string]any `json:"constraints,omitempty" jsonschema:"optional constraints such as size or orientation"`
}

// EditTextAction rewrites the text inside a bounding box.
type EditTextAction struct {
	BBox       [4]int `json:"bbox" jsonschema:"bounding box [x_min, y_min, x_max, y_max]"`
	Original   string `json:"original"`
	Translated string `json:"translated"`
}

// AdjustStyleAction carries global style harmonization signals.
type AdjustStyleAction struct {
	Palette *string  `json:"palette,omitempty" jsonschema:"color palette to apply"`
	Motifs  []string `json:"motifs" jsonschema:"cultural motifs to add"`
	Texture *string  `json:"texture,omitempty" jsonschema:"texture style to apply"`
}

// EditPlan is the realization stage's control input.
type EditPlan struct {
	Preserve    []string           `json:"preserve" jsonschema:"aspects to preserve such as layout, pose or lighting"`
	Replace     []ReplaceAction    `json:"replace"`
	EditText    []EditTextAction   `json:"edit_text"`
	AdjustStyle *AdjustStyleAction `json:"adjust_style,omitempty"`
}
