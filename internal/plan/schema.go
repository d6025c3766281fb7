package plan

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// TranscreationPlanSchema returns the JSON Schema of a Transcreation Plan.
func TranscreationPlanSchema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[TranscreationPlan](nil)
	if err != nil {
		return nil, fmt.Errorf("infer transcreation plan schema: %w", err)
	}
	s.Title = "TranscreationPlan"
	if t := items(s, "transformations"); t != nil {
		if c := t.Properties["confidence"]; c != nil {
			c.Minimum = ptr(0.0)
			c.Maximum = ptr(1.0)
		}
	}
	return s, nil
}

// EditPlanSchema returns the JSON Schema of an Edit Plan. Only fields the
// validator rejects when absent are listed as required.
func EditPlanSchema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[EditPlan](nil)
	if err != nil {
		return nil, fmt.Errorf("infer edit plan schema: %w", err)
	}
	s.Title = "EditPlan"
	s.Required = nil
	if style := s.Properties["adjust_style"]; style != nil {
		style.Required = nil
	}
	if r := items(s, "replace"); r != nil {
		r.Required = []string{"object_id", "original", "new"}
	}
	if e := items(s, "edit_text"); e != nil {
		if box := e.Properties["bbox"]; box != nil {
			box.MinItems = ptr(4)
			box.MaxItems = ptr(4)
		}
	}
	return s, nil
}

// Schema returns the JSON Schema for kind.
func Schema(kind Kind) (*jsonschema.Schema, error) {
	switch kind {
	case KindTranscreation:
		return TranscreationPlanSchema()
	case KindEdit:
		return EditPlanSchema()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// items returns the element schema of the array property key.
func items(s *jsonschema.Schema, key string) *jsonschema.Schema {
	prop := s.Properties[key]
	if prop == nil {
		return nil
	}
	return prop.Items
}

func ptr[T any](v T) *T { return &v }
