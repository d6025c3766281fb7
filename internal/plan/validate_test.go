package plan

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func schemaErr(t *testing.T, err error) *SchemaError {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSchema)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	return se
}

func paths(se *SchemaError) []string {
	out := make([]string, len(se.Violations))
	for i, v := range se.Violations {
		out[i] = v.Path
	}
	return out
}

func TestValidateTranscreationPlan_Valid(t *testing.T) {
	raw := decode(t, `{
		"target_culture": "Japan",
		"transformations": [{"original_object": "Burger", "original_type": "FOOD",
			"target_object": "Sushi", "rationale": "Better fit", "confidence": 0.9}],
		"preservations": [{"original_object": "Table", "rationale": "Universal"}],
		"avoidance_adherence": []
	}`)

	p, err := ValidateTranscreationPlan(raw)
	require.NoError(t, err)
	assert.Equal(t, "Japan", p.TargetCulture)
	require.Len(t, p.Transformations, 1)
	assert.Equal(t, Transformation{
		OriginalObject: "Burger", OriginalType: "FOOD", TargetObject: "Sushi",
		Rationale: "Better fit", Confidence: 0.9,
	}, p.Transformations[0])
	assert.Equal(t, []Preservation{{OriginalObject: "Table", Rationale: "Universal"}}, p.Preservations)
	assert.NotNil(t, p.AvoidanceAdherence)
}

func TestValidateTranscreationPlan_ListsEveryViolation(t *testing.T) {
	raw := decode(t, `{
		"transformations": [
			{"original_object": "Burger", "original_type": 3, "target_object": "Sushi",
			 "rationale": "r", "confidence": 1.5},
			"not an object",
			{"original_object": "Hat", "original_type": "CLOTHING", "target_object": "Kasa", "rationale": "r"}
		],
		"preservations": {},
		"avoidance_adherence": ["ok", 7]
	}`)

	_, err := ValidateTranscreationPlan(raw)
	se := schemaErr(t, err)
	assert.Equal(t, KindTranscreation, se.Kind)
	assert.ElementsMatch(t, []string{
		"target_culture",
		"avoidance_adherence[1]",
		"transformations[0].original_type",
		"transformations[0].confidence",
		"transformations[1]",
		"transformations[2].confidence",
		"preservations",
	}, paths(se))
	assert.Contains(t, err.Error(), "7 schema violations")
}

func TestValidateTranscreationPlan_ConfidenceBounds(t *testing.T) {
	for _, tc := range []struct {
		conf string
		ok   bool
	}{
		{"0", true}, {"1", true}, {"0.5", true}, {"-0.01", false}, {"1.0001", false}, {`"0.5"`, false},
	} {
		raw := decode(t, `{"target_culture": "Japan", "preservations": [], "avoidance_adherence": [],
			"transformations": [{"original_object": "a", "original_type": "b", "target_object": "c",
			"rationale": "d", "confidence": `+tc.conf+`}]}`)
		_, err := ValidateTranscreationPlan(raw)
		if tc.ok {
			assert.NoError(t, err, tc.conf)
		} else {
			assert.ErrorIs(t, err, ErrSchema, tc.conf)
		}
	}
}

func TestValidateTranscreationPlan_Nil(t *testing.T) {
	_, err := ValidateTranscreationPlan(nil)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestTranscreationPlan_RoundTrip(t *testing.T) {
	original := NewTranscreationPlan("日本")
	original.Transformations = append(original.Transformations,
		Transformation{OriginalObject: "Burger", OriginalType: "FOOD", TargetObject: "寿司", Rationale: "Better fit", Confidence: 0.9},
		Transformation{OriginalObject: "Cap", OriginalType: "object", TargetObject: "Unknown", Rationale: "No rationale provided.", Confidence: 0},
	)
	original.Preservations = append(original.Preservations, Preservation{OriginalObject: "Chair", Rationale: "Preserved by default."})

	data, err := Marshal(original)
	require.NoError(t, err)

	got, err := ValidateTranscreationPlan(decode(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, *original, got)
}

func TestTranscreationPlan_EmptyRoundTrip(t *testing.T) {
	data, err := Marshal(NewTranscreationPlan("Japan"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"transformations": []`)

	got, err := ValidateTranscreationPlan(decode(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, *NewTranscreationPlan("Japan"), got)
}

func TestValidateEditPlan_Valid(t *testing.T) {
	raw := decode(t, `{
		"preserve": ["layout", "pose"],
		"replace": [{"object_id": 1, "original": "burger", "new": "onigiri", "constraints": {"size": "medium"}}],
		"edit_text": [{"bbox": [10, 10, 100, 50], "original": "Welcome", "translated": "Yokoso"}],
		"adjust_style": {"palette": "pastel", "motifs": ["cherry_blossom"]}
	}`)

	p, err := ValidateEditPlan(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"layout", "pose"}, p.Preserve)
	require.Len(t, p.Replace, 1)
	assert.Equal(t, "onigiri", p.Replace[0].New)
	assert.Equal(t, map[string]any{"size": "medium"}, p.Replace[0].Constraints)
	assert.Equal(t, [4]int{10, 10, 100, 50}, p.EditText[0].BBox)
	require.NotNil(t, p.AdjustStyle)
	require.NotNil(t, p.AdjustStyle.Palette)
	assert.Equal(t, "pastel", *p.AdjustStyle.Palette)
	assert.Nil(t, p.AdjustStyle.Texture)
	assert.Equal(t, []string{"cherry_blossom"}, p.AdjustStyle.Motifs)
}

func TestValidateEditPlan_Defaults(t *testing.T) {
	p, err := ValidateEditPlan(map[string]any{})
	require.NoError(t, err)
	assert.NotNil(t, p.Preserve)
	assert.Empty(t, p.Preserve)
	assert.NotNil(t, p.Replace)
	assert.NotNil(t, p.EditText)
	assert.Nil(t, p.AdjustStyle)

	p, err = ValidateEditPlan(decode(t, `{"adjust_style": {"texture": "watercolor"}, "edit_text": null}`))
	require.NoError(t, err)
	assert.Equal(t, "watercolor", *p.AdjustStyle.Texture)
	assert.NotNil(t, p.AdjustStyle.Motifs)
}

func TestValidateEditPlan_Box2DAlias(t *testing.T) {
	p, err := ValidateEditPlan(decode(t, `{"edit_text": [{"box_2d": [1, 2, 3, 4], "original": "a", "translated": "b"}]}`))
	require.NoError(t, err)
	assert.Equal(t, [4]int{1, 2, 3, 4}, p.EditText[0].BBox)
}

func TestValidateEditPlan_Violations(t *testing.T) {
	raw := decode(t, `{
		"preserve": "layout",
		"replace": [{"object_id": 1.5, "original": "cat"}, {"original": "a", "new": "b", "constraints": []}],
		"edit_text": [
			{"bbox": [1, 2, 3], "original": "a", "translated": "b"},
			{"bbox": [1, 2, "x", 4], "original": "a", "translated": "b"},
			{"original": "a", "translated": "b"}
		],
		"adjust_style": {"palette": 5, "motifs": "waves"}
	}`)

	_, err := ValidateEditPlan(raw)
	se := schemaErr(t, err)
	assert.Equal(t, KindEdit, se.Kind)
	assert.ElementsMatch(t, []string{
		"preserve",
		"replace[0].new",
		"replace[0].object_id",
		"replace[1].object_id",
		"replace[1].constraints",
		"edit_text[0].bbox",
		"edit_text[1].bbox[2]",
		"edit_text[2].bbox",
		"adjust_style.palette",
		"adjust_style.motifs",
	}, paths(se))
}

func TestValidate_Dispatch(t *testing.T) {
	v, err := Validate(KindEdit, map[string]any{})
	require.NoError(t, err)
	assert.IsType(t, EditPlan{}, v)

	_, err = Validate("poster", map[string]any{})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestDetectKind(t *testing.T) {
	k, err := DetectKind(map[string]any{"target_culture": "Japan"})
	require.NoError(t, err)
	assert.Equal(t, KindTranscreation, k)

	k, err = DetectKind(map[string]any{"replace": []any{}})
	require.NoError(t, err)
	assert.Equal(t, KindEdit, k)

	_, err = DetectKind(map[string]any{"foo": 1})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestParse(t *testing.T) {
	v, err := Parse("", []byte(`{"preserve": ["lighting"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"lighting"}, v.(EditPlan).Preserve)

	_, err = Parse(KindEdit, []byte(`[1, 2]`))
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = Parse(KindEdit, []byte(`{`))
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"edit": KindEdit, "Edit-Plan": KindEdit, "transcreation": KindTranscreation, " TRANSCREATION_PLAN ": KindTranscreation,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("storyboard")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
