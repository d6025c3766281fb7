package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/multierr"
)

// ErrSchema matches every *SchemaError.
var ErrSchema = errors.New("plan: schema violation")

// FieldError is one violated constraint. Path uses dotted keys and [i]
// indexes, e.g. "transformations[0].confidence".
type FieldError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (e FieldError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return e.Path + ": " + e.Reason
}

// SchemaError reports every constraint a document violated.
type SchemaError struct {
	Kind       Kind
	Violations []FieldError
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s plan: %d schema violation", e.Kind, len(e.Violations))
	if len(e.Violations) != 1 {
		b.WriteString("s")
	}
	for i, v := range e.Violations {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(v.Error())
	}
	return b.String()
}

// Unwrap exposes ErrSchema and each violation.
func (e *SchemaError) Unwrap() []error {
	errs := make([]error, 0, len(e.Violations)+1)
	errs = append(errs, ErrSchema)
	for _, v := range e.Violations {
		errs = append(errs, v)
	}
	return errs
}

// checker accumulates violations while walking a decoded JSON document.
type checker struct {
	errs error
}

func (c *checker) fail(path, format string, args ...any) {
	c.errs = multierr.Append(c.errs, FieldError{Path: path, Reason: fmt.Sprintf(format, args...)})
}

func (c *checker) result(kind Kind) error {
	if c.errs == nil {
		return nil
	}
	all := multierr.Errors(c.errs)
	se := &SchemaError{Kind: kind, Violations: make([]FieldError, 0, len(all))}
	for _, err := range all {
		var fe FieldError
		if errors.As(err, &fe) {
			se.Violations = append(se.Violations, fe)
		}
	}
	return se
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

// typeName describes a decoded JSON value for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		if _, ok := toFloat(v); ok {
			return "number"
		}
		return fmt.Sprintf("%T", v)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func (c *checker) str(obj map[string]any, key, path string) string {
	p := join(path, key)
	v, ok := obj[key]
	if !ok {
		c.fail(p, "field required")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		c.fail(p, "expected string, got %s", typeName(v))
	}
	return s
}

// optStr reads an optional string; absent and null both mean unset.
func (c *checker) optStr(obj map[string]any, key, path string) *string {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		c.fail(join(path, key), "expected string, got %s", typeName(v))
		return nil
	}
	return &s
}

func (c *checker) num(obj map[string]any, key, path string) (float64, bool) {
	p := join(path, key)
	v, ok := obj[key]
	if !ok {
		c.fail(p, "field required")
		return 0, false
	}
	f, ok := toFloat(v)
	if !ok {
		c.fail(p, "expected number, got %s", typeName(v))
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		c.fail(p, "expected finite number")
		return 0, false
	}
	return f, true
}

func (c *checker) integer(v any, path string) (int, bool) {
	f, ok := toFloat(v)
	if !ok {
		c.fail(path, "expected integer, got %s", typeName(v))
		return 0, false
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		c.fail(path, "expected integer, got %v", f)
		return 0, false
	}
	return int(f), true
}

// list reads an array field. Optional lists accept absent and null.
func (c *checker) list(obj map[string]any, key, path string, required bool) []any {
	p := join(path, key)
	v, ok := obj[key]
	if !ok || (v == nil && !required) {
		if required {
			c.fail(p, "field required")
		}
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		c.fail(p, "expected array, got %s", typeName(v))
		return nil
	}
	return items
}

func (c *checker) object(v any, path string) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		c.fail(path, "expected object, got %s", typeName(v))
	}
	return m, ok
}

func (c *checker) strings(obj map[string]any, key, path string, required bool) []string {
	items := c.list(obj, key, path, required)
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			c.fail(index(join(path, key), i), "expected string, got %s", typeName(item))
			continue
		}
		out = append(out, s)
	}
	return out
}

// ValidateTranscreationPlan checks raw against the Transcreation Plan shape.
// Every field is required; confidence must lie in [0, 1].
func ValidateTranscreationPlan(raw map[string]any) (TranscreationPlan, error) {
	var c checker
	if raw == nil {
		c.fail("", "expected object, got null")
		return TranscreationPlan{}, c.result(KindTranscreation)
	}

	p := TranscreationPlan{
		TargetCulture:      c.str(raw, "target_culture", ""),
		Transformations:    []Transformation{},
		Preservations:      []Preservation{},
		AvoidanceAdherence: c.strings(raw, "avoidance_adherence", "", true),
	}

	for i, item := range c.list(raw, "transformations", "", true) {
		path := index("transformations", i)
		obj, ok := c.object(item, path)
		if !ok {
			continue
		}
		t := Transformation{
			OriginalObject: c.str(obj, "original_object", path),
			OriginalType:   c.str(obj, "original_type", path),
			TargetObject:   c.str(obj, "target_object", path),
			Rationale:      c.str(obj, "rationale", path),
		}
		if f, ok := c.num(obj, "confidence", path); ok {
			if f < 0 || f > 1 {
				c.fail(join(path, "confidence"), "must be between 0 and 1, got %v", f)
			}
			t.Confidence = f
		}
		p.Transformations = append(p.Transformations, t)
	}

	for i, item := range c.list(raw, "preservations", "", true) {
		path := index("preservations", i)
		obj, ok := c.object(item, path)
		if !ok {
			continue
		}
		p.Preservations = append(p.Preservations, Preservation{
			OriginalObject: c.str(obj, "original_object", path),
			Rationale:      c.str(obj, "rationale", path),
		})
	}

	if err := c.result(KindTranscreation); err != nil {
		return TranscreationPlan{}, err
	}
	return p, nil
}

// ValidateEditPlan checks raw against the Edit Plan shape. Lists default to
// empty and adjust_style is optional. Each edit_text entry needs a four
// element integral bbox, also accepted under the key box_2d.
func ValidateEditPlan(raw map[string]any) (EditPlan, error) {
	var c checker
	if raw == nil {
		c.fail("", "expected object, got null")
		return EditPlan{}, c.result(KindEdit)
	}

	p := EditPlan{
		Preserve: c.strings(raw, "preserve", "", false),
		Replace:  []ReplaceAction{},
		EditText: []EditTextAction{},
	}

	for i, item := range c.list(raw, "replace", "", false) {
		path := index("replace", i)
		obj, ok := c.object(item, path)
		if !ok {
			continue
		}
		r := ReplaceAction{
			Original: c.str(obj, "original", path),
			New:      c.str(obj, "new", path),
		}
		if v, ok := obj["object_id"]; !ok {
			c.fail(join(path, "object_id"), "field required")
		} else if id, ok := c.integer(v, join(path, "object_id")); ok {
			r.ObjectID = id
		}
		if v, ok := obj["constraints"]; ok && v != nil {
			if m, ok := c.object(v, join(path, "constraints")); ok {
				r.Constraints = m
			}
		}
		p.Replace = append(p.Replace, r)
	}

	for i, item := range c.list(raw, "edit_text", "", false) {
		path := index("edit_text", i)
		obj, ok := c.object(item, path)
		if !ok {
			continue
		}
		e := EditTextAction{
			Original:   c.str(obj, "original", path),
			Translated: c.str(obj, "translated", path),
		}
		e.BBox = c.bbox(obj, path)
		p.EditText = append(p.EditText, e)
	}

	if v, ok := raw["adjust_style"]; ok && v != nil {
		if obj, ok := c.object(v, "adjust_style"); ok {
			p.AdjustStyle = &AdjustStyleAction{
				Palette: c.optStr(obj, "palette", "adjust_style"),
				Texture: c.optStr(obj, "texture", "adjust_style"),
				Motifs:  c.strings(obj, "motifs", "adjust_style", false),
			}
		}
	}

	if err := c.result(KindEdit); err != nil {
		return EditPlan{}, err
	}
	return p, nil
}

func (c *checker) bbox(obj map[string]any, path string) [4]int {
	var box [4]int
	key := "bbox"
	v, ok := obj[key]
	if !ok {
		key = "box_2d"
		v, ok = obj[key]
	}
	p := join(path, key)
	if !ok {
		c.fail(join(path, "bbox"), "field required")
		return box
	}
	items, ok := v.([]any)
	if !ok {
		c.fail(p, "expected array, got %s", typeName(v))
		return box
	}
	if len(items) != len(box) {
		c.fail(p, "expected 4 coordinates, got %d", len(items))
		return box
	}
	for i, item := range items {
		if n, ok := c.integer(item, index(p, i)); ok {
			box[i] = n
		}
	}
	return box
}

// Validate dispatches on kind and returns a TranscreationPlan or an EditPlan.
func Validate(kind Kind, raw map[string]any) (any, error) {
	switch kind {
	case KindTranscreation:
		return ValidateTranscreationPlan(raw)
	case KindEdit:
		return ValidateEditPlan(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// DetectKind guesses the plan kind from the top-level keys of raw.
func DetectKind(raw map[string]any) (Kind, error) {
	for _, key := range []string{"target_culture", "transformations", "preservations", "avoidance_adherence"} {
		if _, ok := raw[key]; ok {
			return KindTranscreation, nil
		}
	}
	for _, key := range []string{"preserve", "replace", "edit_text", "adjust_style"} {
		if _, ok := raw[key]; ok {
			return KindEdit, nil
		}
	}
	return "", fmt.Errorf("%w: no recognizable top-level keys", ErrUnknownKind)
}

// Parse decodes data as a JSON object and validates it as kind. An empty
// kind is detected from the document.
func Parse(kind Kind, data []byte) (any, error) {
	raw, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	if kind == "" {
		if kind, err = DetectKind(raw); err != nil {
			return nil, err
		}
	}
	return Validate(kind, raw)
}

func decodeObject(data []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is %s, not an object", ErrMalformedInput, typeName(v))
	}
	return raw, nil
}
