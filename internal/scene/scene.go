// Package scene decodes the perception stage's scene graph into the shape the
// reasoning stage consumes.
package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

var (
	// ErrNotFound is returned when a scene graph file does not exist.
	ErrNotFound = errors.New("scene: file not found")

	// ErrMalformedInput is returned when a scene graph is not valid JSON of the expected shape.
	ErrMalformedInput = errors.New("scene: malformed input")
)

// Graph is a perception scene graph.
type Graph struct {
	Objects []Object `json:"objects"`
	Scene   Summary  `json:"scene"`
}

// Summary carries the scene-level caption.
type Summary struct {
	Description string `json:"description,omitempty"`
}

// Object is one detected object. Label is the canonical name: perception
// emits it as either "label" or "class_name" and decoding folds both into it.
type Object struct {
	ID    *int   `json:"id,omitempty"`
	Label string `json:"label,omitempty"`
	Type  string `json:"type,omitempty"`
}

// UnmarshalJSON normalizes the label/class_name variants into Label.
func (o *Object) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        *int   `json:"id"`
		Label     string `json:"label"`
		ClassName string `json:"class_name"`
		Type      string `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.ID = raw.ID
	o.Label = raw.Label
	if o.Label == "" {
		o.Label = raw.ClassName
	}
	o.Type = raw.Type
	return nil
}

// Labeled reports whether the object has a name the reasoning stage can use.
func (o Object) Labeled() bool {
	return o.Label != ""
}

// IDString renders the object id for logs and progress lines.
func (o Object) IDString() string {
	if o.ID == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *o.ID)
}

// Decode reads a scene graph from r.
func Decode(r io.Reader) (Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return Graph{}, errors.Join(ErrMalformedInput, err)
	}
	return g, nil
}

// ReadFile loads the scene graph stored at path.
func ReadFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Graph{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Graph{}, fmt.Errorf("scene: open %s: %w", path, err)
	}
	defer f.Close()

	g, err := Decode(f)
	if err != nil {
		return Graph{}, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
