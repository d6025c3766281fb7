package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	ErrNotFound       = errors.New("plan: file not found")
	ErrMalformedInput = errors.New("plan: malformed input")
)

// Marshal renders v as two-space indented JSON with HTML escaping disabled,
// so non-ASCII labels stay literal.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile marshals v to path, creating parent directories as needed.
func WriteFile(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write plan %s: %w", path, err)
	}
	return nil
}

// ReadFile reads path as a JSON object without validating its shape.
func ReadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read plan %s: %w", path, err)
	}
	raw, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}

// LoadFile reads and validates path as kind. An empty kind is detected.
func LoadFile(kind Kind, path string) (any, error) {
	raw, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if kind == "" {
		if kind, err = DetectKind(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return Validate(kind, raw)
}
