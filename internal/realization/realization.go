// Package realization is the control interface of the visual realization
// stage. The Engine here walks an Edit Plan and logs each step; image
// synthesis itself is performed by an external generator.
package realization

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/transcreate/internal/plan"
	"go.uber.org/zap"
)

// MockOutputPath is the path reported by Engine in place of a rendered image.
const MockOutputPath = "output/generated_image_mock.png"

// Realizer executes an Edit Plan against an input image and returns the
// path of the generated image.
type Realizer interface {
	Generate(ctx context.Context, p plan.EditPlan, inputImage string) (string, error)
}

// Compile-time interface check.
var _ Realizer = (*Engine)(nil)

// Engine applies plans in a fixed order: global style, object replacements,
// text edits, then preservation checks.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an Engine. A nil logger disables logging.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Generate runs every step of p. It stops early only if ctx is cancelled.
func (e *Engine) Generate(ctx context.Context, p plan.EditPlan, inputImage string) (string, error) {
	log := e.logger.With(zap.String("image", inputImage))
	log.Info("starting realization")

	if p.AdjustStyle != nil {
		e.adjustStyle(log, *p.AdjustStyle)
	}
	for _, r := range p.Replace {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		e.replaceObject(log, r)
	}
	for _, t := range p.EditText {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		e.editText(log, t)
	}
	e.checkPreservation(log, p.Preserve)

	log.Info("realization complete", zap.String("output", MockOutputPath))
	return MockOutputPath, nil
}

func (e *Engine) adjustStyle(log *zap.Logger, s plan.AdjustStyleAction) {
	log.Info("adjusting style",
		zap.Stringp("palette", s.Palette),
		zap.Strings("motifs", s.Motifs),
		zap.Stringp("texture", s.Texture))
}

func (e *Engine) replaceObject(log *zap.Logger, r plan.ReplaceAction) {
	log.Info("replacing object",
		zap.Int("object_id", r.ObjectID),
		zap.String("original", r.Original),
		zap.String("new", r.New),
		zap.Any("constraints", r.Constraints))
}

func (e *Engine) editText(log *zap.Logger, t plan.EditTextAction) {
	log.Info("editing text",
		zap.Ints("bbox", t.BBox[:]),
		zap.String("original", t.Original),
		zap.String("translated", t.Translated))
}

func (e *Engine) checkPreservation(log *zap.Logger, aspects []string) {
	log.Info("ensuring preservation", zap.Strings("aspects", aspects))
}

// WriteMockOutput stands in for a rendered image at path, creating parent
// directories as needed.
func WriteMockOutput(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte("Mock Image Content"), 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
