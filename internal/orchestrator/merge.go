package orchestrator

import (
	"math"

	"github.com/dusk-indust/transcreate/internal/plan"
	"github.com/dusk-indust/transcreate/internal/reasoning"
)

// merge folds per-object decisions, already in input order, into a plan.
// Only "transform" yields a transformation; every other action, including
// an empty one from a failed call, preserves the object.
func merge(targetCulture string, results []decided) *plan.TranscreationPlan {
	p := plan.NewTranscreationPlan(targetCulture)
	for _, r := range results {
		d := r.decision
		if d.Action == reasoning.ActionTransform {
			p.Transformations = append(p.Transformations, plan.Transformation{
				OriginalObject: r.label,
				OriginalType:   r.objType,
				TargetObject:   orDefault(d.TargetObject, UnknownTarget),
				Rationale:      orDefault(d.Rationale, DefaultRationale),
				Confidence:     confidence(d.Confidence),
			})
			continue
		}
		p.Preservations = append(p.Preservations, plan.Preservation{
			OriginalObject: r.label,
			Rationale:      orDefault(d.Rationale, PreservedByDefault),
		})
	}
	return p
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// confidence clamps to [0, 1] so every produced plan validates.
func confidence(c *float64) float64 {
	if c == nil || math.IsNaN(*c) {
		return defaultConfidenceVal
	}
	return math.Min(math.Max(*c, 0), 1)
}
