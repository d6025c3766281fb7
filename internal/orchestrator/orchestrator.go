// Package orchestrator runs the cultural reasoning stage: for every labeled
// scene object it consults the knowledge graph, asks the reasoner for a
// decision and folds the decisions into a Transcreation Plan.
package orchestrator

import (
	"context"
	"time"

	"github.com/dusk-indust/transcreate/internal/graph"
	"github.com/dusk-indust/transcreate/internal/plan"
	"github.com/dusk-indust/transcreate/internal/reasoning"
	"github.com/dusk-indust/transcreate/internal/scene"
	"go.uber.org/zap"
)

// Input is one analysis request.
type Input struct {
	Scene         scene.Graph
	TargetCulture string
	AvoidList     []string
}

// Engine analyzes scenes against a shared graph store and reasoner. The
// store and reasoner are read-only from the engine's point of view, so one
// Engine may serve concurrent Analyze calls.
type Engine struct {
	store       graph.Store
	reasoner    reasoning.Reasoner
	logger      *zap.Logger
	concurrency int
	onProgress  func(ProgressEvent)
}

// NewEngine wires an Engine. The caller owns store and reasoner.
func NewEngine(store graph.Store, reasoner reasoning.Reasoner, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		reasoner:    reasoner,
		logger:      zap.NewNop(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// decided is the per-object result slot filled by the fan-out.
type decided struct {
	label    string
	objType  string
	decision reasoning.Decision
}

// Analyze produces the Transcreation Plan for in. Objects without a label are
// skipped. Reasoning failures degrade to preservations and never abort the
// run; the only error is ctx's, when it is cancelled before every object has
// been started.
func (e *Engine) Analyze(ctx context.Context, in Input) (*plan.TranscreationPlan, error) {
	start := time.Now()
	log := e.logger.With(zap.String("target_culture", in.TargetCulture))

	objects := make([]scene.Object, 0, len(in.Scene.Objects))
	for _, obj := range in.Scene.Objects {
		if obj.Labeled() {
			objects = append(objects, obj)
		}
	}
	log.Info("starting cultural analysis",
		zap.Int("objects", len(objects)),
		zap.Int("skipped", len(in.Scene.Objects)-len(objects)))

	for _, obj := range objects {
		e.emit(ProgressEvent{ObjectID: obj.IDString(), Label: obj.Label, Status: ProgressPending})
	}

	results, err := fanOut(ctx, len(objects), e.concurrency, func(i int) decided {
		return e.analyzeObject(ctx, log, in, objects[i])
	})
	if err != nil {
		log.Warn("cultural analysis cancelled", zap.Error(err))
		return nil, err
	}

	p := merge(in.TargetCulture, results)
	log.Info("cultural analysis complete",
		zap.Int("transformations", len(p.Transformations)),
		zap.Int("preservations", len(p.Preservations)),
		zap.Duration("elapsed", time.Since(start)))
	return p, nil
}

func (e *Engine) analyzeObject(ctx context.Context, log *zap.Logger, in Input, obj scene.Object) decided {
	ev := ProgressEvent{ObjectID: obj.IDString(), Label: obj.Label}
	ev.Status = ProgressWorking
	e.emit(ev)

	objType := DefaultObjectType
	source := UnknownCulture
	if node, ok := e.store.FindNodeByLabel(obj.Label); ok {
		objType = node.Type
		if owner, ok := e.store.OwnerCulture(node.ID); ok && owner != "" {
			source = owner
		}
	}

	candidates := e.store.NodesByTypeAndCulture(objType, in.TargetCulture)
	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = c.Label
	}

	prompt := BuildPrompt(PromptInput{
		Label:         obj.Label,
		Type:          objType,
		SourceCulture: source,
		TargetCulture: in.TargetCulture,
		Context:       in.Scene.Scene.Description,
		Candidates:    labels,
		AvoidList:     in.AvoidList,
	})

	// A decision already under way runs to completion; cancellation takes
	// effect between objects.
	res := e.reasoner.Decide(context.WithoutCancel(ctx), prompt)

	objLog := log.With(
		zap.String("object", obj.Label),
		zap.String("object_id", obj.IDString()),
		zap.String("type", objType),
		zap.String("source_culture", source))
	if res.Failed() {
		objLog.Warn(warningFor(res.Err.Kind), zap.Error(res.Err))
		ev.Status = ProgressFailed
		ev.Message = res.Err.Kind.String()
	} else {
		objLog.Debug("decision received",
			zap.String("action", string(res.Decision.Action)),
			zap.Int("candidates", len(labels)))
		ev.Status = ProgressComplete
		ev.Message = string(res.Decision.Action)
	}
	e.emit(ev)

	return decided{label: obj.Label, objType: objType, decision: res.Decision}
}

func warningFor(k reasoning.ErrorKind) string {
	switch k {
	case reasoning.KindServiceUnavailable:
		return "ServiceUnavailable: preserving object"
	case reasoning.KindInvalidResponse:
		return "InvalidServiceResponse: preserving object"
	default:
		return "reasoning failed: preserving object"
	}
}

func (e *Engine) emit(ev ProgressEvent) {
	if e.onProgress != nil {
		e.onProgress(ev)
	}
}
