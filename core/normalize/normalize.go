package normalize

import (
	"context"
	"time"

	"github.com/leofalp/sceneplan/core/scene"
	"github.com/leofalp/sceneplan/providers/observability"
)

// Normalize runs the full repair-and-validate pipeline over rawText and
// returns the immutable scene plan plus its summary, with prompt echoed into
// the summary verbatim.
//
// The function is pure and synchronous: it performs no I/O, owns no shared
// state, and is safe to call concurrently. It runs to completion or failure
// in time proportional to the input; the repair ladder is a fixed, small
// enumeration, never an unbounded loop.
//
// Every failure wraps one of the package sentinels ([ErrExtractionFailed],
// [ErrParseFailed], [ErrCoercionFailed], [ErrValidationFailed],
// [ErrConstraintUnsatisfiable]) and carries a *[Error] with the offending
// path, violation list or attempted repairs.
func Normalize(rawText string, constraints scene.GenerationConstraints, prompt string, opts ...Option) (*scene.ScenePlan, *scene.PlanSummary, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ctx := context.Background()

	if err := constraints.Validate(); err != nil {
		return nil, nil, fail(ctx, o, &Error{Kind: KindConstraintUnsatisfiable, Detail: err.Error()})
	}

	candidate, truncated, err := stage1Extract(ctx, o, rawText)
	if err != nil {
		return nil, nil, fail(ctx, o, err)
	}

	tree, err := stage2Parse(ctx, o, candidate, truncated)
	if err != nil {
		return nil, nil, fail(ctx, o, err)
	}

	plan, err := stage3Coerce(ctx, o, tree)
	if err != nil {
		return nil, nil, fail(ctx, o, err)
	}

	if err := stage4Validate(ctx, o, plan); err != nil {
		return nil, nil, fail(ctx, o, err)
	}

	if err := stage5Reconcile(ctx, o, plan, constraints); err != nil {
		return nil, nil, fail(ctx, o, err)
	}

	// Build: hand the caller fresh copies so the returned plan stays
	// immutable no matter what intermediate state still references it.
	final := plan.Clone()
	summary := scene.Summarize(final, prompt)
	if o.observer != nil {
		o.observer.Counter(observability.MetricNormalizeSuccess).Add(ctx, 1)
		o.observer.Debug(ctx, "scene plan normalized",
			observability.Int(observability.AttrScenesCount, summary.ScenesCount),
			observability.Float64(observability.AttrPlanDuration, final.Meta.TotalDurationSec),
		)
	}
	return final, summary, nil
}

func stage1Extract(ctx context.Context, o options, rawText string) (string, bool, error) {
	_, end := startStage(ctx, o, observability.StageExtract,
		observability.Int(observability.AttrInputBytes, len(rawText)))
	candidate, truncated, err := extractCandidate(rawText)
	end(err)
	return candidate, truncated, err
}

func stage2Parse(ctx context.Context, o options, candidate string, truncated bool) (any, error) {
	ctx, end := startStage(ctx, o, observability.StageParse,
		observability.Bool(observability.AttrSpanTruncated, truncated))
	if truncated && o.observer != nil {
		o.observer.Debug(ctx, "candidate span is truncated, close-repair will apply")
	}
	tree, err := parseTolerant(candidate)
	end(err)
	return tree, err
}

func stage3Coerce(ctx context.Context, o options, tree any) (*scene.ScenePlan, error) {
	_, end := startStage(ctx, o, observability.StageCoerce)
	plan, err := coercer{lenientIDs: o.lenientIDs}.coercePlan(tree)
	end(err)
	return plan, err
}

func stage4Validate(ctx context.Context, o options, plan *scene.ScenePlan) error {
	_, end := startStage(ctx, o, observability.StageValidate,
		observability.Int(observability.AttrScenesCount, len(plan.Scenes)))
	var err error
	if violations := validatePlan(plan); len(violations) > 0 {
		err = &Error{Kind: KindValidationFailed, Violations: violations}
	}
	end(err)
	return err
}

func stage5Reconcile(ctx context.Context, o options, plan *scene.ScenePlan, constraints scene.GenerationConstraints) error {
	_, end := startStage(ctx, o, observability.StageReconcile,
		observability.Float64(observability.AttrPlanDuration, plan.DurationTotal()))
	err := reconcile(plan, constraints, o)
	end(err)
	return err
}

// startStage opens an observability span for one pipeline stage and returns
// the span-carrying context together with the closer, so work inside the
// stage logs and records against the span. With no observer attached it is a
// no-op.
func startStage(ctx context.Context, o options, name string, attrs ...observability.Attribute) (context.Context, func(error)) {
	if o.observer == nil {
		return ctx, func(error) {}
	}
	start := time.Now()
	ctx, span := o.observer.StartSpan(ctx, name, attrs...)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, err.Error())
		} else {
			span.SetStatus(observability.StatusOK, "")
		}
		span.End()
		o.observer.Histogram(observability.MetricStageDuration).Record(ctx,
			float64(time.Since(start).Microseconds())/1000.0,
			observability.String(observability.AttrStage, name),
		)
	}
}

// fail counts the failure per kind before handing the error back.
func fail(ctx context.Context, o options, err error) error {
	if o.observer != nil {
		attrs := []observability.Attribute{}
		if e := AsError(err); e != nil {
			attrs = append(attrs, observability.String(observability.AttrFailureKind, string(e.Kind)))
		}
		o.observer.Counter(observability.MetricNormalizeFailure).Add(ctx, 1, attrs...)
	}
	return err
}
