package normalize

import (
	"math"

	"github.com/leofalp/sceneplan/core/scene"
)

// Default reconciliation tolerances. The acceptance band for a plan's total
// duration is max(relative × requested, absolute floor); both knobs are
// configurable through [WithTolerance] or the config package.
const (
	DefaultToleranceRelative = 0.10
	DefaultToleranceFloorSec = 0.5
)

// durationEpsilon is the threshold below which two float durations are
// treated as equal, absorbing decode/rescale rounding noise.
const durationEpsilon = 1e-9

// reconcile adjusts the validated plan in place against the caller's
// constraints and stamps the plan metadata.
//
// With deterministic=false any deviation between the plan's total duration
// and the requested one is corrected by proportionally rescaling every scene
// (and its offsets, action durations and transition, the latter clamped to
// the adjacent-scene rule), so the reconciled total matches the request
// exactly. With deterministic=true the plan is never touched: a deviation
// within tolerance is accepted as-is, beyond tolerance it is a hard failure.
func reconcile(p *scene.ScenePlan, c scene.GenerationConstraints, o options) error {
	requested := c.TotalDurationSec
	actual := p.DurationTotal()
	tolerance := math.Max(o.toleranceRelative*requested, o.toleranceFloorSec)
	deviation := math.Abs(actual - requested)

	switch {
	case c.Deterministic:
		if deviation > tolerance {
			return errorf(KindConstraintUnsatisfiable, "",
				"plan duration %.3fs deviates from requested %.3fs by more than the %.3fs tolerance and deterministic mode forbids rescaling",
				actual, requested, tolerance)
		}
	case deviation > durationEpsilon:
		if err := rescale(p, requested/actual); err != nil {
			return err
		}
		// Rescaling preserves the validated invariants by construction;
		// re-checking here turns any residual defect into a reconciliation
		// failure instead of a malformed "successful" plan.
		if violations := validatePlan(p); len(violations) > 0 {
			return &Error{
				Kind:       KindConstraintUnsatisfiable,
				Detail:     "rescaling violated a hard invariant",
				Violations: violations,
			}
		}
	}

	applyMeta(p, c, o)
	return nil
}

// rescale multiplies every duration in the plan by factor, then makes the
// total exact by letting the last scene absorb the floating-point residue.
func rescale(p *scene.ScenePlan, factor float64) error {
	if factor <= 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
		return errorf(KindConstraintUnsatisfiable, "", "cannot rescale plan by factor %v", factor)
	}
	requested := p.DurationTotal() * factor

	for i := range p.Scenes {
		sc := &p.Scenes[i]
		sc.DurationSec *= factor
		for j := range sc.Actions {
			sc.Actions[j].OffsetSec *= factor
			sc.Actions[j].DurationSec *= factor
		}
	}

	// Exact total: the last scene takes the rounding difference.
	last := &p.Scenes[len(p.Scenes)-1]
	residue := requested - p.DurationTotal()
	if last.DurationSec+residue <= 0 {
		return errorf(KindConstraintUnsatisfiable, "",
			"rescaling collapses the final scene to a non-positive duration")
	}
	last.DurationSec += residue
	for j := range last.Actions {
		// A negative residue can nudge the scene just below an offset that
		// sat exactly at its end; clamp instead of failing on float dust.
		if last.Actions[j].OffsetSec > last.DurationSec {
			last.Actions[j].OffsetSec = last.DurationSec
		}
	}

	// Transitions scale with the plan but stay clamped to the shorter
	// adjacent scene, re-asserting the validated invariant after rescale.
	for i := range p.Scenes {
		tr := p.Scenes[i].Transition
		if tr == nil {
			continue
		}
		tr.DurationSec *= factor
		limit := p.Scenes[i].DurationSec
		if i+1 < len(p.Scenes) && p.Scenes[i+1].DurationSec < limit {
			limit = p.Scenes[i+1].DurationSec
		}
		if tr.DurationSec > limit {
			tr.DurationSec = limit
		}
	}
	return nil
}

// applyMeta copies the request-scoped pass-through fields onto the plan,
// filling configured defaults for anything the caller left unset.
func applyMeta(p *scene.ScenePlan, c scene.GenerationConstraints, o options) {
	meta := scene.PlanMeta{
		AspectRatio:      c.AspectRatio,
		FPS:              c.FPS,
		Language:         c.Language,
		TotalDurationSec: p.DurationTotal(),
		Generator:        scene.Generator,
		Version:          scene.Version,
	}
	if meta.AspectRatio == "" {
		meta.AspectRatio = o.defaultAspectRatio
	}
	if meta.FPS == 0 {
		meta.FPS = o.defaultFPS
	}
	if meta.Language == "" {
		meta.Language = o.defaultLanguage
	}
	p.Meta = meta
}
