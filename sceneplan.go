// Package sceneplan re-exports the module's primary surface so simple
// callers need a single import. The full API lives in the subpackages:
// core/normalize for the pipeline, core/scene for the data model,
// core/prompt for prompt building and providers/observability for
// instrumentation.
package sceneplan

import (
	"github.com/leofalp/sceneplan/core/normalize"
	"github.com/leofalp/sceneplan/core/scene"
)

// Core data model aliases.
type (
	ScenePlan             = scene.ScenePlan
	Scene                 = scene.Scene
	Action                = scene.Action
	Transition            = scene.Transition
	PlanSummary           = scene.PlanSummary
	GenerationConstraints = scene.GenerationConstraints
)

// Option configures a Normalize call; see the normalize package for the
// available options.
type Option = normalize.Option

// Normalize turns untrusted raw text into a schema-valid scene plan and its
// summary. See [normalize.Normalize] for the full contract.
func Normalize(rawText string, constraints GenerationConstraints, prompt string, opts ...Option) (*ScenePlan, *PlanSummary, error) {
	return normalize.Normalize(rawText, constraints, prompt, opts...)
}
