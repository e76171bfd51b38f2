// Package scene defines the canonical scene-plan data model: the strictly
// typed structures a normalization run produces (ScenePlan, Scene, Action,
// Transition, PlanSummary) and the caller-supplied GenerationConstraints that
// bound a run. All types are plain values with JSON tags; none carry behavior
// beyond derived accessors and deep copies, so a plan can be serialized,
// compared and handed across API boundaries without surprises.
//
// Every entity is request-scoped. A ScenePlan returned by the pipeline is
// immutable by convention: callers that need to mutate one should work on the
// result of [ScenePlan.Clone].
package scene
