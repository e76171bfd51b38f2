package scene

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Generator and Version identify the producer in [PlanMeta]. They are
// embedded in every plan so downstream consumers can tell which planner
// revision emitted it.
const (
	Generator = "sceneplan"
	Version   = "1.0.0"
)

// ActionKind classifies an event inside a scene; compatible with string
type ActionKind string

const (
	ActionDialogue ActionKind = "dialogue" // Spoken line or narration
	ActionMovement ActionKind = "movement" // Camera or subject movement
	ActionEffect   ActionKind = "effect"   // Visual effect applied during the scene
	ActionAudio    ActionKind = "audio"    // Background music or sound effect
	ActionText     ActionKind = "text"     // On-screen text overlay
	ActionImage    ActionKind = "image"    // Still image asset
	ActionVideo    ActionKind = "video"    // Video clip asset
)

// ValidActionKind reports whether k is one of the recognized action kinds.
func ValidActionKind(k ActionKind) bool {
	switch k {
	case ActionDialogue, ActionMovement, ActionEffect, ActionAudio, ActionText, ActionImage, ActionVideo:
		return true
	}
	return false
}

// TransitionKind classifies how one scene hands over to the next; compatible with string
type TransitionKind string

const (
	TransitionCut      TransitionKind = "cut"      // Instant switch, duration is ignored
	TransitionFade     TransitionKind = "fade"     // Fade through black
	TransitionDissolve TransitionKind = "dissolve" // Cross-dissolve between frames
	TransitionWipe     TransitionKind = "wipe"     // Directional wipe
	TransitionNone     TransitionKind = "none"     // Explicit absence of a transition
)

// ValidTransitionKind reports whether k is one of the recognized transition kinds.
func ValidTransitionKind(k TransitionKind) bool {
	switch k {
	case TransitionCut, TransitionFade, TransitionDissolve, TransitionWipe, TransitionNone:
		return true
	}
	return false
}

// GenerationConstraints are the caller-supplied bounds a normalized plan must
// satisfy. They are supplied once per request and never mutated by the
// pipeline; reconciliation reads them and writes its outcome onto the plan.
type GenerationConstraints struct {
	TotalDurationSec float64 `json:"totalDurationSec"`        // Requested total plan duration, must be positive
	AspectRatio      string  `json:"aspectRatio,omitempty"`   // e.g. "16:9"
	FPS              int     `json:"fps,omitempty"`           // Frames per second, must be positive
	Language         string  `json:"language,omitempty"`      // BCP 47 tag, e.g. "en" or "pt-BR"
	Deterministic    bool    `json:"deterministic,omitempty"` // If true the plan is never silently adjusted
}

// Validate checks the constraints themselves for well-formedness, before any
// raw text is considered. It reports the first problem found; constraint
// checking is not accumulating because the caller built these values directly.
func (c GenerationConstraints) Validate() error {
	if c.TotalDurationSec <= 0 {
		return fmt.Errorf("totalDurationSec must be positive, got %v", c.TotalDurationSec)
	}
	if c.FPS < 0 {
		return fmt.Errorf("fps must not be negative, got %d", c.FPS)
	}
	if c.AspectRatio != "" {
		if _, _, err := ParseAspectRatio(c.AspectRatio); err != nil {
			return err
		}
	}
	if c.Language != "" {
		if _, err := language.Parse(c.Language); err != nil {
			return fmt.Errorf("language %q is not a valid BCP 47 tag: %w", c.Language, err)
		}
	}
	return nil
}

// ParseAspectRatio splits an aspect-ratio string of the form "W:H" into its
// positive integer components. The whole string must be consumed; trailing
// text is a parse error.
func ParseAspectRatio(s string) (w, h int, err error) {
	ws, hs, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, fmt.Errorf("aspect ratio %q does not match W:H", s)
	}
	w, werr := strconv.Atoi(ws)
	h, herr := strconv.Atoi(hs)
	if werr != nil || herr != nil {
		return 0, 0, fmt.Errorf("aspect ratio %q does not match W:H", s)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("aspect ratio %q must have positive components", s)
	}
	return w, h, nil
}

// Action is a typed event within a scene. OffsetSec positions it relative to
// the start of its scene and must stay within [0, Scene.DurationSec]. Props
// carries kind-specific descriptive fields (src, text, voice, ...) untouched.
type Action struct {
	ID          string         `json:"id"`
	Kind        ActionKind     `json:"kind" jsonschema:"enum=dialogue|movement|effect|audio|text|image|video"`
	Description string         `json:"description,omitempty"`
	OffsetSec   float64        `json:"offsetSec"` // Start offset within the scene, defaults to 0
	DurationSec float64        `json:"durationSec,omitempty"`
	Props       map[string]any `json:"props,omitempty"`
}

// Transition describes the handover from its scene to the next one.
// DurationSec must be non-negative and may not exceed the shorter of the two
// adjacent scene durations.
type Transition struct {
	Kind        TransitionKind `json:"kind" jsonschema:"enum=cut|fade|dissolve|wipe|none"`
	DurationSec float64        `json:"durationSec"`
}

// Scene is one ordered segment of the plan. Transition, when present, leads
// into the following scene; nil means a hard cut. A scene always carries at
// least one action.
type Scene struct {
	ID          string      `json:"id"`
	Title       string      `json:"title,omitempty"`
	DurationSec float64     `json:"durationSec"`
	Actions     []Action    `json:"actions"`
	Transition  *Transition `json:"transition,omitempty"`
}

// PlanMeta carries the request-scoped metadata copied onto a plan during
// reconciliation. AspectRatio, FPS and Language are pass-through from the
// constraints; TotalDurationSec is the reconciled total.
type PlanMeta struct {
	AspectRatio      string  `json:"aspectRatio,omitempty"`
	FPS              int     `json:"fps,omitempty"`
	Language         string  `json:"language,omitempty"`
	TotalDurationSec float64 `json:"totalDurationSec"`
	Generator        string  `json:"generator,omitempty"`
	Version          string  `json:"version,omitempty"`
}

// ScenePlan is the ordered collection of scenes produced by a successful
// normalization run. Insertion order is screen order and the plan always
// holds at least one scene.
type ScenePlan struct {
	Scenes []Scene  `json:"scenes"`
	Meta   PlanMeta `json:"meta"`
}

// DurationTotal returns the sum of all scene durations. It is always derived,
// never stored independently of the scenes.
func (p *ScenePlan) DurationTotal() float64 {
	var total float64
	for i := range p.Scenes {
		total += p.Scenes[i].DurationSec
	}
	return total
}

// Clone returns a deep copy of the plan. The pipeline returns plans that are
// immutable by convention; callers that need to transform one should clone it
// first.
func (p *ScenePlan) Clone() *ScenePlan {
	if p == nil {
		return nil
	}
	out := &ScenePlan{
		Scenes: make([]Scene, len(p.Scenes)),
		Meta:   p.Meta,
	}
	for i, sc := range p.Scenes {
		cp := sc
		cp.Actions = make([]Action, len(sc.Actions))
		for j, a := range sc.Actions {
			ca := a
			if a.Props != nil {
				ca.Props = make(map[string]any, len(a.Props))
				for k, v := range a.Props {
					ca.Props[k] = v
				}
			}
			cp.Actions[j] = ca
		}
		if sc.Transition != nil {
			t := *sc.Transition
			cp.Transition = &t
		}
		out.Scenes[i] = cp
	}
	return out
}

// PlanSummary is the caller-facing digest of a plan: scene count, a short
// note, and the prompt echoed verbatim. It is always recomputed from the plan
// it summarizes, never mutated independently.
type PlanSummary struct {
	ScenesCount int    `json:"scenesCount"`
	Notes       string `json:"notes"`
	Prompt      string `json:"prompt"`
}

// Summarize builds the summary for plan, echoing prompt verbatim.
func Summarize(plan *ScenePlan, prompt string) *PlanSummary {
	n := len(plan.Scenes)
	return &PlanSummary{
		ScenesCount: n,
		Notes:       fmt.Sprintf("Generated %d scene(s) from prompt", n),
		Prompt:      prompt,
	}
}
