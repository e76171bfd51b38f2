package normalize

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/leofalp/sceneplan/core/scene"
	"github.com/leofalp/sceneplan/providers/observability"
	slogobs "github.com/leofalp/sceneplan/providers/observability/slog"
)

const threeScenesJSON = `{
	"scenes": [
		{"id": "scene_01", "title": "Setup", "durationSec": 3,
		 "actions": [{"kind": "dialogue", "description": "opening line"}],
		 "transition": {"kind": "fade", "durationSec": 1}},
		{"id": "scene_02", "title": "Confrontation", "durationSec": 3,
		 "actions": [{"kind": "movement", "description": "camera push-in"}]},
		{"id": "scene_03", "title": "Resolution", "durationSec": 3.5,
		 "actions": [{"kind": "effect", "description": "slow fade to black"}]}
	]
}`

func baseConstraints() scene.GenerationConstraints {
	return scene.GenerationConstraints{TotalDurationSec: 10, AspectRatio: "16:9", FPS: 30, Language: "en"}
}

// Scenario: trailing-comma JSON with 3 scenes summing to 9.5s against a 10s
// constraint rescales to exactly 10.
func TestNormalizeRescalesTrailingCommaPlan(t *testing.T) {
	raw := strings.Replace(threeScenesJSON, `"slow fade to black"}]}`, `"slow fade to black"},]},`, 1)

	plan, summary, err := Normalize(raw, baseConstraints(), "a short film")
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	if summary.ScenesCount != 3 {
		t.Errorf("ScenesCount = %d, want 3", summary.ScenesCount)
	}
	if got := plan.DurationTotal(); math.Abs(got-10) > 1e-6 {
		t.Errorf("DurationTotal() = %v, want 10 after rescale", got)
	}
	if math.Abs(plan.Meta.TotalDurationSec-10) > 1e-6 {
		t.Errorf("Meta.TotalDurationSec = %v, want 10", plan.Meta.TotalDurationSec)
	}
}

// Scenario: prose with an embedded single-quoted object whose only scene has
// no actions fails coercion citing the missing action list.
func TestNormalizeMissingActionsIsCoercionFailure(t *testing.T) {
	raw := "Of course! Here is a one-scene plan: " +
		"{'scenes': [{'id': 'scene_01', 'durationSec': 10}]} Enjoy!"

	_, _, err := Normalize(raw, baseConstraints(), "p")
	if !errors.Is(err, ErrCoercionFailed) {
		t.Fatalf("Normalize() = %v, want ErrCoercionFailed", err)
	}
	e := AsError(err)
	if e == nil || e.Path != "scenes[0].actions" {
		t.Errorf("Path = %v, want scenes[0].actions named", e)
	}
}

// Scenario: truncated JSON is repaired by the parser; the semantic defect the
// truncation left behind surfaces as a validation failure, not a parse error.
func TestNormalizeTruncatedInputFailsValidationNotParsing(t *testing.T) {
	raw := `{"scenes": [{"id": "scene_01", "durationSec": 0, "actions": [{"kind": "dialogue"`

	_, _, err := Normalize(raw, baseConstraints(), "p")
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("Normalize() = %v, want ErrValidationFailed", err)
	}
	e := AsError(err)
	if e == nil || len(e.Violations) == 0 {
		t.Fatalf("expected violations, got %v", err)
	}
	found := false
	for _, v := range e.Violations {
		if v.Path == "scenes[0].durationSec" && v.Rule == RuleDurationPositive {
			found = true
		}
	}
	if !found {
		t.Errorf("violations = %v, want the non-positive duration reported", e.Violations)
	}
}

// Scenario: two scenes sharing an id fail validation with the duplicate
// listed.
func TestNormalizeDuplicateSceneIDs(t *testing.T) {
	raw := `{"scenes": [
		{"id": "scene_01", "durationSec": 5, "actions": [{"kind": "video"}]},
		{"id": "scene_01", "durationSec": 5, "actions": [{"kind": "video"}]}
	]}`

	_, _, err := Normalize(raw, baseConstraints(), "p")
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("Normalize() = %v, want ErrValidationFailed", err)
	}
	e := AsError(err)
	found := false
	for _, v := range e.Violations {
		if v.Rule == RuleDuplicateSceneID {
			found = true
		}
	}
	if !found {
		t.Errorf("violations = %v, want the duplicate id listed", e.Violations)
	}
}

// Deterministic mode never silently rescales: an out-of-tolerance plan is a
// hard failure.
func TestNormalizeDeterministicStrictness(t *testing.T) {
	constraints := baseConstraints()
	constraints.TotalDurationSec = 30 // raw plan sums to 9.5
	constraints.Deterministic = true

	_, _, err := Normalize(threeScenesJSON, constraints, "p")
	if !errors.Is(err, ErrConstraintUnsatisfiable) {
		t.Fatalf("Normalize() = %v, want ErrConstraintUnsatisfiable", err)
	}
}

// Idempotence: strict JSON and the same JSON wrapped in prose and fences
// yield the same plan.
func TestNormalizeWrappingIsTransparent(t *testing.T) {
	wrapped := "Here's your storyboard!\n```json\n" + threeScenesJSON + "\n```\nLet me know."

	bare, _, err := Normalize(threeScenesJSON, baseConstraints(), "p")
	if err != nil {
		t.Fatalf("Normalize(bare) unexpected error: %v", err)
	}
	fenced, _, err := Normalize(wrapped, baseConstraints(), "p")
	if err != nil {
		t.Fatalf("Normalize(wrapped) unexpected error: %v", err)
	}
	if !reflect.DeepEqual(bare, fenced) {
		t.Errorf("wrapped input produced a different plan:\nbare:   %+v\nfenced: %+v", bare, fenced)
	}
}

// Round-trip: a normalized plan serialized back to JSON and normalized again
// is unchanged.
func TestNormalizeRoundTrip(t *testing.T) {
	first, _, err := Normalize(threeScenesJSON, baseConstraints(), "p")
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}

	encoded, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, _, err := Normalize(string(encoded), baseConstraints(), "p")
	if err != nil {
		t.Fatalf("Normalize(round-trip) unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("round-trip changed the plan:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

// Uniqueness and duration invariants hold on every successful output.
func TestNormalizeOutputInvariants(t *testing.T) {
	inputs := []string{
		threeScenesJSON,
		`{'scenes': [{'id': 'a', 'durationSec': '2', 'actions': {'kind': 'text'}}]}`,
		`{"scenes": [{"id": "x", "durationSec": 7, "actions": [{"kind": "video"}]},
		             {"id": "y", "durationSec": 2, "actions": [{"kind": "audio"}]}`,
	}

	for _, raw := range inputs {
		plan, _, err := Normalize(raw, baseConstraints(), "p")
		if err != nil {
			t.Fatalf("Normalize(%q) unexpected error: %v", raw[:20], err)
		}
		if math.Abs(plan.DurationTotal()-10) > 1.0 {
			t.Errorf("duration invariant broken: total %v vs requested 10", plan.DurationTotal())
		}
		seen := map[string]bool{}
		for _, sc := range plan.Scenes {
			if seen[sc.ID] {
				t.Errorf("uniqueness invariant broken: id %q repeats", sc.ID)
			}
			seen[sc.ID] = true
		}
	}
}

// Descriptive asset fields survive the whole pipeline inside Props.
func TestNormalizePreservesActionProps(t *testing.T) {
	raw := `{"scenes": [{"id": "s1", "durationSec": 10,
		"actions": [{"kind": "video", "src": "alley_night.mp4"}]}]}`

	plan, _, err := Normalize(raw, baseConstraints(), "p")
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	if got := plan.Scenes[0].Actions[0].Props["src"]; got != "alley_night.mp4" {
		t.Errorf("Props[src] = %v, want alley_night.mp4 passed through", got)
	}
}

func TestNormalizeNoJSONAtAll(t *testing.T) {
	_, _, err := Normalize("I'm sorry, I can't produce a storyboard for that.", baseConstraints(), "p")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("Normalize() = %v, want ErrExtractionFailed", err)
	}
}

func TestNormalizeRejectsBadConstraints(t *testing.T) {
	_, _, err := Normalize(threeScenesJSON, scene.GenerationConstraints{TotalDurationSec: -1}, "p")
	if !errors.Is(err, ErrConstraintUnsatisfiable) {
		t.Fatalf("Normalize() = %v, want ErrConstraintUnsatisfiable for invalid constraints", err)
	}
}

func TestNormalizeLenientIDsOption(t *testing.T) {
	raw := `{"scenes": [{"durationSec": 10, "actions": [{"kind": "video"}]}]}`

	if _, _, err := Normalize(raw, baseConstraints(), "p"); !errors.Is(err, ErrCoercionFailed) {
		t.Fatalf("strict mode should fail on the missing id, got %v", err)
	}

	plan, _, err := Normalize(raw, baseConstraints(), "p", WithLenientIDs())
	if err != nil {
		t.Fatalf("Normalize(lenient) unexpected error: %v", err)
	}
	if plan.Scenes[0].ID != "scene_1" {
		t.Errorf("ID = %q, want synthesized scene_1", plan.Scenes[0].ID)
	}
}

func TestNormalizeSummaryEchoesPrompt(t *testing.T) {
	prompt := "two robots argue about poetry"
	_, summary, err := Normalize(threeScenesJSON, baseConstraints(), prompt)
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	if summary.Prompt != prompt {
		t.Errorf("Prompt = %q, want echoed verbatim", summary.Prompt)
	}
	if summary.Notes != "Generated 3 scene(s) from prompt" {
		t.Errorf("Notes = %q", summary.Notes)
	}
}

// The returned plan must stay stable even if the caller mutates it and
// normalizes again: Builder hands out fresh copies.
func TestNormalizeReturnsIndependentPlans(t *testing.T) {
	first, _, err := Normalize(threeScenesJSON, baseConstraints(), "p")
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	second, _, err := Normalize(threeScenesJSON, baseConstraints(), "p")
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}

	first.Scenes[0].ID = "mutated"
	if second.Scenes[0].ID == "mutated" {
		t.Error("plans from separate runs share memory")
	}
}

func TestNormalizeWithObserver(t *testing.T) {
	obs := slogobs.New(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})))

	plan, _, err := Normalize(threeScenesJSON, baseConstraints(), "p", WithObserver(obs))
	if err != nil {
		t.Fatalf("Normalize() unexpected error with observer: %v", err)
	}
	if len(plan.Scenes) != 3 {
		t.Errorf("got %d scenes, want 3", len(plan.Scenes))
	}

	// Failures are also counted without panicking.
	if _, _, err := Normalize("no json", baseConstraints(), "p", WithObserver(obs)); !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("Normalize() = %v, want ErrExtractionFailed", err)
	}
}

// ctxCheckObserver wraps the slog observer to verify the pipeline records
// stage metrics against the span-carrying context.
type ctxCheckObserver struct {
	*slogobs.Observer
	spanSeen *bool
}

func (o ctxCheckObserver) Histogram(name string) observability.Histogram {
	return ctxCheckHistogram{inner: o.Observer.Histogram(name), spanSeen: o.spanSeen}
}

type ctxCheckHistogram struct {
	inner    observability.Histogram
	spanSeen *bool
}

func (h ctxCheckHistogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	if observability.SpanFromContext(ctx) != nil {
		*h.spanSeen = true
	}
	h.inner.Record(ctx, value, attrs...)
}

func TestNormalizeStageMetricsCarrySpanContext(t *testing.T) {
	seen := false
	obs := ctxCheckObserver{
		Observer: slogobs.New(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))),
		spanSeen: &seen,
	}

	if _, _, err := Normalize(threeScenesJSON, baseConstraints(), "p", WithObserver(obs)); err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	if !seen {
		t.Error("stage duration recorded without the stage span in context")
	}
}

func TestNormalizeConcurrentUse(t *testing.T) {
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, _, err := Normalize(threeScenesJSON, baseConstraints(), "p")
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent Normalize() error: %v", err)
		}
	}
}
