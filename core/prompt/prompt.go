package prompt

import (
	"strings"

	"github.com/leofalp/sceneplan/core/scene"
	"github.com/leofalp/sceneplan/internal/jsonschema"
	"github.com/leofalp/sceneplan/internal/utils"
)

// planSchema is generated once; the scene types are fixed at compile time.
var planSchema = jsonschema.GenerateJSONSchema[scene.ScenePlan]()

// Schema returns the JSON schema describing a scene plan, as embedded in the
// system prompt. Useful for callers that pass schemas to providers with
// native structured-output support instead.
func Schema() *jsonschema.Schema {
	return planSchema
}

// BuildSystemPrompt assembles the scene-builder system prompt for the given
// constraints. The wording asks for bare JSON with no markdown or
// commentary; the pipeline tolerates violations of that ask, but every
// repair is a chance to lose fidelity, so the prompt pushes hard for strict
// output.
func BuildSystemPrompt(constraints scene.GenerationConstraints) string {
	var b strings.Builder
	b.WriteString("You are a cinematic scene builder.\n")
	b.WriteString("From the user's idea, produce a storyboard for a short video as structured JSON: ")
	b.WriteString("ordered scenes with titles, timed actions (dialogue, camera movement, effects, overlays) and transitions between scenes.\n\n")

	b.WriteString("Output only valid JSON. No markdown fences, no commentary, no text outside the JSON object.\n\n")

	b.WriteString("The JSON must conform to this schema:\n")
	b.WriteString(planSchema.String())
	b.WriteString("\n\n")

	b.WriteString("Guidelines:\n")
	b.WriteString("- Every scene needs a unique id and a meaningful title.\n")
	b.WriteString("- Each scene holds at least one action; offsets are relative to the scene start.\n")
	b.WriteString("- Use transitions where they feel natural; their duration may not exceed either adjacent scene.\n")
	b.WriteString("- Scene durations must sum to the requested total duration.\n\n")

	b.WriteString("Constraints for this request:\n")
	b.WriteString(utils.JSONToString(constraints, true))
	b.WriteString("\n")
	return b.String()
}

// BuildUserPrompt pairs the raw user idea with a terse restatement of the
// hard numeric constraints, which models follow more reliably when they
// appear near the end of the context.
func BuildUserPrompt(idea string, constraints scene.GenerationConstraints) string {
	var b strings.Builder
	b.WriteString(idea)
	b.WriteString("\n\nTotal duration: ")
	b.WriteString(utils.JSONToString(constraints.TotalDurationSec))
	b.WriteString(" seconds.")
	if constraints.Language != "" {
		b.WriteString(" Language: " + constraints.Language + ".")
	}
	return b.String()
}
