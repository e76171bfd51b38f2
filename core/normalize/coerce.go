package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leofalp/sceneplan/core/scene"
)

// Key aliases recognized by the coercer, one table per object context.
// Matching is case-insensitive and blind to underscores, hyphens and spaces,
// so "scene_id", "SceneID" and "sceneid" all resolve the same way.
var (
	planAliases = map[string]string{
		"scenes": "scenes", "scene": "scenes", "sceneitems": "scenes",
		"scenelist": "scenes", "shots": "scenes", "segments": "scenes",
	}
	sceneAliases = map[string]string{
		"id": "id", "sceneid": "id",
		"title": "title", "name": "title", "heading": "title",
		"durationsec": "durationSec", "duration": "durationSec",
		"durations": "durationSec", "length": "durationSec",
		"lengthsec": "durationSec", "seconds": "durationSec",
		"actions": "actions", "action": "actions", "assets": "actions",
		"asset": "actions", "events": "actions", "event": "actions",
		"transition": "transition", "transitions": "transition",
	}
	actionAliases = map[string]string{
		"id": "id", "actionid": "id",
		"kind": "kind", "type": "kind",
		"description": "description", "desc": "description",
		"offsetsec": "offsetSec", "offset": "offsetSec",
		"startsec": "offsetSec", "start": "offsetSec",
		"durationsec": "durationSec", "duration": "durationSec",
		"length": "durationSec",
		"props": "props", "properties": "props", "attrs": "props",
	}
	transitionAliases = map[string]string{
		"kind": "kind", "type": "kind", "name": "kind",
		"durationsec": "durationSec", "duration": "durationSec",
		"length": "durationSec",
	}
)

// actionKindAliases maps loose kind spellings onto canonical enum values.
// "music" comes from upstream generators that label background tracks that
// way.
var actionKindAliases = map[string]scene.ActionKind{
	"music": scene.ActionAudio,
	"sound": scene.ActionAudio,
	"voice": scene.ActionDialogue,
	"caption": scene.ActionText,
	"captions": scene.ActionText,
}

// normalizeKey collapses a raw object key to its alias-table form.
func normalizeKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for i := 0; i < len(k); i++ {
		c := k[i]
		switch {
		case c == '_' || c == '-' || c == ' ':
			// separator, drop it
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// resolveKeys folds a raw object's keys through an alias table. On a
// collision (two raw keys mapping to the same canonical field) the first
// occurrence wins.
func resolveKeys(raw map[string]any, aliases map[string]string) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		canonical, ok := aliases[normalizeKey(k)]
		if !ok {
			continue // unrecognized key, ignored
		}
		if _, exists := out[canonical]; !exists {
			out[canonical] = v
		}
	}
	return out
}

// looseFloat narrows a loosely-typed value to float64, accepting stringified
// numbers like "3.5".
func looseFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// looseString narrows a loosely-typed value to string, accepting numbers.
func looseString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	}
	return "", false
}

// looseList narrows a loosely-typed value to a slice, wrapping a lone object
// into a one-element sequence. This reconciles singular/plural field-name
// mismatches where the generator emitted a single item instead of a list.
func looseList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case map[string]any:
		return []any{l}, true
	case nil:
		return nil, true
	}
	return nil, false
}

// coercer carries the per-request coercion mode.
type coercer struct {
	lenientIDs bool
}

// coercePlan maps the loosely-typed parse tree onto the canonical scene
// schema. It fails immediately on the first missing required field or
// unconvertible value, naming the field and its location; semantic rules
// (ranges, enums, uniqueness) are left to validation.
func (c coercer) coercePlan(tree any) (*scene.ScenePlan, error) {
	root, ok := tree.(map[string]any)
	if !ok {
		return nil, errorf(KindCoercionFailed, "", "top-level JSON value is %T, expected an object", tree)
	}
	fields := resolveKeys(root, planAliases)

	rawScenes, ok := fields["scenes"]
	if !ok {
		return nil, errorf(KindCoercionFailed, "scenes", "required field is missing")
	}
	list, ok := looseList(rawScenes)
	if !ok {
		return nil, errorf(KindCoercionFailed, "scenes", "expected a list of scenes, got %T", rawScenes)
	}
	if len(list) == 0 {
		return nil, errorf(KindCoercionFailed, "scenes", "a scene plan requires at least one scene")
	}

	plan := &scene.ScenePlan{Scenes: make([]scene.Scene, 0, len(list))}
	for i, item := range list {
		sc, err := c.coerceScene(item, i)
		if err != nil {
			return nil, err
		}
		plan.Scenes = append(plan.Scenes, sc)
	}
	return plan, nil
}

func (c coercer) coerceScene(item any, index int) (scene.Scene, error) {
	path := fmt.Sprintf("scenes[%d]", index)
	raw, ok := item.(map[string]any)
	if !ok {
		return scene.Scene{}, errorf(KindCoercionFailed, path, "expected an object, got %T", item)
	}
	fields := resolveKeys(raw, sceneAliases)
	var sc scene.Scene

	if v, ok := fields["id"]; ok {
		id, ok := looseString(v)
		if !ok {
			return sc, errorf(KindCoercionFailed, path+".id", "expected a string, got %T", v)
		}
		sc.ID = strings.TrimSpace(id)
	}
	if sc.ID == "" {
		if !c.lenientIDs {
			return sc, errorf(KindCoercionFailed, path+".id", "required field is missing")
		}
		sc.ID = fmt.Sprintf("scene_%d", index+1)
	}

	if v, ok := fields["title"]; ok {
		if title, ok := looseString(v); ok {
			sc.Title = title
		}
	}
	if sc.Title == "" {
		sc.Title = fmt.Sprintf("Scene %d", index+1)
	}

	v, ok := fields["durationSec"]
	if !ok {
		return sc, errorf(KindCoercionFailed, path+".durationSec", "required field is missing")
	}
	dur, ok := looseFloat(v)
	if !ok {
		return sc, errorf(KindCoercionFailed, path+".durationSec", "cannot convert %v to a number", v)
	}
	sc.DurationSec = dur

	rawActions, ok := fields["actions"]
	if !ok {
		return sc, errorf(KindCoercionFailed, path+".actions", "required field is missing")
	}
	actionList, ok := looseList(rawActions)
	if !ok {
		return sc, errorf(KindCoercionFailed, path+".actions", "expected a list of actions, got %T", rawActions)
	}
	if len(actionList) == 0 {
		return sc, errorf(KindCoercionFailed, path+".actions", "a scene requires at least one action")
	}
	sc.Actions = make([]scene.Action, 0, len(actionList))
	for j, a := range actionList {
		action, err := c.coerceAction(a, sc, index, j)
		if err != nil {
			return sc, err
		}
		sc.Actions = append(sc.Actions, action)
	}

	if v, ok := fields["transition"]; ok && v != nil {
		tr, err := c.coerceTransition(v, path)
		if err != nil {
			return sc, err
		}
		sc.Transition = tr
	}
	return sc, nil
}

func (c coercer) coerceAction(item any, owner scene.Scene, sceneIdx, actionIdx int) (scene.Action, error) {
	path := fmt.Sprintf("scenes[%d].actions[%d]", sceneIdx, actionIdx)
	raw, ok := item.(map[string]any)
	if !ok {
		return scene.Action{}, errorf(KindCoercionFailed, path, "expected an object, got %T", item)
	}
	fields := resolveKeys(raw, actionAliases)
	var a scene.Action

	if v, ok := fields["id"]; ok {
		if id, ok := looseString(v); ok {
			a.ID = strings.TrimSpace(id)
		}
	}
	if a.ID == "" {
		a.ID = fmt.Sprintf("action-%d-%d", sceneIdx+1, actionIdx+1)
	}

	if v, ok := fields["kind"]; ok {
		k, ok := looseString(v)
		if !ok {
			return a, errorf(KindCoercionFailed, path+".kind", "expected a string, got %T", v)
		}
		a.Kind = canonicalActionKind(k)
	} else {
		a.Kind = scene.ActionVideo
	}

	if v, ok := fields["description"]; ok {
		if d, ok := looseString(v); ok {
			a.Description = d
		}
	}

	if v, ok := fields["offsetSec"]; ok {
		off, ok := looseFloat(v)
		if !ok {
			return a, errorf(KindCoercionFailed, path+".offsetSec", "cannot convert %v to a number", v)
		}
		a.OffsetSec = off
	}

	if v, ok := fields["durationSec"]; ok {
		dur, ok := looseFloat(v)
		if !ok {
			return a, errorf(KindCoercionFailed, path+".durationSec", "cannot convert %v to a number", v)
		}
		a.DurationSec = dur
	} else {
		// An action with no duration of its own spans its scene.
		a.DurationSec = owner.DurationSec
	}

	if v, ok := fields["props"]; ok {
		if props, ok := v.(map[string]any); ok {
			a.Props = props
		}
	}
	// Kind-specific descriptive fields (src, text, voice, volume, ...) are
	// not schema keys; they ride along in Props untouched. An explicit props
	// entry wins over a loose sibling of the same name.
	for k, v := range raw {
		if _, known := actionAliases[normalizeKey(k)]; known {
			continue
		}
		if a.Props == nil {
			a.Props = make(map[string]any)
		}
		if _, exists := a.Props[k]; !exists {
			a.Props[k] = v
		}
	}
	return a, nil
}

func (c coercer) coerceTransition(v any, scenePath string) (*scene.Transition, error) {
	path := scenePath + ".transition"
	// A transitions list collapses to its first entry; the schema models a
	// single handover per scene boundary.
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil, nil
		}
		v = list[0]
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, errorf(KindCoercionFailed, path, "expected an object, got %T", v)
	}
	fields := resolveKeys(raw, transitionAliases)
	tr := &scene.Transition{Kind: scene.TransitionCut}

	if kv, ok := fields["kind"]; ok {
		k, ok := looseString(kv)
		if !ok {
			return nil, errorf(KindCoercionFailed, path+".kind", "expected a string, got %T", kv)
		}
		tr.Kind = scene.TransitionKind(strings.ToLower(strings.TrimSpace(k)))
	}
	if dv, ok := fields["durationSec"]; ok {
		dur, ok := looseFloat(dv)
		if !ok {
			return nil, errorf(KindCoercionFailed, path+".durationSec", "cannot convert %v to a number", dv)
		}
		tr.DurationSec = dur
	}
	if tr.Kind == scene.TransitionNone {
		return nil, nil
	}
	return tr, nil
}

// canonicalActionKind lowercases k and resolves known aliases. Unknown kinds
// pass through untouched so validation can report them with the original
// value.
func canonicalActionKind(k string) scene.ActionKind {
	lowered := strings.ToLower(strings.TrimSpace(k))
	if canonical, ok := actionKindAliases[lowered]; ok {
		return canonical
	}
	return scene.ActionKind(lowered)
}
