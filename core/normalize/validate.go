package normalize

import (
	"fmt"

	"github.com/leofalp/sceneplan/core/scene"
)

// Rule names reported in violations. Stable identifiers, safe for callers to
// match on.
const (
	RuleDurationPositive   = "durationSec must be positive"
	RuleOffsetInRange      = "offsetSec must lie within [0, scene duration]"
	RuleActionDuration     = "action durationSec must not be negative"
	RuleUnknownActionKind  = "kind is not a recognized action kind"
	RuleUnknownTransition  = "kind is not a recognized transition kind"
	RuleTransitionNegative = "transition durationSec must not be negative"
	RuleTransitionTooLong  = "transition durationSec exceeds the shorter adjacent scene"
	RuleDuplicateSceneID   = "scene id is not unique within the plan"
)

// validatePlan walks the coerced plan and collects every rule violation
// before reporting, so the caller sees the complete defect list in one pass.
// A nil return means the plan is structurally sound.
func validatePlan(p *scene.ScenePlan) []Violation {
	var violations []Violation
	add := func(path, rule string, value any) {
		violations = append(violations, Violation{Path: path, Rule: rule, Value: value})
	}

	seenIDs := make(map[string]int, len(p.Scenes))
	for i, sc := range p.Scenes {
		path := fmt.Sprintf("scenes[%d]", i)

		if prev, dup := seenIDs[sc.ID]; dup {
			add(path+".id", RuleDuplicateSceneID, fmt.Sprintf("%q also used by scenes[%d]", sc.ID, prev))
		} else {
			seenIDs[sc.ID] = i
		}

		if sc.DurationSec <= 0 {
			add(path+".durationSec", RuleDurationPositive, sc.DurationSec)
		}

		for j, a := range sc.Actions {
			apath := fmt.Sprintf("%s.actions[%d]", path, j)
			if !scene.ValidActionKind(a.Kind) {
				add(apath+".kind", RuleUnknownActionKind, string(a.Kind))
			}
			if a.OffsetSec < 0 || a.OffsetSec > sc.DurationSec {
				add(apath+".offsetSec", RuleOffsetInRange, a.OffsetSec)
			}
			if a.DurationSec < 0 {
				add(apath+".durationSec", RuleActionDuration, a.DurationSec)
			}
		}

		if tr := sc.Transition; tr != nil {
			tpath := path + ".transition"
			if !scene.ValidTransitionKind(tr.Kind) {
				add(tpath+".kind", RuleUnknownTransition, string(tr.Kind))
			}
			if tr.DurationSec < 0 {
				add(tpath+".durationSec", RuleTransitionNegative, tr.DurationSec)
			}
			// A transition overlaps both adjacent scenes, so it may not
			// outlast the shorter one. The last scene has no successor;
			// its own duration is the bound.
			limit := sc.DurationSec
			if i+1 < len(p.Scenes) && p.Scenes[i+1].DurationSec < limit {
				limit = p.Scenes[i+1].DurationSec
			}
			if tr.DurationSec > limit {
				add(tpath+".durationSec", RuleTransitionTooLong, tr.DurationSec)
			}
		}
	}
	return violations
}
