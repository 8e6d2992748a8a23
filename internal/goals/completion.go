package goals

import (
	"strings"

	"accountability_buddy/internal/vapi"
)

// DeriveCompletion scans an evening payload and decides which of the given
// goals were completed, plus a free-text reflection if the payload carries
// one. The returned flags are index-aligned with goals and always the same
// length, whatever shape the payload takes.
//
// Completion detection is best-effort by design: a goal counts as done only
// when a completeness signal is present — an explicit completed+goal pair, or
// a line carrying "complete" or "[x]" — and the signal text and the goal
// contain each other case-insensitively in either direction. False negatives
// are acceptable; the signal requirement keeps false positives rare.
func DeriveCompletion(outputs vapi.Outputs, goalList []string) ([]bool, string) {
	completed := make([]bool, len(goalList))
	reflection := ""

	mark := func(text string) {
		lowerText := strings.ToLower(strings.TrimSpace(text))
		if lowerText == "" {
			return
		}
		for i, goal := range goalList {
			lowerGoal := strings.ToLower(goal)
			if strings.Contains(lowerText, lowerGoal) || strings.Contains(lowerGoal, lowerText) {
				completed[i] = true
			}
		}
	}

	// First "reflection" line wins; text after the first colon if present.
	takeReflection := func(line string) {
		if reflection != "" {
			return
		}
		if idx := strings.Index(line, ":"); idx >= 0 {
			reflection = strings.TrimSpace(line[idx+1:])
		} else {
			reflection = strings.TrimSpace(line)
		}
	}

	scanText := func(text string) {
		for _, line := range strings.Split(text, "\n") {
			lower := strings.ToLower(line)
			if strings.Contains(lower, "reflection") && reflection == "" {
				takeReflection(line)
				continue
			}
			if strings.Contains(lower, "complete") || strings.Contains(lower, "[x]") {
				mark(line)
			}
		}
	}

	var walk func(v vapi.Value)
	walk = func(v vapi.Value) {
		switch v.Kind {
		case vapi.KindMapping:
			if goal, ok := v.Lookup("goal"); ok {
				if flag, ok := v.Lookup("completed"); ok && flag.Truthy() {
					if text, ok := goal.Text(); ok {
						mark(text)
					}
				}
			}
			if result, ok := v.Lookup("result"); ok && result.Kind == vapi.KindString {
				scanText(result.Str)
			}
			if refl, ok := v.Lookup("reflections"); ok && reflection == "" {
				if text, ok := refl.Text(); ok {
					reflection = strings.TrimSpace(text)
				}
			}
			for _, e := range v.Entries {
				switch e.Key {
				case "goal", "completed", "result", "reflections", "name":
					continue
				}
				walk(e.Value)
			}
		case vapi.KindSequence:
			for _, item := range v.Items {
				if item.Kind == vapi.KindString {
					scanText(item.Str)
					continue
				}
				walk(item)
			}
		case vapi.KindString:
			scanText(v.Str)
		}
	}
	for _, e := range outputs.Entries {
		walk(e.Value)
	}
	return completed, reflection
}
