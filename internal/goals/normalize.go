// Package goals reduces the platform's loosely-shaped structured outputs to a
// clean domain model: an ordered goal list, per-goal completion flags, and an
// optional reflection.
package goals

import (
	"strings"

	"accountability_buddy/internal/vapi"
)

// Normalize extracts a flat, deduplicated goal list from a structured-output
// payload. Mappings recurse in key order, sequence elements become one goal
// each, and strings split into lines. The first occurrence of a goal wins its
// position; an empty payload yields an empty list.
func Normalize(outputs vapi.Outputs) []string {
	var result []string
	seen := make(map[string]struct{})

	appendGoal := func(raw string) {
		goal := CleanGoal(raw)
		if goal == "" {
			return
		}
		if _, dup := seen[goal]; dup {
			return
		}
		seen[goal] = struct{}{}
		result = append(result, goal)
	}

	var walk func(v vapi.Value)
	walk = func(v vapi.Value) {
		switch v.Kind {
		case vapi.KindMapping:
			for _, e := range v.Entries {
				walk(e.Value)
			}
		case vapi.KindSequence:
			for _, item := range v.Items {
				if text, ok := item.Text(); ok {
					appendGoal(text)
					continue
				}
				walk(item)
			}
		case vapi.KindString:
			for _, line := range strings.Split(v.Str, "\n") {
				appendGoal(line)
			}
		}
	}
	for _, e := range outputs.Entries {
		walk(e.Value)
	}
	return result
}

// CleanGoal strips list decoration from one raw line: a leading "1." / "1)"
// numbering token, or a "[ ]" / "[x]" checkbox marker. Whitespace-only input
// cleans to the empty string.
func CleanGoal(line string) string {
	s := strings.TrimSpace(line)
	if s == "" {
		return ""
	}
	if s[0] >= '0' && s[0] <= '9' {
		if idx := strings.IndexAny(s, " \t"); idx > 0 {
			token := s[:idx]
			trimmed := strings.TrimRight(token, ").")
			// Bare digits without a "." or ")" separator are content, not
			// numbering: "2025 planning" keeps its year.
			if trimmed != token && trimmed != "" && isDigits(trimmed) {
				return strings.TrimSpace(s[idx+1:])
			}
		}
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "[ ]") || strings.HasPrefix(lower, "[x]") {
		return strings.TrimSpace(s[3:])
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ResultText concatenates the free-text segments of a payload: mapping
// "result" fields and bare string values, in payload order. Used to embed the
// morning goals verbatim into the evening prompt.
func ResultText(outputs vapi.Outputs) string {
	var segments []string
	for _, e := range outputs.Entries {
		switch e.Value.Kind {
		case vapi.KindMapping:
			if result, ok := e.Value.Lookup("result"); ok && result.Kind == vapi.KindString && result.Str != "" {
				segments = append(segments, result.Str)
			}
		case vapi.KindString:
			if e.Value.Str != "" {
				segments = append(segments, e.Value.Str)
			}
		}
	}
	return strings.TrimSpace(strings.Join(segments, "\n"))
}
