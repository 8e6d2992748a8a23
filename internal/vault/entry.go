package vault

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FrontMatter is the machine-readable header of an accountability entry.
// Values are JSON-encoded per line between --- delimiters so the file stays
// greppable while round-tripping cleanly.
type FrontMatter struct {
	Date              string
	MorningTime       string
	MorningCallID     string
	MorningCallStatus string
	EveningTime       string
	EveningCallID     string
	CompletionRate    int
	CompletedGoals    []string
}

func (fm FrontMatter) render() string {
	lines := []string{"---"}
	appendField := func(key string, value any) {
		encoded, _ := json.Marshal(value)
		lines = append(lines, fmt.Sprintf("%s: %s", key, encoded))
	}
	appendField("date", fm.Date)
	appendField("morning_time", fm.MorningTime)
	appendField("morning_call_id", fm.MorningCallID)
	appendField("morning_call_status", fm.MorningCallStatus)
	appendField("evening_time", fm.EveningTime)
	appendField("evening_call_id", fm.EveningCallID)
	appendField("completion_rate", fm.CompletionRate)
	completed := fm.CompletedGoals
	if completed == nil {
		completed = []string{}
	}
	appendField("completed_goals", completed)
	lines = append(lines, "---")
	return strings.Join(lines, "\n")
}

// parseFrontMatter reads the --- delimited header back into a FrontMatter.
// Files without a header parse as zero values; unknown keys are ignored.
func parseFrontMatter(content string) (FrontMatter, string) {
	var fm FrontMatter
	if !strings.HasPrefix(content, "---") {
		return fm, content
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return fm, content
	}
	for _, line := range strings.Split(strings.TrimSpace(parts[1]), "\n") {
		key, raw, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		raw = strings.TrimSpace(raw)
		switch key {
		case "date":
			_ = json.Unmarshal([]byte(raw), &fm.Date)
		case "morning_time":
			_ = json.Unmarshal([]byte(raw), &fm.MorningTime)
		case "morning_call_id":
			_ = json.Unmarshal([]byte(raw), &fm.MorningCallID)
		case "morning_call_status":
			_ = json.Unmarshal([]byte(raw), &fm.MorningCallStatus)
		case "evening_time":
			_ = json.Unmarshal([]byte(raw), &fm.EveningTime)
		case "evening_call_id":
			_ = json.Unmarshal([]byte(raw), &fm.EveningCallID)
		case "completion_rate":
			_ = json.Unmarshal([]byte(raw), &fm.CompletionRate)
		case "completed_goals":
			_ = json.Unmarshal([]byte(raw), &fm.CompletedGoals)
		}
	}
	return fm, parts[2]
}

// formatGoals renders the numbered checkbox list. completed may be shorter
// than goals; missing flags render unchecked.
func formatGoals(goals []string, completed []bool) string {
	if len(goals) == 0 {
		return "No goals recorded."
	}
	lines := make([]string, 0, len(goals))
	for i, goal := range goals {
		checkbox := "[ ]"
		if i < len(completed) && completed[i] {
			checkbox = "[x]"
		}
		lines = append(lines, fmt.Sprintf("%d. %s %s", i+1, checkbox, goal))
	}
	return strings.Join(lines, "\n")
}

func renderMorning(fm FrontMatter, goals []string) string {
	body := []string{
		fm.render(),
		"# Morning Accountability",
		"",
		"## Goals",
		formatGoals(goals, nil),
		"",
		"## Evening Review 🌙",
		"Evening Review 🌙 - *Pending...*",
		"",
	}
	return strings.TrimSpace(strings.Join(body, "\n")) + "\n"
}

func renderEvening(fm FrontMatter, goals []string, completed []bool, reflection string) string {
	var done, notDone []string
	for i, goal := range goals {
		if i < len(completed) && completed[i] {
			done = append(done, goal)
		} else {
			notDone = append(notDone, goal)
		}
	}

	body := []string{
		fm.render(),
		"# Morning Accountability",
		"",
		"## Goals",
		formatGoals(goals, completed),
		"",
		"## Evening Review 🌙",
		fmt.Sprintf("- Completion Rate: %d%%", fm.CompletionRate),
	}
	if len(done) > 0 {
		body = append(body, "- Completed:")
		for _, goal := range done {
			body = append(body, "  - ✅ "+goal)
		}
	}
	if len(notDone) > 0 {
		body = append(body, "- Not Completed:")
		for _, goal := range notDone {
			body = append(body, "  - ⚪️ "+goal)
		}
	}
	if reflection != "" {
		body = append(body, "", "### Reflections", strings.TrimSpace(reflection))
	}
	body = append(body, "")
	return strings.TrimSpace(strings.Join(body, "\n")) + "\n"
}
