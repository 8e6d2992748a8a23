package goals

import (
	"testing"

	"accountability_buddy/internal/vapi"
)

func TestDeriveCompletionExplicitPair(t *testing.T) {
	out := decodeOutputs(t, `{"summary": {"goal": "Finish report", "completed": true}}`)
	flags, _ := DeriveCompletion(out, []string{"Finish report", "Workout"})
	if len(flags) != 2 {
		t.Fatalf("expected 2 flags, got %d", len(flags))
	}
	if !flags[0] || flags[1] {
		t.Fatalf("expected [true false], got %v", flags)
	}
}

func TestDeriveCompletionExplicitPairFalse(t *testing.T) {
	out := decodeOutputs(t, `{"summary": {"goal": "Finish report", "completed": false}}`)
	flags, _ := DeriveCompletion(out, []string{"Finish report"})
	if flags[0] {
		t.Fatalf("completed=false must not mark the goal")
	}
}

func TestDeriveCompletionResultLines(t *testing.T) {
	out := decodeOutputs(t, `{"review": {"result": "Finish report - complete\nWorkout skipped"}}`)
	flags, _ := DeriveCompletion(out, []string{"Finish report", "Workout"})
	if !flags[0] {
		t.Fatalf("line with 'complete' containing the goal should mark it")
	}
	if flags[1] {
		t.Fatalf("line without a completeness signal must not mark the goal")
	}
}

func TestDeriveCompletionCheckboxMarker(t *testing.T) {
	out := decodeOutputs(t, `{"notes": "[x] Workout\n[ ] Finish report"}`)
	flags, _ := DeriveCompletion(out, []string{"Finish report", "Workout"})
	if flags[0] {
		t.Fatalf("unchecked goal must stay incomplete")
	}
	if !flags[1] {
		t.Fatalf("[x] line should mark the goal")
	}
}

func TestDeriveCompletionContainmentBothDirections(t *testing.T) {
	// Signal text shorter than the goal: goal contains text.
	out := decodeOutputs(t, `{"s": {"goal": "report", "completed": true}}`)
	flags, _ := DeriveCompletion(out, []string{"Finish the quarterly report"})
	if !flags[0] {
		t.Fatalf("goal containing the signal text should be marked")
	}
}

func TestDeriveCompletionFlagsLengthAlwaysMatchesGoals(t *testing.T) {
	goalList := []string{"A", "B", "C"}
	payloads := []string{
		`{}`,
		`{"x": 42}`,
		`{"x": [1, 2, {"completed": true}]}`,
		`{"x": {"deep": {"deeper": ["complete everything"]}}}`,
	}
	for _, raw := range payloads {
		out := decodeOutputs(t, raw)
		flags, _ := DeriveCompletion(out, goalList)
		if len(flags) != len(goalList) {
			t.Fatalf("payload %s: expected %d flags, got %d", raw, len(goalList), len(flags))
		}
	}
	flags, _ := DeriveCompletion(vapi.Outputs{}, nil)
	if len(flags) != 0 {
		t.Fatalf("expected no flags for no goals")
	}
}

func TestDeriveCompletionReflectionColonSplit(t *testing.T) {
	out := decodeOutputs(t, `{"notes": "Reflection: felt focused today"}`)
	_, reflection := DeriveCompletion(out, nil)
	if reflection != "felt focused today" {
		t.Fatalf("expected text after colon, got %q", reflection)
	}
}

func TestDeriveCompletionReflectionWithoutColon(t *testing.T) {
	out := decodeOutputs(t, `{"notes": "some reflection about the day"}`)
	_, reflection := DeriveCompletion(out, nil)
	if reflection != "some reflection about the day" {
		t.Fatalf("expected whole line, got %q", reflection)
	}
}

func TestDeriveCompletionFirstReflectionWins(t *testing.T) {
	out := decodeOutputs(t, `{"a": "Reflection: first", "b": "Reflection: second"}`)
	_, reflection := DeriveCompletion(out, nil)
	if reflection != "first" {
		t.Fatalf("expected first reflection kept, got %q", reflection)
	}
}

func TestDeriveCompletionReflectionsField(t *testing.T) {
	out := decodeOutputs(t, `{"items": [{"goal": "Workout", "completed": true, "reflections": "good session"}]}`)
	flags, reflection := DeriveCompletion(out, []string{"Workout"})
	if !flags[0] {
		t.Fatalf("expected goal marked complete")
	}
	if reflection != "good session" {
		t.Fatalf("expected reflections field captured, got %q", reflection)
	}
}

func TestDeriveCompletionSequenceOfStrings(t *testing.T) {
	out := decodeOutputs(t, `{"items": ["Workout - complete", "Reflection: tiring but good"]}`)
	flags, reflection := DeriveCompletion(out, []string{"Workout", "Read"})
	if !flags[0] || flags[1] {
		t.Fatalf("expected [true false], got %v", flags)
	}
	if reflection != "tiring but good" {
		t.Fatalf("unexpected reflection %q", reflection)
	}
}
