package vapi

import (
	"encoding/json"
	"testing"
)

func TestValueDecodePreservesKeyOrder(t *testing.T) {
	raw := `{"zebra": 1, "apple": 2, "mango": {"inner_z": true, "inner_a": false}}`
	var v Value
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Kind != KindMapping {
		t.Fatalf("expected mapping, got %v", v.Kind)
	}
	keys := []string{v.Entries[0].Key, v.Entries[1].Key, v.Entries[2].Key}
	if keys[0] != "zebra" || keys[1] != "apple" || keys[2] != "mango" {
		t.Fatalf("key order lost: %v", keys)
	}
	nested := v.Entries[2].Value
	if nested.Entries[0].Key != "inner_z" || nested.Entries[1].Key != "inner_a" {
		t.Fatalf("nested key order lost: %+v", nested.Entries)
	}
}

func TestValueDecodeScalars(t *testing.T) {
	cases := []struct {
		raw  string
		kind Kind
	}{
		{`null`, KindNull},
		{`"hello"`, KindString},
		{`3.5`, KindNumber},
		{`true`, KindBool},
		{`[1, "two"]`, KindSequence},
	}
	for _, c := range cases {
		var v Value
		if err := json.Unmarshal([]byte(c.raw), &v); err != nil {
			t.Fatalf("decode %s: %v", c.raw, err)
		}
		if v.Kind != c.kind {
			t.Fatalf("decode %s: expected kind %v, got %v", c.raw, c.kind, v.Kind)
		}
	}
}

func TestOutputsDecodeNonObjectIsEmpty(t *testing.T) {
	for _, raw := range []string{`null`, `"text"`, `[1, 2]`, `42`} {
		var o Outputs
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		if !o.Empty() {
			t.Fatalf("decode %s: expected empty outputs, got %+v", raw, o)
		}
	}
}

func TestCallDecode(t *testing.T) {
	raw := `{
		"id": "call_abc",
		"status": "ended",
		"assistantId": "asst_1",
		"customer": {"number": "+15551234567"},
		"startedAt": "2025-06-01T08:00:00Z",
		"endedAt": "2025-06-01T08:05:00Z",
		"artifact": {"structuredOutputs": {"goals": {"result": "1. A\n2. B"}}}
	}`
	var c Call
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.ID != "call_abc" || c.Status != StatusEnded || c.AssistantID != "asst_1" {
		t.Fatalf("summary fields wrong: %+v", c.CallSummary)
	}
	if c.Customer == nil || c.Customer.Number != "+15551234567" {
		t.Fatalf("customer wrong: %+v", c.Customer)
	}
	if !c.HasStructuredOutput() {
		t.Fatalf("expected structured output present")
	}
	goalsVal := c.Artifact.StructuredOutputs.Entries[0]
	if goalsVal.Key != "goals" {
		t.Fatalf("unexpected output key %q", goalsVal.Key)
	}
	result, ok := goalsVal.Value.Lookup("result")
	if !ok || result.Str != "1. A\n2. B" {
		t.Fatalf("result lookup failed: %+v %v", result, ok)
	}
}

func TestHasStructuredOutput(t *testing.T) {
	var nilCall *Call
	if nilCall.HasStructuredOutput() {
		t.Fatalf("nil call must report no output")
	}
	c := &Call{}
	if c.HasStructuredOutput() {
		t.Fatalf("call without artifact must report no output")
	}
	c.Artifact = &Artifact{}
	if c.HasStructuredOutput() {
		t.Fatalf("empty outputs must report no output")
	}
}

func TestValueText(t *testing.T) {
	cases := []struct {
		v    Value
		want string
		ok   bool
	}{
		{Value{Kind: KindString, Str: "hi"}, "hi", true},
		{Value{Kind: KindNumber, Num: 2}, "2", true},
		{Value{Kind: KindBool, Bool: true}, "true", true},
		{Value{Kind: KindMapping}, "", false},
		{Value{Kind: KindSequence}, "", false},
		{Value{Kind: KindNull}, "", false},
	}
	for _, c := range cases {
		got, ok := c.v.Text()
		if got != c.want || ok != c.ok {
			t.Fatalf("Text() on kind %v: got %q %v, want %q %v", c.v.Kind, got, ok, c.want, c.ok)
		}
	}
}

func TestValueTruthy(t *testing.T) {
	truthy := []Value{
		{Kind: KindBool, Bool: true},
		{Kind: KindNumber, Num: 1},
		{Kind: KindString, Str: "yes"},
		{Kind: KindMapping, Entries: []Entry{{Key: "k"}}},
		{Kind: KindSequence, Items: []Value{{}}},
	}
	for _, v := range truthy {
		if !v.Truthy() {
			t.Fatalf("expected truthy for kind %v", v.Kind)
		}
	}
	falsy := []Value{
		{Kind: KindNull},
		{Kind: KindBool},
		{Kind: KindNumber},
		{Kind: KindString},
		{Kind: KindMapping},
		{Kind: KindSequence},
	}
	for _, v := range falsy {
		if v.Truthy() {
			t.Fatalf("expected falsy for kind %v", v.Kind)
		}
	}
}
