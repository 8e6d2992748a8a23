package poll

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"accountability_buddy/internal/match"
	"accountability_buddy/internal/vapi"
)

const (
	testAssistant = "asst_morning"
	testNumber    = "+15551234567"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type scriptedSource struct {
	hitAfter  int // list calls before a match appears; negative means never
	listCount int
	call      *vapi.Call
}

func newScriptedSource(t *testing.T, hitAfter int) *scriptedSource {
	t.Helper()
	s := vapi.CallSummary{
		ID:          "ready",
		Status:      vapi.StatusEnded,
		AssistantID: testAssistant,
		Customer:    &vapi.Customer{Number: testNumber},
		EndedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	var out vapi.Outputs
	if err := json.Unmarshal([]byte(`{"result": "1. A"}`), &out); err != nil {
		t.Fatalf("decode outputs: %v", err)
	}
	return &scriptedSource{
		hitAfter: hitAfter,
		call:     &vapi.Call{CallSummary: s, Artifact: &vapi.Artifact{StructuredOutputs: out}},
	}
}

func (s *scriptedSource) ListCalls(ctx context.Context) ([]vapi.CallSummary, error) {
	s.listCount++
	if s.hitAfter < 0 || s.listCount <= s.hitAfter {
		return nil, nil
	}
	return []vapi.CallSummary{s.call.CallSummary}, nil
}

func (s *scriptedSource) GetCall(ctx context.Context, id string) (*vapi.Call, error) {
	return s.call, nil
}

func testQuery() match.Query {
	return match.Query{
		AssistantID:  testAssistant,
		TargetNumber: testNumber,
		Reference:    time.Now().UTC(),
		Tolerance:    2 * time.Hour,
	}
}

func TestWaitFindsImmediately(t *testing.T) {
	src := newScriptedSource(t, 0)
	p := &Poller{Source: src, Interval: time.Second, Timeout: 5 * time.Second, Log: quietLogger()}
	call, outcome, err := p.Wait(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != Found {
		t.Fatalf("expected Found, got %v", outcome)
	}
	if call == nil || call.ID != "ready" {
		t.Fatalf("unexpected call %+v", call)
	}
	if src.listCount != 1 {
		t.Fatalf("expected a single scan, got %d", src.listCount)
	}
}

func TestWaitRetriesUntilMatchAppears(t *testing.T) {
	src := newScriptedSource(t, 2)
	p := &Poller{Source: src, Interval: time.Second, Timeout: 30 * time.Second, Log: quietLogger()}
	call, outcome, err := p.Wait(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != Found || call == nil {
		t.Fatalf("expected Found, got %v", outcome)
	}
	if src.listCount != 3 {
		t.Fatalf("expected 3 scans, got %d", src.listCount)
	}
}

func TestWaitTimeoutDoesNotWaitFullInterval(t *testing.T) {
	src := newScriptedSource(t, -1)
	// Interval far longer than timeout: the sleep must be capped at the
	// remaining deadline, not the interval.
	p := &Poller{Source: src, Interval: time.Hour, Timeout: 150 * time.Millisecond, Log: quietLogger()}
	start := time.Now()
	call, outcome, err := p.Wait(context.Background(), testQuery())
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call != nil || outcome != TimedOut {
		t.Fatalf("expected TimedOut with no call, got %v %+v", outcome, call)
	}
	if elapsed > 5*time.Second {
		t.Fatalf("timeout took %v; must not wait out the interval", elapsed)
	}
}

func TestWaitCancellationAbortsMidSleep(t *testing.T) {
	src := newScriptedSource(t, -1)
	p := &Poller{Source: src, Interval: time.Hour, Timeout: 0, Log: quietLogger()}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	_, _, err := p.Wait(ctx, testQuery())
	if err == nil {
		t.Fatalf("expected context error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("cancellation took %v; must abort mid-sleep", elapsed)
	}
}

func TestWaitEnforcesMinimumInterval(t *testing.T) {
	src := newScriptedSource(t, -1)
	p := &Poller{Source: src, Interval: 0, Timeout: 100 * time.Millisecond, Log: quietLogger()}
	_, outcome, err := p.Wait(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != TimedOut {
		t.Fatalf("expected TimedOut, got %v", outcome)
	}
	// A zero interval is floored to one second, so only the initial scan and
	// the deadline re-check can have happened.
	if src.listCount > 2 {
		t.Fatalf("expected at most 2 scans with floored interval, got %d", src.listCount)
	}
}
