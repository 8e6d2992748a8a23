package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := Run{
		Kind:           KindMorning,
		CallID:         "call_abc",
		Outcome:        OutcomeSynced,
		Goals:          []string{"Finish report", "Workout"},
		CompletionRate: 0,
	}
	if err := s.RecordRun(ctx, &run); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if run.ID == "" || run.CreatedAt.IsZero() {
		t.Fatalf("record must assign id and timestamp: %+v", run)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.ID != run.ID || got.Kind != KindMorning || got.CallID != "call_abc" || got.Outcome != OutcomeSynced {
		t.Fatalf("run fields lost: %+v", got)
	}
	if !reflect.DeepEqual(got.Goals, run.Goals) {
		t.Fatalf("expected goals %v, got %v", run.Goals, got.Goals)
	}
}

func TestListRunsNewestFirstWithLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := Run{
			Kind:      KindEvening,
			Outcome:   OutcomeTimeout,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.RecordRun(ctx, &run); err != nil {
			t.Fatalf("record run %d: %v", i, err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(runs))
	}
	if !runs[0].CreatedAt.After(runs[1].CreatedAt) {
		t.Fatalf("expected newest first, got %v then %v", runs[0].CreatedAt, runs[1].CreatedAt)
	}
}

func TestListRunsDefaultLimit(t *testing.T) {
	s := openTestStore(t)
	runs, err := s.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected empty history, got %d", len(runs))
	}
}

func TestRecordRunEmptyGoals(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	run := Run{Kind: KindMorning, Outcome: OutcomeNoOutput}
	if err := s.RecordRun(ctx, &run); err != nil {
		t.Fatalf("record run: %v", err)
	}
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || len(runs[0].Goals) != 0 {
		t.Fatalf("expected run with no goals, got %+v", runs)
	}
}
