// Package match identifies "the one call that matters" among the platform's
// call history. There is no correlation id from call creation to retrieval;
// identity is a heuristic over callee number, assistant, terminal status, and
// a time window around the scheduled run.
package match

import (
	"context"
	"time"

	"accountability_buddy/internal/vapi"
)

// CallSource is the slice of the platform client the matcher needs.
type CallSource interface {
	ListCalls(ctx context.Context) ([]vapi.CallSummary, error)
	GetCall(ctx context.Context, id string) (*vapi.Call, error)
}

// Query describes the call being hunted. A zero Reference disables the time
// window and matches on identity alone.
type Query struct {
	AssistantID  string
	TargetNumber string
	Reference    time.Time
	Tolerance    time.Duration
}

// ParseTimestamp parses an ISO-8601 platform timestamp. Naive timestamps are
// assumed UTC; anything unparseable reports false and the call is simply
// excluded from windowed matching.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsCandidate reports whether a summary matches on identity: exact callee
// number (callers pre-normalize), exact assistant, and ended status.
func IsCandidate(c vapi.CallSummary, assistantID, targetNumber string) bool {
	if c.Customer == nil || c.Customer.Number == "" {
		return false
	}
	if c.Customer.Number != targetNumber {
		return false
	}
	if c.AssistantID != assistantID {
		return false
	}
	return c.Status == vapi.StatusEnded
}

// IsCandidateInWindow additionally requires the call's end time (start time
// if end is absent) to fall on the same calendar date as ref, in ref's zone,
// within tolerance. A call with no usable timestamp never matches.
func IsCandidateInWindow(c vapi.CallSummary, assistantID, targetNumber string, ref time.Time, tolerance time.Duration) bool {
	if !IsCandidate(c, assistantID, targetNumber) {
		return false
	}
	callTime, ok := CallTime(c)
	if !ok {
		return false
	}
	local := callTime.In(ref.Location())
	y1, m1, d1 := local.Date()
	y2, m2, d2 := ref.Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		return false
	}
	delta := callTime.Sub(ref)
	if delta < 0 {
		delta = -delta
	}
	return delta <= tolerance
}

// CallTime resolves the call's effective timestamp: ended-at, falling back to
// started-at.
func CallTime(c vapi.CallSummary) (time.Time, bool) {
	if t, ok := ParseTimestamp(c.EndedAt); ok {
		return t, true
	}
	return ParseTimestamp(c.StartedAt)
}

// FindStructuredCall scans the current call list in delivery order (assumed
// most-recent-first; never re-sorted) and returns the first candidate whose
// full detail carries structured output. Detail is fetched lazily and never
// for a non-candidate. A nil call with nil error means nothing matched yet,
// which is a legitimate outcome, not a fault.
func FindStructuredCall(ctx context.Context, src CallSource, q Query) (*vapi.Call, error) {
	calls, err := src.ListCalls(ctx)
	if err != nil {
		return nil, err
	}
	for _, entry := range calls {
		if q.Reference.IsZero() {
			if !IsCandidate(entry, q.AssistantID, q.TargetNumber) {
				continue
			}
		} else if !IsCandidateInWindow(entry, q.AssistantID, q.TargetNumber, q.Reference, q.Tolerance) {
			continue
		}
		full, err := src.GetCall(ctx, entry.ID)
		if err != nil {
			return nil, err
		}
		if full.HasStructuredOutput() {
			return full, nil
		}
	}
	return nil, nil
}
