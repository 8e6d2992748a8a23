// Package poll retries the call matcher on a fixed cadence until the finished
// call shows up, the timeout elapses, or the caller cancels.
package poll

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"accountability_buddy/internal/match"
	"accountability_buddy/internal/metrics"
	"accountability_buddy/internal/vapi"
)

// Outcome is the poller's terminal state.
type Outcome int

const (
	Found Outcome = iota + 1
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Poller waits for a matching call with structured output. Each tick is a
// full re-scan of the call list; no cursor state is kept between ticks, which
// trades API traffic for robustness against late-appearing or out-of-order
// entries.
type Poller struct {
	Source   match.CallSource
	Interval time.Duration // floor 1s
	Timeout  time.Duration // 0 means poll forever
	Log      *logrus.Logger
}

// Wait polls until a match appears or the deadline passes. The deadline is
// measured against the monotonic clock, and each sleep is capped at the time
// remaining so a short timeout never waits out a long interval. Context
// cancellation aborts mid-sleep.
func (p *Poller) Wait(ctx context.Context, q match.Query) (*vapi.Call, Outcome, error) {
	interval := p.Interval
	if interval < time.Second {
		interval = time.Second
	}
	if q.Reference.IsZero() {
		q.Reference = time.Now().UTC()
	}
	var deadline time.Time
	if p.Timeout > 0 {
		deadline = time.Now().Add(p.Timeout)
	}

	attempt := 0
	for {
		attempt++
		metrics.IncPollAttempt()
		if p.Log != nil {
			p.Log.WithFields(logrus.Fields{
				"attempt":   attempt,
				"assistant": q.AssistantID,
				"number":    q.TargetNumber,
			}).Debug("polling for structured output")
		}

		call, err := match.FindStructuredCall(ctx, p.Source, q)
		if err != nil {
			return nil, 0, err
		}
		if call != nil {
			if p.Log != nil {
				p.Log.WithFields(logrus.Fields{"call_id": call.ID, "attempt": attempt}).Info("structured output found")
			}
			return call, Found, nil
		}

		wait := interval
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return nil, TimedOut, nil
			}
			if remaining < wait {
				wait = remaining
			}
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, 0, ctx.Err()
		case <-timer.C:
		}
	}
}
