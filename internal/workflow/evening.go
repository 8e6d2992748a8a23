package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"accountability_buddy/internal/goals"
	"accountability_buddy/internal/match"
	"accountability_buddy/internal/poll"
	"accountability_buddy/internal/store"
	"accountability_buddy/internal/vault"
)

// Evening re-briefs the evening assistant with the morning goals, places the
// review call, waits for its structured output, and updates the day's journal
// entry with completion state and reflection.
func (w *Workflow) Evening(ctx context.Context) error {
	if err := w.cfg.ValidateEvening(); err != nil {
		return err
	}
	run := &store.Run{Kind: store.KindEvening}

	// The morning call is located by identity alone, not by window: the
	// evening run may fire many hours after the morning window closed.
	morningCall, err := match.FindStructuredCall(ctx, w.client, match.Query{
		AssistantID:  w.cfg.MorningAssistantID,
		TargetNumber: w.cfg.TargetNumber,
	})
	if err != nil {
		return err
	}
	if morningCall == nil {
		w.log.Info("no morning call with structured outputs found; nothing to review")
		run.Outcome = store.OutcomeSkipped
		w.record(ctx, run)
		return nil
	}

	morningOutputs := morningCall.Artifact.StructuredOutputs
	goalList := goals.Normalize(morningOutputs)
	goalsText := goals.ResultText(morningOutputs)
	w.log.WithFields(logrus.Fields{
		"morning_call_id": morningCall.ID,
		"goals":           len(goalList),
	}).Info("morning goals loaded")

	prompt := EveningPrompt(goalsText)
	if err := w.client.UpdateAssistantPrompt(ctx, w.cfg.EveningAssistantID, "openai", "gpt-4o", prompt); err != nil {
		return fmt.Errorf("update evening assistant: %w", err)
	}
	w.log.WithField("assistant", w.cfg.EveningAssistantID).Info("evening assistant re-briefed with morning goals")

	if w.cfg.SkipOutboundCall {
		w.log.Info("outbound call skipped (SKIP_OUTBOUND_CALL)")
	} else {
		call, err := w.client.CreateCall(ctx, w.cfg.EveningAssistantID, w.cfg.PhoneNumberID, w.cfg.TargetNumber)
		if err != nil {
			return fmt.Errorf("create evening call: %w", err)
		}
		w.log.WithFields(logrus.Fields{"call_id": call.ID, "status": call.Status}).Info("evening call initiated")
	}

	poller := &poll.Poller{
		Source:   w.client,
		Interval: w.cfg.PollInterval,
		Timeout:  w.cfg.PollTimeout,
		Log:      w.log,
	}
	query := match.Query{
		AssistantID:  w.cfg.EveningAssistantID,
		TargetNumber: w.cfg.TargetNumber,
		Reference:    time.Now(),
		Tolerance:    w.cfg.TimeTolerance,
	}
	eveningCall, outcome, err := poller.Wait(ctx, query)
	if err != nil {
		return err
	}
	if outcome == poll.TimedOut {
		w.log.Info("timed out waiting for evening structured output; will retry on next scheduled run")
		run.Outcome = store.OutcomeTimeout
		w.record(ctx, run)
		return nil
	}
	run.CallID = eveningCall.ID
	run.Goals = goalList

	completed, reflection := goals.DeriveCompletion(eveningCall.Artifact.StructuredOutputs, goalList)
	doneCount := 0
	for _, done := range completed {
		if done {
			doneCount++
		}
	}
	rate := 0
	if len(goalList) > 0 {
		rate = doneCount * 100 / len(goalList)
	}
	run.CompletionRate = rate
	run.Reflection = reflection

	callTime := callTimeOrNow(eveningCall)
	syncErr := w.withVault(ctx, func(ctx context.Context, v *vault.Vault) error {
		_, err := v.UpdateEveningEntry(ctx, goalList, completed, callTime, reflection)
		return err
	})
	switch {
	case errors.Is(syncErr, vault.ErrNoMorningEntry):
		w.log.Warn("no morning entry for today; evening review not journaled")
		run.Outcome = store.OutcomeNoOutput
	case syncErr != nil:
		w.log.WithError(syncErr).Error("evening vault sync failed")
		run.Outcome = store.OutcomeVaultFailed
	case w.cfg.VaultEnabled:
		run.Outcome = store.OutcomeSynced
	default:
		run.Outcome = store.OutcomeSkipped
	}

	w.record(ctx, run)
	w.notifySummary(ctx, fmt.Sprintf("Evening review %s: %d%% of %d goal(s) complete",
		run.Outcome, rate, len(goalList)))
	w.logMetrics()
	return nil
}
