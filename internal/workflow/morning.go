package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"accountability_buddy/internal/goals"
	"accountability_buddy/internal/match"
	"accountability_buddy/internal/poll"
	"accountability_buddy/internal/store"
	"accountability_buddy/internal/vault"
)

// Morning places the goal-setting call, waits for its structured output, and
// journals the day's goals. Platform faults abort the run; "no result yet"
// and vault failures do not.
func (w *Workflow) Morning(ctx context.Context) error {
	if err := w.cfg.ValidateMorning(); err != nil {
		return err
	}
	run := &store.Run{Kind: store.KindMorning}

	if w.cfg.SkipOutboundCall {
		w.log.Info("outbound call skipped (SKIP_OUTBOUND_CALL)")
	} else {
		call, err := w.client.CreateCall(ctx, w.cfg.MorningAssistantID, w.cfg.PhoneNumberID, w.cfg.TargetNumber)
		if err != nil {
			return fmt.Errorf("create morning call: %w", err)
		}
		w.log.WithFields(logrus.Fields{
			"call_id": call.ID,
			"status":  call.Status,
			"number":  w.cfg.TargetNumber,
		}).Info("morning call initiated")
	}

	poller := &poll.Poller{
		Source:   w.client,
		Interval: w.cfg.PollInterval,
		Timeout:  w.cfg.PollTimeout,
		Log:      w.log,
	}
	query := match.Query{
		AssistantID:  w.cfg.MorningAssistantID,
		TargetNumber: w.cfg.TargetNumber,
		Reference:    w.cfg.MorningReference(time.Now()),
		Tolerance:    w.cfg.TimeTolerance,
	}
	found, outcome, err := poller.Wait(ctx, query)
	if err != nil {
		return err
	}
	if outcome == poll.TimedOut {
		w.log.Info("timed out waiting for morning structured output; will retry on next scheduled run")
		run.Outcome = store.OutcomeTimeout
		w.record(ctx, run)
		return nil
	}
	run.CallID = found.ID

	goalList := goals.Normalize(found.Artifact.StructuredOutputs)
	if len(goalList) == 0 {
		w.log.Info("structured outputs present but no goals parsed; vault sync skipped")
		run.Outcome = store.OutcomeNoOutput
		w.record(ctx, run)
		return nil
	}
	run.Goals = goalList

	callTime := callTimeOrNow(found)
	meta := vault.CallMeta{ID: found.ID, Status: found.Status}
	syncErr := w.withVault(ctx, func(ctx context.Context, v *vault.Vault) error {
		_, err := v.CreateMorningEntry(ctx, goalList, callTime, meta)
		return err
	})
	switch {
	case syncErr != nil:
		// A failed journal write never fails the run itself.
		w.log.WithError(syncErr).Error("morning vault sync failed")
		run.Outcome = store.OutcomeVaultFailed
	case w.cfg.VaultEnabled:
		run.Outcome = store.OutcomeSynced
	default:
		run.Outcome = store.OutcomeSkipped
	}

	w.record(ctx, run)
	w.notifySummary(ctx, fmt.Sprintf("Morning check-in %s: %d goal(s) set for %s",
		run.Outcome, len(goalList), callTime.Format("2006-01-02")))
	w.logMetrics()
	return nil
}
