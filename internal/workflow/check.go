package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"accountability_buddy/internal/goals"
	"accountability_buddy/internal/match"
	"accountability_buddy/internal/store"
	"accountability_buddy/internal/vapi"
	"accountability_buddy/internal/vault"
)

// Check prints the most recent structured output for an assistant without
// touching the vault or placing any call. Defaults to the morning assistant.
func (w *Workflow) Check(ctx context.Context, assistantID string) error {
	if assistantID == "" {
		assistantID = w.cfg.MorningAssistantID
	}
	call, err := match.FindStructuredCall(ctx, w.client, match.Query{
		AssistantID:  assistantID,
		TargetNumber: w.cfg.TargetNumber,
	})
	if err != nil {
		return err
	}
	if call == nil {
		fmt.Printf("No completed calls with structured outputs found for %s\n", w.cfg.TargetNumber)
		return nil
	}

	fmt.Println("Last successful call with structured outputs:")
	fmt.Printf("Call ID: %s\n", call.ID)
	fmt.Printf("Call ended at: %s\n", call.EndedAt)
	fmt.Println(strings.Repeat("-", 50))
	for _, entry := range call.Artifact.StructuredOutputs.Entries {
		if entry.Value.Kind == vapi.KindMapping {
			name := "N/A"
			if v, ok := entry.Value.Lookup("name"); ok {
				if text, ok := v.Text(); ok {
					name = text
				}
			}
			result := "N/A"
			if v, ok := entry.Value.Lookup("result"); ok {
				if text, ok := v.Text(); ok {
					result = text
				}
			}
			fmt.Printf("\nName: %s\nResult:\n%s\n", name, result)
			continue
		}
		if text, ok := entry.Value.Text(); ok {
			fmt.Printf("%s: %s\n", entry.Key, text)
		}
	}

	if goalList := goals.Normalize(call.Artifact.StructuredOutputs); len(goalList) > 0 {
		fmt.Println(strings.Repeat("-", 50))
		fmt.Println("Parsed goals:")
		for i, goal := range goalList {
			fmt.Printf("%d. %s\n", i+1, goal)
		}
	}
	return nil
}

// VaultCheck writes a sample morning entry and evening update to verify the
// vault integration end to end: clone, both renders, commit, push.
func (w *Workflow) VaultCheck(ctx context.Context) error {
	if !w.cfg.VaultEnabled {
		return fmt.Errorf("vault sync is disabled; set OBSIDIAN_ENABLED=true")
	}
	sampleGoals := []string{
		"Draft test summary for vault sync",
		"Review Git history for automated entries",
		"Plan improvements for accountability workflow",
	}
	completed := []bool{true, false, true}
	reflection := "Test run to confirm Git-based vault updates. Review the commit history to verify both entries."
	now := time.Now()

	err := w.withVault(ctx, func(ctx context.Context, v *vault.Vault) error {
		meta := vault.CallMeta{ID: fmt.Sprintf("test-morning-%s", now.Format("20060102150405")), Status: vapi.StatusEnded}
		if _, err := v.CreateMorningEntry(ctx, sampleGoals, now, meta); err != nil {
			return err
		}
		_, err := v.UpdateEveningEntry(ctx, sampleGoals, completed, now, reflection)
		return err
	})
	if err != nil {
		return err
	}
	w.record(ctx, &store.Run{Kind: store.KindCheck, Outcome: store.OutcomeSynced, Goals: sampleGoals})
	w.log.Info("vault check completed")
	return nil
}
