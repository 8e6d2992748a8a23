// Package vault persists accountability entries into an Obsidian-style note
// vault: one dated note per day with JSON front-matter, created at morning
// sync and updated in place at evening sync.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNoMorningEntry reports an evening update with no morning entry to update.
// A legitimate outcome, not a fault; callers log and move on.
var ErrNoMorningEntry = errors.New("vault: no morning entry for date")

const (
	accountabilityDir = "Accountability/Daily Logs"
	dailyNotesDir     = "Daily Notes"
)

// CallMeta is the slice of call metadata recorded in the entry front-matter.
type CallMeta struct {
	ID     string
	Status string
}

// Vault writes entries under a vault root. When git is non-nil every write is
// committed and pushed.
type Vault struct {
	root string
	git  *GitSync
	log  *logrus.Logger
}

func New(root string, git *GitSync, log *logrus.Logger) *Vault {
	return &Vault{root: root, git: git, log: log}
}

func (v *Vault) entryPath(date string) string {
	return filepath.Join(v.root, filepath.FromSlash(accountabilityDir), date+"-accountability.md")
}

// CreateMorningEntry writes the day's entry with the morning goals, all
// unchecked. Idempotent per date: a pre-existing entry for the same date is
// overwritten.
func (v *Vault) CreateMorningEntry(ctx context.Context, goals []string, callTime time.Time, meta CallMeta) (string, error) {
	date := callTime.Format("2006-01-02")
	path := v.entryPath(date)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	fm := FrontMatter{
		Date:              date,
		MorningTime:       callTime.Format(time.RFC3339),
		MorningCallID:     meta.ID,
		MorningCallStatus: meta.Status,
	}
	if err := os.WriteFile(path, []byte(renderMorning(fm, goals)), 0o644); err != nil {
		return "", err
	}
	v.log.WithFields(logrus.Fields{"path": path, "goals": len(goals)}).Info("morning entry created")

	if err := v.updateDailyNote(date, callTime); err != nil {
		return "", err
	}

	if v.git != nil {
		if _, err := v.git.CommitAndPush(ctx, fmt.Sprintf("Morning accountability check-in - %s", date)); err != nil {
			return "", err
		}
	}
	return path, nil
}

// UpdateEveningEntry rewrites the day's entry with completion state, the
// recomputed completion rate, and an optional reflection. Returns
// ErrNoMorningEntry, creating nothing, when the morning entry is missing.
func (v *Vault) UpdateEveningEntry(ctx context.Context, goals []string, completed []bool, callTime time.Time, reflection string) (string, error) {
	if len(goals) == 0 {
		v.log.Info("no goals provided for evening update; skipping")
		return "", nil
	}
	date := callTime.Format("2006-01-02")
	path := v.entryPath(date)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoMorningEntry
		}
		return "", err
	}

	fm, _ := parseFrontMatter(string(raw))
	fm.EveningTime = callTime.Format(time.RFC3339)
	fm.CompletedGoals = nil
	doneCount := 0
	for i, goal := range goals {
		if i < len(completed) && completed[i] {
			fm.CompletedGoals = append(fm.CompletedGoals, goal)
			doneCount++
		}
	}
	fm.CompletionRate = doneCount * 100 / len(goals)

	if err := os.WriteFile(path, []byte(renderEvening(fm, goals, completed, reflection)), 0o644); err != nil {
		return "", err
	}
	v.log.WithFields(logrus.Fields{"path": path, "completion_rate": fm.CompletionRate}).Info("evening entry updated")

	if v.git != nil {
		message := fmt.Sprintf("Evening accountability review - %s (%d%% complete)", date, fm.CompletionRate)
		if _, err := v.git.CommitAndPush(ctx, message); err != nil {
			return "", err
		}
	}
	return path, nil
}

// updateDailyNote makes sure the date's daily note embeds the accountability
// entry: under an existing "## Accountability" header when there is one,
// appended otherwise, or in a fresh note.
func (v *Vault) updateDailyNote(date string, callTime time.Time) error {
	notePath := filepath.Join(v.root, dailyNotesDir, date+".md")
	if err := os.MkdirAll(filepath.Dir(notePath), 0o755); err != nil {
		return err
	}
	embed := fmt.Sprintf("![[%s-accountability]]", date)

	raw, err := os.ReadFile(notePath)
	if os.IsNotExist(err) {
		title := callTime.Format("Monday, January 02, 2006")
		content := strings.Join([]string{"# " + title, "", "## Accountability", embed, ""}, "\n")
		v.log.WithField("path", notePath).Info("daily note created")
		return os.WriteFile(notePath, []byte(content), 0o644)
	}
	if err != nil {
		return err
	}

	content := string(raw)
	if strings.Contains(content, embed) {
		return nil
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.EqualFold(strings.TrimSpace(line), "## accountability") {
			rest := append([]string{"", embed}, lines[i+1:]...)
			lines = append(lines[:i+1:i+1], rest...)
			v.log.WithField("path", notePath).Info("daily note updated")
			return os.WriteFile(notePath, []byte(strings.TrimRight(strings.Join(lines, "\n"), "\n")+"\n"), 0o644)
		}
	}
	lines = append(lines, "", "## Accountability", embed)
	v.log.WithField("path", notePath).Info("daily note updated")
	return os.WriteFile(notePath, []byte(strings.TrimRight(strings.Join(lines, "\n"), "\n")+"\n"), 0o644)
}
