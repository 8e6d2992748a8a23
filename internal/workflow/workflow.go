// Package workflow orchestrates the scheduled runs: morning goal-setting,
// evening review, and the read-only inspection commands. One workflow runs
// per process invocation; there is no concurrent access to the journal.
package workflow

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"accountability_buddy/internal/config"
	"accountability_buddy/internal/match"
	"accountability_buddy/internal/metrics"
	"accountability_buddy/internal/notify"
	"accountability_buddy/internal/store"
	"accountability_buddy/internal/vapi"
	"accountability_buddy/internal/vault"
)

type Workflow struct {
	cfg    config.Config
	client *vapi.Client
	store  *store.Store
	log    *logrus.Logger
}

// New wires a workflow. store may be nil when the history DB is unavailable;
// runs still execute, they just go unrecorded.
func New(cfg config.Config, client *vapi.Client, st *store.Store, log *logrus.Logger) *Workflow {
	return &Workflow{cfg: cfg, client: client, store: st, log: log}
}

// record persists the run outcome. History failures are logged and swallowed:
// bookkeeping must never fail a run that already completed.
func (w *Workflow) record(ctx context.Context, run *store.Run) {
	if w.store == nil {
		return
	}
	if err := w.store.RecordRun(ctx, run); err != nil {
		w.log.WithError(err).Warn("failed to record run history")
	}
}

// notifySummary pings the optional webhook. Failures are logged, never
// propagated.
func (w *Workflow) notifySummary(ctx context.Context, text string) {
	if err := notify.Send(ctx, w.cfg.NotifyWebhookURL, notify.Message{Text: text}); err != nil {
		w.log.WithError(err).Warn("run summary notification failed")
	}
}

func (w *Workflow) logMetrics() {
	fields := logrus.Fields{}
	for k, v := range metrics.Snapshot() {
		fields[k] = v
	}
	w.log.WithFields(fields).Debug("run counters")
}

// withVault clones the vault, runs fn against it, and cleans up the checkout
// on every path. Returns without doing anything when vault sync is disabled.
func (w *Workflow) withVault(ctx context.Context, fn func(ctx context.Context, v *vault.Vault) error) error {
	if !w.cfg.VaultEnabled {
		w.log.Info("vault sync disabled; skipping")
		return nil
	}
	git, err := vault.NewGitSync(w.cfg.VaultRepoURL, w.cfg.VaultToken, w.cfg.GitUserName, w.cfg.GitUserEmail, w.log)
	if err != nil {
		return err
	}
	defer git.Cleanup()
	if err := git.Clone(ctx); err != nil {
		return err
	}
	root, err := git.VaultPath()
	if err != nil {
		return err
	}
	return fn(ctx, vault.New(root, git, w.log))
}

// callTimeOrNow resolves the call's effective timestamp, falling back to the
// current time when the platform supplied nothing parseable.
func callTimeOrNow(c *vapi.Call) time.Time {
	if t, ok := match.CallTime(c.CallSummary); ok {
		return t
	}
	return time.Now()
}
