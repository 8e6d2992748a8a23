package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"accountability_buddy/internal/config"
	"accountability_buddy/internal/store"
	"accountability_buddy/internal/vapi"
	"accountability_buddy/internal/workflow"
)

const usage = `usage: accountability-buddy <command> [flags]

commands:
  morning      place the morning goal-setting call and journal the goals
  evening      place the evening review call and journal completion
  check        print the latest structured output (read-only)
  history      list recent run outcomes
  vault-check  write sample entries to verify vault access
`

func main() {
	log := logrus.New()
	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(logrus.DebugLevel)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	cfg := config.Load(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.WithError(err).Warn("run history unavailable")
		st = nil
	} else {
		defer st.Close()
	}

	client := vapi.NewClient(cfg.BaseURL, cfg.APIToken)
	wf := workflow.New(cfg, client, st, log)

	switch command {
	case "morning":
		err = wf.Morning(ctx)
	case "evening":
		err = wf.Evening(ctx)
	case "check":
		fs := flag.NewFlagSet("check", flag.ExitOnError)
		assistant := fs.String("assistant", "", "assistant id to inspect (default: morning assistant)")
		_ = fs.Parse(os.Args[2:])
		err = wf.Check(ctx, *assistant)
	case "history":
		fs := flag.NewFlagSet("history", flag.ExitOnError)
		limit := fs.Int("limit", 20, "number of runs to list")
		_ = fs.Parse(os.Args[2:])
		err = printHistory(ctx, st, *limit)
	case "vault-check":
		err = wf.VaultCheck(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", command, err)
	}
}

func printHistory(ctx context.Context, st *store.Store, limit int) error {
	if st == nil {
		return fmt.Errorf("run history unavailable")
	}
	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, r := range runs {
		line := fmt.Sprintf("%s  %-7s  %-12s  goals=%d", r.CreatedAt.Format("2006-01-02 15:04"), r.Kind, r.Outcome, len(r.Goals))
		if r.Kind == store.KindEvening {
			line += fmt.Sprintf("  rate=%d%%", r.CompletionRate)
		}
		if r.CallID != "" {
			line += "  call=" + r.CallID
		}
		fmt.Println(line)
	}
	return nil
}
