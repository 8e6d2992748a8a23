package vault

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"

	"accountability_buddy/internal/metrics"
)

// GitSync clones the note vault into a throwaway directory, commits entry
// updates, and pushes them back. It is a scoped resource: Cleanup must run on
// every exit path, so callers pair NewGitSync with a deferred Cleanup.
type GitSync struct {
	repoURL   string
	token     string
	userName  string
	userEmail string
	tempDir   string
	repoDir   string
	log       *logrus.Logger
}

func NewGitSync(repoURL, token, userName, userEmail string, log *logrus.Logger) (*GitSync, error) {
	if userName == "" {
		userName = "Accountability Buddy Bot"
	}
	if userEmail == "" {
		userEmail = "bot@accountability.local"
	}
	tempDir, err := os.MkdirTemp("", "obsidian_vault_")
	if err != nil {
		return nil, err
	}
	return &GitSync{
		repoURL:   repoURL,
		token:     token,
		userName:  userName,
		userEmail: userEmail,
		tempDir:   tempDir,
		log:       log,
	}, nil
}

// Clone checks the vault out into the temp directory and configures the bot's
// commit identity. Calling it again after a successful clone is a no-op.
func (g *GitSync) Clone(ctx context.Context) error {
	if g.repoDir != "" {
		return nil
	}
	target := filepath.Join(g.tempDir, repoName(g.repoURL))
	g.log.WithField("dir", target).Info("cloning vault")
	if _, err := g.runGit(ctx, g.tempDir, "clone", authenticatedURL(g.repoURL, g.token), target); err != nil {
		return err
	}
	g.repoDir = target
	if _, err := g.runGit(ctx, g.repoDir, "config", "user.name", g.userName); err != nil {
		return err
	}
	if _, err := g.runGit(ctx, g.repoDir, "config", "user.email", g.userEmail); err != nil {
		return err
	}
	return nil
}

// VaultPath returns the checkout root. Clone must have succeeded first.
func (g *GitSync) VaultPath() (string, error) {
	if g.repoDir == "" {
		return "", fmt.Errorf("vault: repository has not been cloned")
	}
	return g.repoDir, nil
}

// CommitAndPush stages everything, commits, and pushes. Returns false without
// committing when the working tree is clean.
func (g *GitSync) CommitAndPush(ctx context.Context, message string) (bool, error) {
	if g.repoDir == "" {
		return false, fmt.Errorf("vault: cannot commit before clone")
	}
	status, err := g.runGit(ctx, g.repoDir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(status) == "" {
		g.log.Info("no vault changes detected; skipping commit")
		return false, nil
	}
	if _, err := g.runGit(ctx, g.repoDir, "add", "."); err != nil {
		return false, err
	}
	if _, err := g.runGit(ctx, g.repoDir, "commit", "-m", message); err != nil {
		return false, err
	}
	if _, err := g.runGit(ctx, g.repoDir, "push", "origin", "HEAD"); err != nil {
		return false, err
	}
	metrics.IncVaultCommit()
	g.log.WithField("message", message).Info("vault changes pushed")
	return true, nil
}

// Cleanup removes the temp checkout. Safe to call multiple times.
func (g *GitSync) Cleanup() {
	if g.tempDir == "" {
		return
	}
	g.log.WithField("dir", g.tempDir).Debug("removing vault checkout")
	_ = os.RemoveAll(g.tempDir)
	g.tempDir = ""
	g.repoDir = ""
}

func (g *GitSync) runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	g.log.WithField("cmd", shellquote.Join(append([]string{"git"}, redactArgs(args)...)...)).Debug("running git")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// redactArgs keeps tokens embedded in clone URLs out of the logs.
func redactArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if strings.Contains(a, "@") && strings.HasPrefix(a, "https://") {
			at := strings.Index(a, "@")
			out[i] = "https://***" + a[at:]
			continue
		}
		out[i] = a
	}
	return out
}

// authenticatedURL injects the access token into an HTTPS repository URL.
func authenticatedURL(repoURL, token string) string {
	if strings.Contains(repoURL, token) {
		return repoURL
	}
	if strings.HasPrefix(repoURL, "https://") {
		return strings.Replace(repoURL, "https://", "https://"+token+"@", 1)
	}
	return "https://" + token + "@" + repoURL
}

// repoName derives the checkout directory name from the repository URL.
func repoName(repoURL string) string {
	name := filepath.Base(strings.TrimRight(repoURL, "/"))
	return strings.TrimSuffix(name, ".git")
}
