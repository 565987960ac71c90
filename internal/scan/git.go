package scan

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/codescope-io/codescope/internal/graph"
)

const (
	// staleDocsGraceDays is how far VISION.md may lag the latest
	// commit before it is flagged.
	staleDocsGraceDays = 7

	// staleDocsEscalationDays is the lag at which the finding becomes
	// HIGH instead of MEDIUM.
	staleDocsEscalationDays = 30
)

// GitSignals summarizes repository activity for the health report.
type GitSignals struct {
	IsRepo          bool   `json:"isGitRepo"`
	TotalCommits    int    `json:"totalCommits"`
	RecentCommits   int    `json:"recentCommits"`
	LastCommitDate  string `json:"lastCommitDate,omitempty"`
	CommitFrequency string `json:"commitFrequency,omitempty"`
}

// VCS supplies version-control signals and findings for a tree. It is
// a collaborator boundary so scans of non-repos and tests run without
// shelling out.
type VCS interface {
	Signals(ctx context.Context, root string) (GitSignals, []graph.Finding, error)
}

// ExecGit reads signals from the git binary. Every command runs under
// a short per-command timeout; any failure yields a zero field, never
// an aborted scan.
type ExecGit struct {
	// Timeout bounds each git invocation. Zero means 5 seconds.
	Timeout time.Duration
}

func (e ExecGit) Signals(ctx context.Context, root string) (GitSignals, []graph.Finding, error) {
	var s GitSignals
	if _, err := os.Stat(filepath.Join(root, ".git")); err != nil {
		return s, nil, nil
	}
	s.IsRepo = true

	if out, ok := e.run(ctx, root, "rev-list", "--count", "HEAD"); ok {
		s.TotalCommits, _ = strconv.Atoi(out)
	}
	if out, ok := e.run(ctx, root, "rev-list", "--count", "--since=30.days", "HEAD"); ok {
		s.RecentCommits, _ = strconv.Atoi(out)
	}
	if out, ok := e.run(ctx, root, "log", "-1", "--format=%ci"); ok && len(out) >= 10 {
		s.LastCommitDate = out[:10]
	}

	s.CommitFrequency = frequencyBucket(s.RecentCommits)

	var findings []graph.Finding
	if _, err := os.Stat(filepath.Join(root, "VISION.md")); err == nil {
		docTime, okDoc := e.commitTime(ctx, root, "VISION.md")
		repoTime, okRepo := e.commitTime(ctx, root, "")
		if okDoc && okRepo {
			if f := staleDocsFinding(docTime, repoTime); f != nil {
				findings = append(findings, *f)
			}
		}
	}

	return s, findings, nil
}

func (e ExecGit) run(ctx context.Context, root string, args ...string) (string, bool) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}

// commitTime returns the unix timestamp of the last commit touching
// file, or of the repository head when file is empty.
func (e ExecGit) commitTime(ctx context.Context, root, file string) (time.Time, bool) {
	args := []string{"log", "-1", "--format=%ct"}
	if file != "" {
		args = append(args, file)
	}
	out, ok := e.run(ctx, root, args...)
	if !ok {
		return time.Time{}, false
	}
	sec, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(sec, 0).UTC(), true
}

// staleDocsFinding flags VISION.md lagging the latest commit by more
// than the grace period. Returns nil when the doc is fresh enough.
func staleDocsFinding(docTime, repoTime time.Time) *graph.Finding {
	days := int(repoTime.Sub(docTime).Hours() / 24)
	if days <= staleDocsGraceDays {
		return nil
	}

	severity := graph.SeverityMedium
	if days >= staleDocsEscalationDays {
		severity = graph.SeverityHigh
	}

	return &graph.Finding{
		Kind:            graph.FindingStaleDocs,
		Severity:        severity,
		File:            "VISION.md",
		Message:         fmt.Sprintf("Documentation is %d days behind code evolution.", days),
		SuggestedAction: "Update VISION.md to reflect current architecture.",
		Metadata:        map[string]string{"daysStale": strconv.Itoa(days)},
	}
}

// frequencyBucket maps recent (30-day) commit counts to an activity
// label.
func frequencyBucket(recent int) string {
	switch {
	case recent >= 20:
		return "daily"
	case recent >= 5:
		return "weekly"
	case recent >= 1:
		return "monthly"
	default:
		return "sporadic"
	}
}
