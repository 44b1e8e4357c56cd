// Package gitsync implements the branch/PR-based translation workflow:
// resolving the pull request behind a working branch, diffing it against the
// stable branch, detecting label-level conflicts, committing structured
// translation updates and merging the branch back.
package gitsync

import (
	"termbridge-backend/internal/github"
)

const (
	defaultStableBranch  = "main"
	defaultReviewersFile = "reviewers.yml"
	defaultFetchLimit    = 8
)

// Service runs the translation workflow against one repository through a
// per-request client. It holds no mutable state; construct one per inbound
// request next to the client it wraps.
type Service struct {
	gh       *github.Client
	stable   string
	manifest string
	limit    int
}

// Config carries the repository-independent knobs of the workflow.
type Config struct {
	// StableBranch is the base branch translation branches merge into.
	StableBranch string
	// ReviewersFile is the path of the reviewer manifest on the stable branch.
	ReviewersFile string
	// FetchLimit bounds concurrent content fetches during batch operations.
	FetchLimit int
}

// New builds a Service over the given client, filling unset Config fields
// with defaults.
func New(gh *github.Client, cfg Config) *Service {
	if cfg.StableBranch == "" {
		cfg.StableBranch = defaultStableBranch
	}
	if cfg.ReviewersFile == "" {
		cfg.ReviewersFile = defaultReviewersFile
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = defaultFetchLimit
	}
	return &Service{
		gh:       gh,
		stable:   cfg.StableBranch,
		manifest: cfg.ReviewersFile,
		limit:    cfg.FetchLimit,
	}
}

// StableBranch returns the base branch this service merges into.
func (s *Service) StableBranch() string { return s.stable }
