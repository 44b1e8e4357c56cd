package gitsync

import (
	"context"
	"fmt"
	"log/slog"
)

// EnsurePullRequest resolves a working branch to its open pull request
// against the stable branch. When several are open the most recently updated
// wins. When none exists and the branch has outgoing commits, a draft pull
// request is created: queries that need a pull request deliberately create
// one as a side effect, so the branch becomes reviewable the moment anyone
// looks at it. A branch zero commits ahead resolves to NoChanges and nothing
// is created.
func (s *Service) EnsurePullRequest(ctx context.Context, branch string) (*ResolvedPullRequest, error) {
	prs, err := s.gh.ListOpenPullRequests(ctx, branch, s.stable)
	if err != nil {
		return nil, fmt.Errorf("list pull requests for %s: %w", branch, err)
	}
	if len(prs) > 0 {
		pr := prs[0]
		return &ResolvedPullRequest{PullRequest: &pr}, nil
	}

	cmp, err := s.gh.CompareRefs(ctx, s.stable, branch)
	if err != nil {
		return nil, fmt.Errorf("compare %s...%s: %w", s.stable, branch, err)
	}
	if cmp.AheadBy == 0 {
		return &ResolvedPullRequest{NoChanges: true}, nil
	}

	title := fmt.Sprintf("Translation updates from %s", branch)
	body := fmt.Sprintf("Opened automatically for translation branch `%s`.", branch)
	pr, err := s.gh.CreatePullRequest(ctx, title, body, branch, s.stable, true)
	if err != nil {
		return nil, fmt.Errorf("create pull request for %s: %w", branch, err)
	}
	slog.Info("created draft pull request",
		"owner", s.gh.Owner(), "repo", s.gh.Repo(), "branch", branch, "number", pr.Number)
	return &ResolvedPullRequest{PullRequest: pr, Created: true}, nil
}
