package gitsync

import (
	"context"
	"fmt"
	"log/slog"
)

// MergeBranch merges a working branch's pull request into the stable branch
// and deletes the branch. A draft pull request is promoted to ready first;
// GitHub refuses to merge drafts. Mergeability is checked up front and an
// unmergeable (or still-being-computed) state is a domain error, not a remote
// failure. After a confirmed merge, a failure to delete the branch is
// reported as a warning on the success result; the merge already happened
// and must not be masked.
func (s *Service) MergeBranch(ctx context.Context, branch string) (*MergeResult, error) {
	prs, err := s.gh.ListOpenPullRequests(ctx, branch, s.stable)
	if err != nil {
		return nil, fmt.Errorf("list pull requests for %s: %w", branch, err)
	}
	if len(prs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPullRequest, branch)
	}

	// The list endpoint omits mergeable state; fetch the full pull request.
	pr, err := s.gh.GetPullRequest(ctx, prs[0].Number)
	if err != nil {
		return nil, fmt.Errorf("get pull request #%d: %w", prs[0].Number, err)
	}
	if pr.Mergeable == nil || !*pr.Mergeable {
		return nil, fmt.Errorf("%w: pull request #%d", ErrNotMergeable, pr.Number)
	}

	if pr.Draft {
		if err := s.gh.MarkReadyForReview(ctx, pr.NodeID); err != nil {
			return nil, fmt.Errorf("mark pull request #%d ready: %w", pr.Number, err)
		}
	}

	merged, err := s.gh.MergePullRequest(ctx, pr.Number, fmt.Sprintf("Merge translation branch %s", branch))
	if err != nil {
		return nil, fmt.Errorf("merge pull request #%d: %w", pr.Number, err)
	}
	if !merged {
		return nil, fmt.Errorf("%w: pull request #%d was not merged", ErrNotMergeable, pr.Number)
	}

	result := &MergeResult{
		Merged:      true,
		PullRequest: pr.Number,
		Message:     fmt.Sprintf("pull request #%d merged into %s", pr.Number, s.stable),
	}
	if err := s.gh.DeleteBranch(ctx, branch); err != nil {
		slog.Warn("branch deletion failed after merge",
			"owner", s.gh.Owner(), "repo", s.gh.Repo(), "branch", branch, "error", err)
		result.Warning = fmt.Sprintf("merged, but deleting branch %s failed: %v", branch, err)
	}
	return result, nil
}
