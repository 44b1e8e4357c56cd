package gitsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/sync/errgroup"

	"termbridge-backend/internal/github"
)

// ChangedFiles returns the names of the files a branch changes, resolving the
// branch to its pull request first (creating a draft one when needed, see
// EnsurePullRequest). The file list comes from the pull request itself.
func (s *Service) ChangedFiles(ctx context.Context, branch string) (*ChangedFilesResult, error) {
	resolved, err := s.EnsurePullRequest(ctx, branch)
	if err != nil {
		return nil, err
	}
	if resolved.NoChanges {
		return &ChangedFilesResult{NoChanges: true, Files: []string{}}, nil
	}
	files, err := s.gh.ListPullRequestFiles(ctx, resolved.PullRequest.Number)
	if err != nil {
		return nil, fmt.Errorf("list files of pull request #%d: %w", resolved.PullRequest.Number, err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Filename)
	}
	return &ChangedFilesResult{
		PullRequest: resolved.PullRequest,
		Created:     resolved.Created,
		Files:       names,
	}, nil
}

// DetailedDiff returns the branch's changed files with contents on both sides
// and line-level diffs. The changed set comes from the branch's open pull
// request when one exists, else from a direct compare against the stable
// branch; unlike ChangedFiles this never creates a pull request.
func (s *Service) DetailedDiff(ctx context.Context, branch string) ([]ChangedFile, error) {
	files, err := s.changedSet(ctx, branch)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, branch, files)
}

// CompareDiff is DetailedDiff sourced from a raw stable...branch compare,
// ignoring pull requests entirely.
func (s *Service) CompareDiff(ctx context.Context, branch string) ([]ChangedFile, error) {
	cmp, err := s.gh.CompareRefs(ctx, s.stable, branch)
	if err != nil {
		return nil, fmt.Errorf("compare %s...%s: %w", s.stable, branch, err)
	}
	return s.hydrate(ctx, branch, cmp.Files)
}

// changedSet picks the authoritative changed-file list for a branch: the open
// pull request's files when a pull request exists, a direct compare otherwise.
func (s *Service) changedSet(ctx context.Context, branch string) ([]github.CommitFile, error) {
	prs, err := s.gh.ListOpenPullRequests(ctx, branch, s.stable)
	if err != nil {
		return nil, fmt.Errorf("list pull requests for %s: %w", branch, err)
	}
	if len(prs) > 0 {
		files, err := s.gh.ListPullRequestFiles(ctx, prs[0].Number)
		if err != nil {
			return nil, fmt.Errorf("list files of pull request #%d: %w", prs[0].Number, err)
		}
		return files, nil
	}
	cmp, err := s.gh.CompareRefs(ctx, s.stable, branch)
	if err != nil {
		return nil, fmt.Errorf("compare %s...%s: %w", s.stable, branch, err)
	}
	return cmp.Files, nil
}

// hydrate fetches both sides of every changed file and computes the diff
// segments. Fetches fan out with a bounded limit; results keep the input
// order. Any fetch failure aborts the whole batch naming the file, since a
// partial diff would misrepresent the branch.
func (s *Service) hydrate(ctx context.Context, branch string, files []github.CommitFile) ([]ChangedFile, error) {
	out := make([]ChangedFile, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, f := range files {
		g.Go(func() error {
			before, err := s.contentOrEmpty(ctx, f.Filename, s.stable)
			if err != nil {
				return fmt.Errorf("fetch %s at %s: %w", f.Filename, s.stable, err)
			}
			after, err := s.contentOrEmpty(ctx, f.Filename, branch)
			if err != nil {
				return fmt.Errorf("fetch %s at %s: %w", f.Filename, branch, err)
			}
			out[i] = ChangedFile{
				Filename:      f.Filename,
				Status:        f.Status,
				BeforeContent: before,
				AfterContent:  after,
				Diff:          lineDiff(before, after),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// contentOrEmpty fetches file text at a ref, treating absence as empty
// content: an added file has no stable side and a deleted file no branch
// side, and neither is a failure.
func (s *Service) contentOrEmpty(ctx context.Context, path, ref string) (string, error) {
	fc, err := s.gh.GetFileContent(ctx, path, ref)
	if errors.Is(err, github.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return fc.Text, nil
}

// lineDiff computes line-level diff segments between two texts. Pure; the
// segments concatenate back to both inputs (common segments shared, removed
// segments the before side, added segments the after side).
func lineDiff(before, after string) []Segment {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		segments = append(segments, Segment{
			Value:   d.Text,
			Added:   d.Type == diffmatchpatch.DiffInsert,
			Removed: d.Type == diffmatchpatch.DiffDelete,
		})
	}
	return segments
}
