package gitsync

import (
	"context"
	"fmt"
	"log/slog"

	"termbridge-backend/internal/termfile"
)

// UpdateTranslations merges the requested label→language→term values into a
// terminology file on the branch and commits the result. The file's blob SHA
// is read immediately before the write and sent with the commit, so a file
// that moved underneath is rejected by GitHub with a conflict the caller can
// retry. A request that changes no values makes no commit.
func (s *Service) UpdateTranslations(ctx context.Context, branch, file string, translations map[string]map[string]string) (*UpdateResult, error) {
	fc, err := s.gh.GetFileContent(ctx, file, branch)
	if err != nil {
		return nil, fmt.Errorf("fetch %s at %s: %w", file, branch, err)
	}
	doc, err := termfile.Parse([]byte(fc.Text))
	if err != nil {
		return nil, fmt.Errorf("parse %s at %s: %w", file, branch, err)
	}

	changed, warnings := termfile.Apply(doc, translations)
	for _, w := range warnings {
		slog.Warn("translation update skipped a slot",
			"owner", s.gh.Owner(), "repo", s.gh.Repo(), "file", file, "branch", branch, "reason", w)
	}
	result := &UpdateResult{File: file, Branch: branch, UpdatedTerms: changed, Warnings: warnings}
	if changed == 0 {
		return result, nil
	}

	data, err := doc.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", file, err)
	}
	message := fmt.Sprintf("Update translations in %s", file)
	if err := s.gh.UpdateFile(ctx, file, branch, message, fc.SHA, data); err != nil {
		return nil, fmt.Errorf("commit %s to %s: %w", file, branch, err)
	}
	result.Committed = true
	return result, nil
}
