package gitsync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"termbridge-backend/internal/github"
)

// CheckFileApproval reports, label by label, whether a file on a pull request
// has been approved through review comments. A label counts as approved when
// an allow-listed reviewer commented on the same file with a body containing
// "approved-<label>" (case-insensitive substring; the permissive match is the
// established review convention). The file as a whole is approved only when
// no label is left unapproved and at least one label exists.
func (s *Service) CheckFileApproval(ctx context.Context, prNumber int, file, branch string) (*FileApproval, error) {
	fc, err := s.gh.GetFileContent(ctx, file, branch)
	if err != nil {
		return nil, fmt.Errorf("fetch %s at %s: %w", file, branch, err)
	}
	reviewers, err := s.eligibleReviewers(ctx)
	if err != nil {
		return nil, err
	}
	comments, err := s.gh.ListReviewComments(ctx, prNumber)
	if err != nil {
		return nil, fmt.Errorf("list review comments of pull request #%d: %w", prNumber, err)
	}

	allowed := make(map[string]bool, len(reviewers))
	for _, r := range reviewers {
		allowed[r] = true
	}

	result := &FileApproval{
		CheckedFile:       file,
		EligibleReviewers: reviewers,
		ApprovedLabels:    []LabelApproval{},
		UnapprovedLabels:  []string{},
	}
	for _, ll := range scanLabelLines(fc.Text) {
		token := approvalToken(ll.name)
		var match *github.ReviewComment
		for i := range comments {
			cm := &comments[i]
			if cm.Path != file || !allowed[cm.Author] {
				continue
			}
			if strings.Contains(strings.ToLower(strings.TrimSpace(cm.Body)), token) {
				match = cm
				break
			}
		}
		if match == nil {
			result.UnapprovedLabels = append(result.UnapprovedLabels, ll.name)
			continue
		}
		result.ApprovedLabels = append(result.ApprovedLabels, LabelApproval{
			Label:      ll.name,
			Line:       ll.line,
			Reviewer:   match.Author,
			ApprovedAt: match.CreatedAt,
			CommentID:  match.ID,
			CommentURL: match.URL,
		})
	}
	result.Approved = len(result.UnapprovedLabels) == 0 && len(result.ApprovedLabels) > 0
	return result, nil
}

// eligibleReviewers loads the reviewer allow-list from the manifest on the
// stable branch: a YAML array of single-key objects whose keys are usernames.
// An absent manifest and a malformed or empty one are distinct failures.
func (s *Service) eligibleReviewers(ctx context.Context) ([]string, error) {
	fc, err := s.gh.GetFileContent(ctx, s.manifest, s.stable)
	if errors.Is(err, github.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s on %s", ErrManifestNotFound, s.manifest, s.stable)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s at %s: %w", s.manifest, s.stable, err)
	}

	var entries []map[string]any
	if err := yaml.Unmarshal([]byte(fc.Text), &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestInvalid, err)
	}
	var reviewers []string
	for _, entry := range entries {
		names := make([]string, 0, len(entry))
		for username := range entry {
			if username != "" {
				names = append(names, username)
			}
		}
		sort.Strings(names)
		reviewers = append(reviewers, names...)
	}
	if len(reviewers) == 0 {
		return nil, fmt.Errorf("%w: no reviewers listed", ErrManifestInvalid)
	}
	return reviewers, nil
}

type labelLine struct {
	name string
	line int
}

// scanLabelLines finds label declaration lines (`- name: ...`) in raw file
// text, 1-based. Scanning text instead of the parsed document keeps the line
// numbers honest against what reviewers see in the pull request.
func scanLabelLines(text string) []labelLine {
	var out []labelLine
	for i, raw := range strings.Split(text, "\n") {
		if !strings.Contains(raw, "- name") {
			continue
		}
		_, rest, ok := strings.Cut(raw, ":")
		if !ok {
			continue
		}
		name := strings.Trim(strings.TrimSpace(rest), `"'`)
		if name == "" {
			continue
		}
		out = append(out, labelLine{name: name, line: i + 1})
	}
	return out
}

// approvalToken builds the comment token for a label: "approved-" + the label
// name with quotes and colons dropped, lowercased.
func approvalToken(label string) string {
	token := "approved-" + label
	for _, cut := range []string{`"`, "'", ":"} {
		token = strings.ReplaceAll(token, cut, "")
	}
	return strings.ToLower(strings.TrimSpace(token))
}
