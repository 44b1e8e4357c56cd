package gitsync

import (
	"time"

	"termbridge-backend/internal/github"
)

// ResolvedPullRequest is the outcome of resolving a working branch to its
// pull request. Exactly one of PullRequest and NoChanges is meaningful:
// NoChanges means the branch is zero commits ahead of the stable branch and
// no pull request exists or was created.
type ResolvedPullRequest struct {
	PullRequest *github.PullRequest `json:"pullRequest,omitempty"`
	Created     bool                `json:"created"`
	NoChanges   bool                `json:"noChanges"`
}

// ChangedFilesResult lists the names of files a branch changes, together with
// the pull request that represents the branch.
type ChangedFilesResult struct {
	PullRequest *github.PullRequest `json:"pullRequest,omitempty"`
	Created     bool                `json:"created"`
	NoChanges   bool                `json:"noChanges"`
	Files       []string            `json:"files"`
}

// Segment is one run of a line-level diff. A segment with neither flag set is
// common to both sides; segments cover both inputs in order.
type Segment struct {
	Value   string `json:"value"`
	Added   bool   `json:"added"`
	Removed bool   `json:"removed"`
}

// ChangedFile is one file of a detailed diff: full content on both sides plus
// the line-level segments between them.
type ChangedFile struct {
	Filename      string    `json:"filename"`
	Status        string    `json:"status"`
	BeforeContent string    `json:"beforeContent"`
	AfterContent  string    `json:"afterContent"`
	Diff          []Segment `json:"diff"`
}

// Conflict is one label/language slot whose value differs between the working
// branch and the reference branch.
type Conflict struct {
	File           string `json:"file"`
	Label          string `json:"label"`
	Language       string `json:"language"`
	ReferenceValue string `json:"referenceValue"`
	BranchValue    string `json:"branchValue"`
}

// FileConflicts groups the conflicts of one file. Error is set instead of
// Conflicts when the file could not be fetched or parsed on either side; the
// scan is advisory and degrades per file rather than aborting.
type FileConflicts struct {
	File      string     `json:"file"`
	Conflicts []Conflict `json:"conflicts"`
	Error     string     `json:"error,omitempty"`
}

// LabelApproval records the review comment that approved one label line.
type LabelApproval struct {
	Label      string    `json:"label"`
	Line       int       `json:"line"`
	Reviewer   string    `json:"reviewer"`
	ApprovedAt time.Time `json:"approvedAt"`
	CommentID  int64     `json:"commentId"`
	CommentURL string    `json:"commentUrl"`
}

// FileApproval is the approval state of one file on a pull request. Approved
// is true only when every label line has an approving comment and at least
// one label line exists.
type FileApproval struct {
	Approved          bool            `json:"approved"`
	ApprovedLabels    []LabelApproval `json:"approvedLabels"`
	UnapprovedLabels  []string        `json:"unapprovedLabels"`
	EligibleReviewers []string        `json:"eligibleReviewers"`
	CheckedFile       string          `json:"checkedFile"`
}

// MergeResult reports a completed merge. Warning is set when the merge
// succeeded but cleaning up the source branch did not.
type MergeResult struct {
	Merged      bool   `json:"merged"`
	PullRequest int    `json:"pullRequest"`
	Message     string `json:"message"`
	Warning     string `json:"warning,omitempty"`
}

// UpdateResult reports a translation update. Committed is false when the
// request changed nothing and no commit was made.
type UpdateResult struct {
	File         string   `json:"file"`
	Branch       string   `json:"branch"`
	UpdatedTerms int      `json:"updatedTerms"`
	Committed    bool     `json:"committed"`
	Warnings     []string `json:"warnings,omitempty"`
}
