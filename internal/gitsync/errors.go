package gitsync

import "errors"

// Domain errors the HTTP layer maps onto status codes.
var (
	// ErrNoPullRequest means the branch has no open pull request against the
	// stable branch.
	ErrNoPullRequest = errors.New("no open pull request for branch")
	// ErrNotMergeable means the pull request exists but GitHub reports it
	// cannot be merged cleanly.
	ErrNotMergeable = errors.New("pull request is not mergeable")
	// ErrManifestNotFound means the reviewer manifest is absent from the
	// stable branch.
	ErrManifestNotFound = errors.New("reviewers manifest not found")
	// ErrManifestInvalid means the reviewer manifest exists but is not a
	// non-empty YAML array of single-key username entries.
	ErrManifestInvalid = errors.New("reviewers manifest is invalid")
)
