package github

import "time"

// PullRequest holds the subset of pull request metadata the sync engine uses.
type PullRequest struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	Draft     bool      `json:"draft"`
	Mergeable *bool     `json:"mergeable,omitempty"`
	NodeID    string    `json:"-"`
	HeadRef   string    `json:"headRef"`
	HeadSHA   string    `json:"-"`
	BaseRef   string    `json:"baseRef"`
	Author    string    `json:"author,omitempty"`
	URL       string    `json:"url,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// CommitFile is one changed file of a pull request or a ref comparison.
type CommitFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch,omitempty"`
}

// Comparison is the result of comparing two refs.
type Comparison struct {
	AheadBy      int          `json:"aheadBy"`
	BehindBy     int          `json:"behindBy"`
	TotalCommits int          `json:"totalCommits"`
	Files        []CommitFile `json:"files"`
}

// FileContent is a file fetched from the contents API: decoded text plus the
// blob SHA needed for optimistic-concurrency writes.
type FileContent struct {
	Path string `json:"path"`
	Ref  string `json:"ref,omitempty"`
	SHA  string `json:"sha"`
	Text string `json:"content"`
}

// ReviewComment is a pull request review comment (inline, carries a file path).
type ReviewComment struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Path      string    `json:"path,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type Branch struct {
	Name      string `json:"name"`
	SHA       string `json:"sha"`
	Protected bool   `json:"protected"`
}

type Commit struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date,omitempty"`
	URL     string    `json:"url,omitempty"`
}
