package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v74/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// Sentinel errors for the two upstream conditions callers branch on.
var (
	ErrNotFound = errors.New("github: not found")
	ErrConflict = errors.New("github: conflict")
)

// Client is a per-request capability bound to one repository. It wraps the
// GitHub REST API and, for the single mutation REST does not offer (draft →
// ready for review), the GraphQL API. Construct one per inbound request; it
// holds no mutable state.
type Client struct {
	rest  *github.Client
	gql   *githubv4.Client
	owner string
	repo  string
}

// Options tunes client construction. BaseURL overrides api.github.com for
// GitHub Enterprise installations and test servers.
type Options struct {
	BaseURL string
}

// NewClient builds a Client authenticated with the given token.
func NewClient(ctx context.Context, token, owner, repo string, opts Options) (*Client, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("github: owner and repo are required")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	rest := github.NewClient(tc)

	var gql *githubv4.Client
	if opts.BaseURL == "" {
		gql = githubv4.NewClient(tc)
	} else {
		base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("github: invalid base URL %q: %w", opts.BaseURL, err)
		}
		rest.BaseURL = base
		gql = githubv4.NewEnterpriseClient(strings.TrimSuffix(opts.BaseURL, "/")+"/graphql", tc)
	}

	return &Client{rest: rest, gql: gql, owner: owner, repo: repo}, nil
}

// Username returns the login of the token's user. It needs no repository
// binding, so it stands apart from Client.
func Username(ctx context.Context, token string, opts Options) (string, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	rest := github.NewClient(oauth2.NewClient(ctx, ts))
	if opts.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return "", fmt.Errorf("github: invalid base URL %q: %w", opts.BaseURL, err)
		}
		rest.BaseURL = base
	}
	user, _, err := rest.Users.Get(ctx, "")
	if err != nil {
		return "", mapAPIError(err)
	}
	return user.GetLogin(), nil
}

// Owner returns the bound repository owner.
func (c *Client) Owner() string { return c.owner }

// Repo returns the bound repository name.
func (c *Client) Repo() string { return c.repo }

// ListOpenPullRequests lists open pull requests from head into base, most
// recently updated first. The ordering makes "take the first" deterministic
// when the at-most-one-open-PR-per-branch invariant is violated.
func (c *Client) ListOpenPullRequests(ctx context.Context, head, base string) ([]PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "open",
		Head:        c.owner + ":" + head,
		Base:        base,
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 30},
	}
	prs, _, err := c.rest.PullRequests.List(ctx, c.owner, c.repo, opts)
	if err != nil {
		return nil, mapAPIError(err)
	}
	out := make([]PullRequest, 0, len(prs))
	for _, pr := range prs {
		out = append(out, convertPullRequest(pr))
	}
	return out, nil
}

// GetPullRequest fetches one pull request, including its computed mergeable
// state and draft flag.
func (c *Client) GetPullRequest(ctx context.Context, number int) (*PullRequest, error) {
	pr, _, err := c.rest.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return nil, mapAPIError(err)
	}
	out := convertPullRequest(pr)
	return &out, nil
}

// CreatePullRequest opens a pull request from head into base.
func (c *Client) CreatePullRequest(ctx context.Context, title, body, head, base string, draft bool) (*PullRequest, error) {
	newPR := &github.NewPullRequest{
		Title: github.Ptr(title),
		Body:  github.Ptr(body),
		Head:  github.Ptr(head),
		Base:  github.Ptr(base),
		Draft: github.Ptr(draft),
	}
	pr, _, err := c.rest.PullRequests.Create(ctx, c.owner, c.repo, newPR)
	if err != nil {
		return nil, mapAPIError(err)
	}
	out := convertPullRequest(pr)
	return &out, nil
}

// ListPullRequestFiles returns every changed file of a pull request.
func (c *Client) ListPullRequestFiles(ctx context.Context, number int) ([]CommitFile, error) {
	var out []CommitFile
	opts := &github.ListOptions{PerPage: 100}
	for {
		files, resp, err := c.rest.PullRequests.ListFiles(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, mapAPIError(err)
		}
		for _, f := range files {
			out = append(out, convertCommitFile(f))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// CompareRefs compares base...head and returns ahead/behind counts plus the
// full changed-file list.
func (c *Client) CompareRefs(ctx context.Context, base, head string) (*Comparison, error) {
	out := &Comparison{}
	opts := &github.ListOptions{PerPage: 100}
	for {
		cmp, resp, err := c.rest.Repositories.CompareCommits(ctx, c.owner, c.repo, base, head, opts)
		if err != nil {
			return nil, mapAPIError(err)
		}
		out.AheadBy = cmp.GetAheadBy()
		out.BehindBy = cmp.GetBehindBy()
		out.TotalCommits = cmp.GetTotalCommits()
		for _, f := range cmp.Files {
			out.Files = append(out.Files, convertCommitFile(f))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// GetFileContent fetches and decodes a file at the given ref. A missing file
// surfaces as ErrNotFound so callers can distinguish absence from failure.
func (c *Client) GetFileContent(ctx context.Context, path, ref string) (*FileContent, error) {
	opts := &github.RepositoryContentGetOptions{Ref: ref}
	file, _, _, err := c.rest.Repositories.GetContents(ctx, c.owner, c.repo, path, opts)
	if err != nil {
		return nil, mapAPIError(err)
	}
	if file == nil {
		return nil, fmt.Errorf("github: %s at %s is not a file", path, ref)
	}
	text, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("github: decode %s at %s: %w", path, ref, err)
	}
	return &FileContent{Path: path, Ref: ref, SHA: file.GetSHA(), Text: text}, nil
}

// UpdateFile commits new content for a file on a branch. The sha must be the
// blob SHA read just before; GitHub rejects the write with ErrConflict when
// the file changed underneath.
func (c *Client) UpdateFile(ctx context.Context, path, branch, message, sha string, content []byte) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: content,
		SHA:     github.Ptr(sha),
		Branch:  github.Ptr(branch),
	}
	_, _, err := c.rest.Repositories.UpdateFile(ctx, c.owner, c.repo, path, opts)
	return mapAPIError(err)
}

// ListReviewComments returns every review comment of a pull request. These
// are the inline comments that carry a file path, which the approval scanner
// matches against.
func (c *Client) ListReviewComments(ctx context.Context, number int) ([]ReviewComment, error) {
	var out []ReviewComment
	opts := &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		comments, resp, err := c.rest.PullRequests.ListComments(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, mapAPIError(err)
		}
		for _, cm := range comments {
			out = append(out, ReviewComment{
				ID:        cm.GetID(),
				Author:    cm.GetUser().GetLogin(),
				Body:      cm.GetBody(),
				Path:      cm.GetPath(),
				URL:       cm.GetHTMLURL(),
				CreatedAt: cm.GetCreatedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// MarkReadyForReview flips a draft pull request to ready. The REST API has no
// endpoint for this transition; it only exists as a GraphQL mutation.
func (c *Client) MarkReadyForReview(ctx context.Context, nodeID string) error {
	var m struct {
		MarkPullRequestReadyForReview struct {
			PullRequest struct {
				IsDraft githubv4.Boolean
			}
		} `graphql:"markPullRequestReadyForReview(input: $input)"`
	}
	input := githubv4.MarkPullRequestReadyForReviewInput{
		PullRequestID: githubv4.ID(nodeID),
	}
	if err := c.gql.Mutate(ctx, &m, input, nil); err != nil {
		return fmt.Errorf("github: mark ready for review: %w", err)
	}
	return nil
}

// MergePullRequest merges a pull request and reports whether GitHub confirmed
// the merge.
func (c *Client) MergePullRequest(ctx context.Context, number int, message string) (bool, error) {
	opts := &github.PullRequestOptions{MergeMethod: "merge"}
	result, _, err := c.rest.PullRequests.Merge(ctx, c.owner, c.repo, number, message, opts)
	if err != nil {
		return false, mapAPIError(err)
	}
	return result.GetMerged(), nil
}

// DeleteBranch removes the branch ref.
func (c *Client) DeleteBranch(ctx context.Context, branch string) error {
	_, err := c.rest.Git.DeleteRef(ctx, c.owner, c.repo, "heads/"+branch)
	return mapAPIError(err)
}

// ListBranches returns all branches of the repository.
func (c *Client) ListBranches(ctx context.Context) ([]Branch, error) {
	var out []Branch
	opts := &github.BranchListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		branches, resp, err := c.rest.Repositories.ListBranches(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, mapAPIError(err)
		}
		for _, b := range branches {
			out = append(out, Branch{
				Name:      b.GetName(),
				SHA:       b.GetCommit().GetSHA(),
				Protected: b.GetProtected(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// ListCommits returns up to perPage commits of a branch, newest first.
func (c *Client) ListCommits(ctx context.Context, branch string, perPage int) ([]Commit, error) {
	if perPage <= 0 || perPage > 100 {
		perPage = 30
	}
	opts := &github.CommitsListOptions{
		SHA:         branch,
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	commits, _, err := c.rest.Repositories.ListCommits(ctx, c.owner, c.repo, opts)
	if err != nil {
		return nil, mapAPIError(err)
	}
	out := make([]Commit, 0, len(commits))
	for _, rc := range commits {
		out = append(out, Commit{
			SHA:     rc.GetSHA(),
			Message: rc.GetCommit().GetMessage(),
			Author:  rc.GetCommit().GetAuthor().GetName(),
			Date:    rc.GetCommit().GetAuthor().GetDate().Time,
			URL:     rc.GetHTMLURL(),
		})
	}
	return out, nil
}

func convertPullRequest(pr *github.PullRequest) PullRequest {
	return PullRequest{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		State:     pr.GetState(),
		Draft:     pr.GetDraft(),
		Mergeable: pr.Mergeable,
		NodeID:    pr.GetNodeID(),
		HeadRef:   pr.GetHead().GetRef(),
		HeadSHA:   pr.GetHead().GetSHA(),
		BaseRef:   pr.GetBase().GetRef(),
		Author:    pr.GetUser().GetLogin(),
		URL:       pr.GetHTMLURL(),
		UpdatedAt: pr.GetUpdatedAt().Time,
	}
}

func convertCommitFile(f *github.CommitFile) CommitFile {
	return CommitFile{
		Filename:  f.GetFilename(),
		Status:    f.GetStatus(),
		Additions: f.GetAdditions(),
		Deletions: f.GetDeletions(),
		Patch:     f.GetPatch(),
	}
}

// mapAPIError rewraps upstream responses that callers branch on (absence,
// optimistic-concurrency rejection) and leaves everything else untouched.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, ghErr.Message)
		case http.StatusConflict:
			return fmt.Errorf("%w: %s", ErrConflict, ghErr.Message)
		}
	}
	return err
}

// UpstreamStatus reports the HTTP status of a remote API error, when err
// carries one.
func UpstreamStatus(err error) (int, bool) {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode, true
	}
	return 0, false
}

// IsTransport reports whether err means no HTTP response was received at all,
// as opposed to an error status from the API.
func IsTransport(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
