package gitsync

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"termbridge-backend/internal/github"
)

// fakeGitHub is an httptest-backed GitHub API double. Calls are counted per
// registered pattern, and handlers can append to a shared operations log for
// ordering assertions.
type fakeGitHub struct {
	t   *testing.T
	mux *http.ServeMux
	srv *httptest.Server

	mu    sync.Mutex
	calls map[string]int
	ops   []string
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{t: t, mux: http.NewServeMux(), calls: map[string]int{}}
	f.srv = httptest.NewServer(f.mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeGitHub) handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[pattern]++
		f.mu.Unlock()
		h(w, r)
	})
}

func (f *fakeGitHub) count(pattern string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[pattern]
}

func (f *fakeGitHub) logOp(op string) {
	f.mu.Lock()
	f.ops = append(f.ops, op)
	f.mu.Unlock()
}

func (f *fakeGitHub) opsLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

// service wires a Service to the fake server, bound to owner/repo.
func (f *fakeGitHub) service(cfg Config) *Service {
	f.t.Helper()
	client, err := github.NewClient(context.Background(), "test-token", "owner", "repo",
		github.Options{BaseURL: f.srv.URL})
	require.NoError(f.t, err)
	return New(client, cfg)
}

// serveContents registers the contents endpoint over a fixed "path@ref" map;
// anything else is a 404.
func (f *fakeGitHub) serveContents(files map[string]string) {
	f.handle("GET /repos/owner/repo/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		path := r.PathValue("path")
		text, ok := files[path+"@"+r.URL.Query().Get("ref")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, contentJSON(path, "sha-"+path, text))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// prJSON builds the wire form of a pull request. mergeable is nil (field
// absent, still being computed) or a bool.
func prJSON(number int, branch string, draft bool, mergeable any) map[string]any {
	pr := map[string]any{
		"number":     number,
		"title":      "Translation updates from " + branch,
		"state":      "open",
		"draft":      draft,
		"node_id":    fmt.Sprintf("PR_node%d", number),
		"head":       map[string]any{"ref": branch, "sha": "headsha"},
		"base":       map[string]any{"ref": "main"},
		"user":       map[string]any{"login": "translator"},
		"html_url":   fmt.Sprintf("https://github.test/owner/repo/pull/%d", number),
		"updated_at": "2024-05-01T10:00:00Z",
	}
	if mergeable != nil {
		pr["mergeable"] = mergeable
	}
	return pr
}

func contentJSON(path, sha, text string) map[string]any {
	return map[string]any{
		"type":     "file",
		"encoding": "base64",
		"name":     path,
		"path":     path,
		"sha":      sha,
		"content":  base64.StdEncoding.EncodeToString([]byte(text)),
	}
}

func compareJSON(ahead int, files ...string) map[string]any {
	fs := make([]map[string]any, 0, len(files))
	for _, name := range files {
		fs = append(fs, map[string]any{"filename": name, "status": "modified"})
	}
	return map[string]any{
		"ahead_by":      ahead,
		"behind_by":     0,
		"total_commits": ahead,
		"status":        "ahead",
		"files":         fs,
	}
}

func commentJSON(id int, author, body, path string) map[string]any {
	return map[string]any{
		"id":         id,
		"user":       map[string]any{"login": author},
		"body":       body,
		"path":       path,
		"html_url":   fmt.Sprintf("https://github.test/owner/repo/pull/7#discussion_r%d", id),
		"created_at": "2024-05-02T09:30:00Z",
	}
}
