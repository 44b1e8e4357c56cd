package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"termbridge-backend/internal/gitsync"
)

// GET /api/github/repos/{owner}/{repo}/branches
func (s *Server) handleListBranches(w http.ResponseWriter, r *http.Request) {
	client, ok := s.repoClient(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	branches, err := client.ListBranches(ctx)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"branches": branches})
}

// GET /api/github/repos/{owner}/{repo}/contents?path=...&ref=...
// ref defaults to the stable branch.
func (s *Server) handleGetContents(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}
	client, ok := s.repoClient(w, r)
	if !ok {
		return
	}
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		ref = s.cfg.StableBranch
	}
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	content, err := client.GetFileContent(ctx, path, ref)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, content)
}

// GET /api/github/repos/{owner}/{repo}/commits?branch=...&per_page=...
func (s *Server) handleListCommits(w http.ResponseWriter, r *http.Request) {
	client, ok := s.repoClient(w, r)
	if !ok {
		return
	}
	branch := r.URL.Query().Get("branch")
	if branch == "" {
		branch = s.cfg.StableBranch
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	commits, err := client.ListCommits(ctx, branch, perPage)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"branch": branch, "commits": commits})
}

// GET /api/github/repos/{owner}/{repo}/branches/{branch}/files
// Lists files changed on the branch, opening a draft pull request when the
// branch has commits but no open one yet.
func (s *Server) handleChangedFiles(w http.ResponseWriter, r *http.Request) {
	branch := pathParam(r, "branch")
	if branch == "" {
		s.writeError(w, http.StatusBadRequest, "branch is required")
		return
	}
	client, ok := s.repoClient(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := s.sync(client).ChangedFiles(ctx, branch)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// GET /api/github/repos/{owner}/{repo}/branches/{branch}/diff
// Per-file line diffs between the stable branch and the translation branch.
func (s *Server) handleDetailedDiff(w http.ResponseWriter, r *http.Request) {
	branch := pathParam(r, "branch")
	if branch == "" {
		s.writeError(w, http.StatusBadRequest, "branch is required")
		return
	}
	client, ok := s.repoClient(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	files, err := s.sync(client).DetailedDiff(ctx, branch)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"branch": branch, "files": files})
}

// GET /api/github/repos/{owner}/{repo}/branches/{branch}/compare
// Like diff, but always from a ref comparison, never touching pull requests.
func (s *Server) handleCompareDiff(w http.ResponseWriter, r *http.Request) {
	branch := pathParam(r, "branch")
	if branch == "" {
		s.writeError(w, http.StatusBadRequest, "branch is required")
		return
	}
	client, ok := s.repoClient(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	files, err := s.sync(client).CompareDiff(ctx, branch)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"branch": branch, "files": files})
}

// GET /api/github/repos/{owner}/{repo}/branches/{branch}/conflicts?reference=...
// reference defaults to the stable branch.
func (s *Server) handleConflicts(w http.ResponseWriter, r *http.Request) {
	branch := pathParam(r, "branch")
	if branch == "" {
		s.writeError(w, http.StatusBadRequest, "branch is required")
		return
	}
	client, ok := s.repoClient(w, r)
	if !ok {
		return
	}
	reference := r.URL.Query().Get("reference")

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	conflicts, err := s.sync(client).Conflicts(ctx, branch, reference)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if reference == "" {
		reference = s.cfg.StableBranch
	}
	resp := map[string]any{"branch": branch, "reference": reference, "conflicts": conflicts}
	if len(conflicts) == 0 {
		resp["conflicts"] = []gitsync.FileConflicts{}
		resp["message"] = "no conflicts detected"
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// POST /api/github/repos/{owner}/{repo}/branches/{branch}/merge
func (s *Server) handleMergeBranch(w http.ResponseWriter, r *http.Request) {
	branch := pathParam(r, "branch")
	if branch == "" {
		s.writeError(w, http.StatusBadRequest, "branch is required")
		return
	}
	client, ok := s.repoClient(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := s.sync(client).MergeBranch(ctx, branch)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}
