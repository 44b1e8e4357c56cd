package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"termbridge-backend/internal/suggest"
	"termbridge-backend/internal/types"
)

// PUT /api/github/repos/{owner}/{repo}/branches/{branch}/translations
// Applies label-scoped term edits to one terminology file and commits the
// result to the branch.
func (s *Server) handleUpdateTranslations(w http.ResponseWriter, r *http.Request) {
	branch := pathParam(r, "branch")
	if branch == "" {
		s.writeError(w, http.StatusBadRequest, "branch is required")
		return
	}
	var req types.UpdateTranslationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.File) == "" {
		s.writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	if len(req.Translations) == 0 {
		s.writeError(w, http.StatusBadRequest, "translations are required")
		return
	}
	client, ok := s.repoClient(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := s.sync(client).UpdateTranslations(ctx, branch, req.File, req.Translations)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// GET /api/github/repos/{owner}/{repo}/prs/{number}/approval?file=...&branch=...
// branch defaults to the pull request's head branch.
func (s *Server) handleFileApproval(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(pathParam(r, "number"))
	if err != nil || number <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid pull request number")
		return
	}
	file := r.URL.Query().Get("file")
	if file == "" {
		s.writeError(w, http.StatusBadRequest, "file query parameter is required")
		return
	}
	client, ok := s.repoClient(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	branch := r.URL.Query().Get("branch")
	if branch == "" {
		pr, err := client.GetPullRequest(ctx, number)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		branch = pr.HeadRef
	}

	approval, err := s.sync(client).CheckFileApproval(ctx, number, file, branch)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, approval)
}

// POST /api/translations/suggest
// Returns a machine-suggested translation for one term.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if s.suggester == nil {
		s.writeError(w, http.StatusBadRequest, "suggestions not configured (set OPENAI_API_KEY)")
		return
	}
	var req types.SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.SourceTerm) == "" || strings.TrimSpace(req.TargetLanguage) == "" {
		s.writeError(w, http.StatusBadRequest, "sourceTerm and targetLanguage are required")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	suggestion, err := s.suggester.Suggest(ctx, suggest.Request{
		Label:          req.Label,
		SourceLanguage: req.SourceLanguage,
		SourceTerm:     req.SourceTerm,
		TargetLanguage: req.TargetLanguage,
	})
	if err != nil {
		s.writeError(w, http.StatusBadGateway, "suggestion failed")
		return
	}
	s.writeJSON(w, http.StatusOK, types.SuggestResponse{
		Suggestion: suggestion,
		Model:      s.suggester.Model(),
	})
}
