package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "termbridge-backend/internal/github"
	"termbridge-backend/internal/store"
)

// GET /api/github/status
// Returns { authenticated: bool, username?: string }
func (s *Server) handleGitHubStatus(w http.ResponseWriter, r *http.Request) {
	sid := getSessionID(r)

	var username string
	if s.databaseStore != nil && sid != "" {
		if auth, err := s.databaseStore.GetSession(sid); err == nil && auth != nil {
			username = auth.Username
		}
	}
	if username == "" && sid != "" {
		username = s.store.GetUsername(sid)
	}

	resp := map[string]any{"authenticated": strings.TrimSpace(s.resolveToken(sid)) != ""}
	if username != "" {
		resp["username"] = username
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GET /api/github/auth
// Initiates the OAuth flow and returns { url } to redirect the browser to.
func (s *Server) handleGitHubAuth(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil || s.oauthCfg.ClientID == "" || s.oauthCfg.ClientSecret == "" {
		s.writeError(w, http.StatusBadRequest, "github oauth not configured")
		return
	}
	sid := getOrCreateSessionID(r, w)
	state := randomState()
	s.store.SetOAuthState(sid, state)
	w.Header().Set("X-Session-Id", sid)
	s.writeJSON(w, http.StatusOK, map[string]string{
		"url":       s.oauthCfg.AuthCodeURL(state),
		"sessionId": sid,
	})
}

// GET /api/github/callback?code=...&state=...
// Exchanges the code for a token, persists it, and redirects to the frontend.
func (s *Server) handleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		s.writeError(w, http.StatusBadRequest, "github oauth not configured")
		return
	}
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		s.writeError(w, http.StatusBadRequest, "missing state or code")
		return
	}
	sid := s.store.GetSessionByOAuthState(state)
	if sid == "" || s.store.GetOAuthState(sid) != state {
		s.writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()
	tok, err := s.oauthCfg.Exchange(ctx, code)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, "token exchange failed")
		return
	}

	username, err := gh.Username(ctx, tok.AccessToken, gh.Options{BaseURL: s.cfg.GitHubAPIBaseURL})
	if err != nil || username == "" {
		s.writeError(w, http.StatusBadGateway, "fetching the GitHub profile failed")
		return
	}

	// Store in the database when available, otherwise fall back to file storage
	if s.databaseStore != nil {
		if err := s.databaseStore.SaveSession(sid, tok.AccessToken, username); err != nil {
			s.writeError(w, http.StatusInternalServerError, "saving the session failed")
			return
		}
	} else {
		if err := s.tokenStore.Write(&store.GitHubToken{AccessToken: tok.AccessToken, TokenType: tok.TokenType}); err != nil {
			s.writeError(w, http.StatusInternalServerError, "token persist failed")
			return
		}
	}

	s.store.SetUsername(sid, username)
	s.store.ClearOAuthState(sid)

	// Set the session cookie so popup and main window share the same session
	SetSessionCookie(w, r, sid)

	http.Redirect(w, r, fmt.Sprintf("%s?githubAuth=success", s.cfg.FrontendURL), http.StatusFound)
}

// POST /api/github/disconnect
// Forgets the session's GitHub credential and clears the cookie.
func (s *Server) handleGitHubDisconnect(w http.ResponseWriter, r *http.Request) {
	sid := getSessionID(r)
	if sid != "" {
		if s.databaseStore != nil {
			if err := s.databaseStore.DeleteSession(sid); err != nil {
				s.writeError(w, http.StatusInternalServerError, "deleting the session failed")
				return
			}
		}
		s.store.ClearUsername(sid)
		s.store.ClearOAuthState(sid)
	}
	// Without a database the file token is the credential itself.
	if s.databaseStore == nil {
		if err := s.tokenStore.Clear(); err != nil {
			s.writeError(w, http.StatusInternalServerError, "clearing the stored token failed")
			return
		}
	}
	ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func randomState() string {
	var b [24]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
