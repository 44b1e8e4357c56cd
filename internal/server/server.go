package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"termbridge-backend/internal/config"
	"termbridge-backend/internal/db"
	gh "termbridge-backend/internal/github"
	"termbridge-backend/internal/gitsync"
	"termbridge-backend/internal/store"
	"termbridge-backend/internal/suggest"
)

type Server struct {
	router        *chi.Mux
	cfg           config.Config
	store         *store.MemoryStore
	oauthCfg      *oauth2.Config
	tokenStore    *store.FileTokenStore
	database      *db.DB
	databaseStore *store.DatabaseStore
	suggester     *suggest.Service
}

func NewServer(cfg config.Config) (*Server, error) {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Session-Id"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true, // the session cookie rides on credentialed requests
		MaxAge:           300,
	}))

	// OAuth2 config (may be partially empty if env not set; handlers will check)
	oCfg := &oauth2.Config{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		RedirectURL:  cfg.GitHubRedirectURL,
		Scopes:       cfg.GitHubScopes,
		Endpoint:     github.Endpoint,
	}
	ts := store.NewFileTokenStore(cfg.GitHubTokenFile)

	// Initialize database if DB_URL is provided
	var database *db.DB
	var databaseStore *store.DatabaseStore
	if cfg.DatabaseURL != "" {
		var err error
		database, err = db.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("initialize database: %w", err)
		}
		slog.Info("database connection established")

		if err := database.RunMigrations("./migrations"); err != nil {
			database.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}

		databaseStore = store.NewDatabaseStore(database)
	} else {
		slog.Warn("DB_URL not set, sessions will not survive a restart")
	}

	var suggester *suggest.Service
	if cfg.OpenAIAPIKey != "" {
		svc, err := suggest.Load(cfg.PromptFile, openai.NewClient(cfg.OpenAIAPIKey), cfg.Model)
		if err != nil {
			slog.Warn("translation suggestions disabled", "error", err)
		} else {
			suggester = svc
		}
	}

	s := &Server{
		router:        r,
		cfg:           cfg,
		store:         store.NewMemoryStore(),
		oauthCfg:      oCfg,
		tokenStore:    ts,
		database:      database,
		databaseStore: databaseStore,
		suggester:     suggester,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	// GitHub OAuth
	s.router.Get("/api/github/status", s.handleGitHubStatus)
	s.router.Get("/api/github/auth", s.handleGitHubAuth)
	s.router.Get("/api/github/callback", s.handleGitHubCallback)
	s.router.Post("/api/github/disconnect", s.handleGitHubDisconnect)
	// Repository reads
	s.router.Get("/api/github/repos/{owner}/{repo}/branches", s.handleListBranches)
	s.router.Get("/api/github/repos/{owner}/{repo}/contents", s.handleGetContents)
	s.router.Get("/api/github/repos/{owner}/{repo}/commits", s.handleListCommits)
	// Translation branch workflow
	s.router.Get("/api/github/repos/{owner}/{repo}/branches/{branch}/files", s.handleChangedFiles)
	s.router.Get("/api/github/repos/{owner}/{repo}/branches/{branch}/diff", s.handleDetailedDiff)
	s.router.Get("/api/github/repos/{owner}/{repo}/branches/{branch}/compare", s.handleCompareDiff)
	s.router.Get("/api/github/repos/{owner}/{repo}/branches/{branch}/conflicts", s.handleConflicts)
	s.router.Put("/api/github/repos/{owner}/{repo}/branches/{branch}/translations", s.handleUpdateTranslations)
	s.router.Post("/api/github/repos/{owner}/{repo}/branches/{branch}/merge", s.handleMergeBranch)
	// Per-file review approval
	s.router.Get("/api/github/repos/{owner}/{repo}/prs/{number}/approval", s.handleFileApproval)
	// Machine translation suggestions
	s.router.Post("/api/translations/suggest", s.handleSuggest)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	if s.database != nil {
		if err := s.database.HealthCheck(); err != nil {
			resp["status"] = "degraded"
			resp["database"] = "unreachable"
		} else {
			resp["database"] = "ok"
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// sync builds the branch workflow service on top of a repository client.
func (s *Server) sync(client *gh.Client) *gitsync.Service {
	return gitsync.New(client, gitsync.Config{
		StableBranch:  s.cfg.StableBranch,
		ReviewersFile: s.cfg.ReviewersFile,
		FetchLimit:    s.cfg.FetchLimit,
	})
}

// repoClient builds a GitHub client for the repository named in the URL.
// It writes the error response itself; callers bail out when ok is false.
func (s *Server) repoClient(w http.ResponseWriter, r *http.Request) (*gh.Client, bool) {
	owner := pathParam(r, "owner")
	repo := pathParam(r, "repo")
	if owner == "" || repo == "" {
		s.writeError(w, http.StatusBadRequest, "owner and repo are required")
		return nil, false
	}
	token := s.resolveToken(getSessionID(r))
	if strings.TrimSpace(token) == "" {
		s.writeError(w, http.StatusUnauthorized, "connect a GitHub account or configure GITHUB_TOKEN")
		return nil, false
	}
	client, err := gh.NewClient(r.Context(), token, owner, repo, gh.Options{BaseURL: s.cfg.GitHubAPIBaseURL})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return client, true
}

// resolveToken retrieves the GitHub token for a session with fallback:
// 1. database (session-specific OAuth token)
// 2. file-based token store (single-user OAuth token)
// 3. config (static personal access token)
func (s *Server) resolveToken(sessionID string) string {
	if s.databaseStore != nil && sessionID != "" {
		if auth, err := s.databaseStore.GetSession(sessionID); err == nil && auth != nil && strings.TrimSpace(auth.Token) != "" {
			return auth.Token
		}
	}
	if token, err := s.tokenStore.Read(); err == nil && token != nil && strings.TrimSpace(token.AccessToken) != "" {
		return token.AccessToken
	}
	return s.cfg.GitHubToken
}

// pathParam reads a chi URL parameter, unescaping it so branch names like
// "translations%2Ffr" arrive as "translations/fr".
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func newSessionID() string {
	return fmt.Sprintf("s_%d", time.Now().UnixNano())
}

// getSessionID retrieves the session ID from cookie, header, or query parameter.
func getSessionID(r *http.Request) string {
	if cookie, err := GetSessionCookie(r); err == nil && cookie != "" {
		return cookie
	}
	if sid := r.Header.Get("X-Session-Id"); sid != "" {
		return sid
	}
	if sid := r.URL.Query().Get("sessionId"); sid != "" {
		return sid
	}
	return ""
}

// getOrCreateSessionID gets the existing session ID or creates a new one, setting the cookie.
func getOrCreateSessionID(r *http.Request, w http.ResponseWriter) string {
	sid := getSessionID(r)
	if sid == "" {
		sid = newSessionID()
		slog.Debug("created session", "session", sid, "path", r.URL.Path)
		SetSessionCookie(w, r, sid)
	}
	return sid
}
