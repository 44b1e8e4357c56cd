package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string
	FrontendURL   string
	LogFile       string
	LogLevel      string
	// Database
	DatabaseURL string
	// GitHub OAuth
	GitHubClientID     string
	GitHubClientSecret string
	GitHubRedirectURL  string
	GitHubTokenFile    string
	GitHubScopes       []string
	// Optional static GitHub token (Personal Access Token) for local testing
	GitHubToken string
	// Override for GitHub Enterprise or test servers; empty means api.github.com
	GitHubAPIBaseURL string
	// Translation sync
	StableBranch  string
	ReviewersFile string
	FetchLimit    int
	// Suggestions
	OpenAIAPIKey string
	Model        string
	PromptFile   string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:               getEnvDefault("PORT", "8080"),
		AllowedOrigin:      getEnvDefault("ALLOWED_ORIGIN", "*"),
		FrontendURL:        getEnvDefault("FRONTEND_URL", "http://localhost:3000"),
		LogFile:            os.Getenv("LOG_FILE"),
		LogLevel:           getEnvDefault("LOG_LEVEL", "info"),
		DatabaseURL:        os.Getenv("DB_URL"),
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubRedirectURL:  getEnvDefault("GITHUB_REDIRECT_URL", "http://localhost:8080/api/github/callback"),
		GitHubTokenFile:    getEnvDefault("GITHUB_TOKEN_FILE", "data/github_token.json"),
		GitHubScopes:       getEnvListDefault("GITHUB_OAUTH_SCOPES", []string{"repo", "read:user"}),
		GitHubToken:        os.Getenv("GITHUB_TOKEN"),
		GitHubAPIBaseURL:   os.Getenv("GITHUB_API_BASE_URL"),
		StableBranch:       getEnvDefault("STABLE_BRANCH", "main"),
		ReviewersFile:      getEnvDefault("REVIEWERS_FILE", "reviewers.yml"),
		FetchLimit:         getEnvIntDefault("FETCH_CONCURRENCY", 8),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		Model:              getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		PromptFile:         getEnvDefault("SUGGEST_PROMPT_FILE", "prompts/suggest.yaml"),
	}
	if cfg.GitHubClientID == "" && cfg.GitHubToken == "" {
		log.Println("warning: neither GITHUB_CLIENT_ID nor GITHUB_TOKEN is set; GitHub calls will fail until a token is provided")
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvListDefault(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return def
}
