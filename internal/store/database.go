package store

import (
	"database/sql"
	"fmt"
	"time"

	"termbridge-backend/internal/db"
)

// DatabaseStore persists session authentication in PostgreSQL, keyed by
// session ID. Multi-user deployments use this; single-user ones fall back to
// the file token store.
type DatabaseStore struct {
	db *db.DB
}

func NewDatabaseStore(database *db.DB) *DatabaseStore {
	return &DatabaseStore{db: database}
}

// SessionAuth is one session's GitHub credential row.
type SessionAuth struct {
	SessionID string
	Token     string
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveSession inserts or refreshes the credential row for a session.
func (ds *DatabaseStore) SaveSession(sessionID, token, username string) error {
	if sessionID == "" || token == "" || username == "" {
		return fmt.Errorf("session_id, token, and username are required")
	}

	query := `
		INSERT INTO session_auth (session_id, github_token, github_username, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (session_id)
		DO UPDATE SET
			github_token = EXCLUDED.github_token,
			github_username = EXCLUDED.github_username,
			updated_at = NOW()
	`
	if _, err := ds.db.Exec(query, sessionID, token, username); err != nil {
		return fmt.Errorf("save session auth: %w", err)
	}
	return nil
}

// GetSession returns the credential row for a session, or nil when the
// session has never authenticated.
func (ds *DatabaseStore) GetSession(sessionID string) (*SessionAuth, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	var auth SessionAuth
	query := `
		SELECT session_id, github_token, github_username, created_at, updated_at
		FROM session_auth
		WHERE session_id = $1
	`
	err := ds.db.QueryRow(query, sessionID).Scan(
		&auth.SessionID,
		&auth.Token,
		&auth.Username,
		&auth.CreatedAt,
		&auth.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session auth: %w", err)
	}
	return &auth, nil
}

// DeleteSession drops the credential row for a session.
func (ds *DatabaseStore) DeleteSession(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if _, err := ds.db.Exec(`DELETE FROM session_auth WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete session auth: %w", err)
	}
	return nil
}
