package store

import "sync"

// MemoryStore holds per-session state that only matters while the process is
// up: in-flight OAuth states (CSRF protection) and the username shown after a
// successful authentication. Durable token storage lives in the database or
// file stores.
type MemoryStore struct {
	mu sync.RWMutex
	// OAuth state per session, plus the reverse mapping so the callback can
	// recover the session when the popup carries no cookie.
	oauthStateBySession map[string]string
	sessionByOAuthState map[string]string
	usernameBySession   map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		oauthStateBySession: make(map[string]string),
		sessionByOAuthState: make(map[string]string),
		usernameBySession:   make(map[string]string),
	}
}

func (m *MemoryStore) SetOAuthState(sessionID, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oauthStateBySession[sessionID] = state
	m.sessionByOAuthState[state] = sessionID
}

func (m *MemoryStore) GetOAuthState(sessionID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.oauthStateBySession[sessionID]
}

func (m *MemoryStore) ClearOAuthState(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.oauthStateBySession[sessionID]; ok {
		delete(m.sessionByOAuthState, st)
		delete(m.oauthStateBySession, sessionID)
	}
}

func (m *MemoryStore) GetSessionByOAuthState(state string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionByOAuthState[state]
}

func (m *MemoryStore) SetUsername(sessionID, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usernameBySession[sessionID] = username
}

func (m *MemoryStore) GetUsername(sessionID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usernameBySession[sessionID]
}

func (m *MemoryStore) ClearUsername(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.usernameBySession, sessionID)
}
