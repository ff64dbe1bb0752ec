package session

import (
	"context"
	"errors"
	"sync"

	"whatsup/internal/logging"
	"whatsup/internal/store/sessiondb"
)

// Storage keys for the persisted session. Both are written and cleared
// together; the store never holds one without the other.
const (
	keyToken    = "session:token"
	keyUsername = "session:username"
)

// Storage is the durable local storage behind the session.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// AuthClient is the one backend call the session needs. *api.Client
// satisfies it.
type AuthClient interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Manager holds the current auth token and username. It is injected into
// every component that needs authentication state; there is no package
// global. Reads are frequent, writes happen on login/logout only.
type Manager struct {
	mu       sync.RWMutex
	token    string
	username string

	store Storage
	auth  AuthClient
}

// New builds a manager and initializes it from storage. A missing stored
// value means "not authenticated" and is not an error.
func New(ctx context.Context, store Storage, auth AuthClient) (*Manager, error) {
	m := &Manager{store: store, auth: auth}
	token, err := store.Get(ctx, keyToken)
	if err != nil && !errors.Is(err, sessiondb.ErrNotFound) {
		return nil, err
	}
	username, err := store.Get(ctx, keyUsername)
	if err != nil && !errors.Is(err, sessiondb.ErrNotFound) {
		return nil, err
	}
	// The pair is atomic: a half-written session is treated as absent.
	if token != "" && username != "" {
		m.token, m.username = token, username
	}
	return m, nil
}

// Login sends credentials to the backend and, on success, stores the token
// and the supplied username together and persists both. On failure nothing
// changes and the backend error (api.AuthError for bad credentials) is
// returned as-is.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	token, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, keyToken, token); err != nil {
		return err
	}
	if err := m.store.Set(ctx, keyUsername, username); err != nil {
		return err
	}
	m.mu.Lock()
	m.token, m.username = token, username
	m.mu.Unlock()
	logging.Info("session_login", map[string]any{"username": username})
	return nil
}

// Logout clears the token and username from memory and persistence. It is
// idempotent and always succeeds; storage hiccups are logged, not raised.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.token, m.username = "", ""
	m.mu.Unlock()
	if err := m.store.Delete(ctx, keyToken); err != nil {
		logging.Warn("session_clear_token", map[string]any{"error": err.Error()})
	}
	if err := m.store.Delete(ctx, keyUsername); err != nil {
		logging.Warn("session_clear_username", map[string]any{"error": err.Error()})
	}
	logging.Info("session_logout", nil)
}

// IsAuthenticated is true iff a token is present.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}

// Token returns the current token, or "". Satisfies api.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Username returns the logged-in username, or "".
func (m *Manager) Username() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.username
}
