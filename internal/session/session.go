// Package session owns the authenticated identity: the bearer
// credential plus the cached user profile, persisted across restarts
// under the "user" and "token" storage keys. A session exists if and
// only if a credential is held; without one every consumer treats the
// user as anonymous.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"bmxshop/internal/api"
	"bmxshop/internal/localstore"
)

// Session is the authenticated identity snapshot.
type Session struct {
	UserID      string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	Address     string   `json:"address,omitempty"`
	PhoneNumber string   `json:"phoneNumber,omitempty"`
	// Credential is duplicated under the "token" key for quick access.
	Credential string `json:"accessToken"`
}

// IsAdmin reports whether the session carries the admin role.
func (s Session) IsAdmin() bool {
	return slices.Contains(s.Roles, "ROLE_ADMIN")
}

// DisplayName prefers the real name over the username.
func (s Session) DisplayName() string {
	if s.FirstName != "" {
		return s.FirstName + " " + s.LastName
	}
	return s.Username
}

// Manager mediates login, logout, and profile operations, and serves
// as the client's CredentialSource for the refresh-and-retry protocol.
type Manager struct {
	mu      sync.Mutex
	client  *api.Client
	storage *localstore.Store
	logger  *zap.Logger
	current *Session
}

var _ api.CredentialSource = (*Manager)(nil)

// NewManager restores any persisted session. A snapshot without a
// credential, or one that does not parse, yields an anonymous manager.
func NewManager(client *api.Client, storage *localstore.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{client: client, storage: storage, logger: logger}
	m.restore()
	return m
}

func (m *Manager) restore() {
	data, ok, err := m.storage.Get(localstore.KeyUser)
	if err != nil || !ok {
		return
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		m.logger.Warn("discarding unparsable session snapshot", zap.Error(err))
		return
	}
	if s.Credential == "" {
		return
	}
	m.current = &s
}

// persistLocked writes both snapshot keys; called with the lock held.
func (m *Manager) persistLocked() {
	if m.current == nil {
		_ = m.storage.Delete(localstore.KeyUser)
		_ = m.storage.Delete(localstore.KeyToken)
		return
	}
	data, err := json.Marshal(m.current)
	if err != nil {
		m.logger.Error("session snapshot marshal failed", zap.Error(err))
		return
	}
	if err := m.storage.Put(localstore.KeyUser, data); err != nil {
		m.logger.Error("session snapshot write failed", zap.Error(err))
	}
	if err := m.storage.Put(localstore.KeyToken, []byte(m.current.Credential)); err != nil {
		m.logger.Error("token write failed", zap.Error(err))
	}
}

// Current returns the persisted session, or false when anonymous.
// Pure read, no network call.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// Credential implements api.CredentialSource.
func (m *Manager) Credential() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.Credential
}

// Login checks server availability first (fast, friendly failure when
// the backend is down), then exchanges credentials. Success persists
// the session; any failure leaves the previous state untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	status := m.client.Availability().Check(ctx)
	if !status.Available {
		if status.ErrorMessage != "" {
			return Session{}, fmt.Errorf("%w: %s", api.ErrServerUnavailable, status.ErrorMessage)
		}
		return Session{}, api.ErrServerUnavailable
	}

	payload, err := m.client.Login(ctx, email, password)
	if err != nil {
		return Session{}, err
	}

	s := sessionFromPayload(payload)

	m.mu.Lock()
	m.current = &s
	m.persistLocked()
	m.mu.Unlock()

	m.logger.Info("logged in", zap.String("email", s.Email))
	return s, nil
}

// Register creates an account; like login it is gated on availability.
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest) error {
	if !m.client.Availability().IsAvailable(ctx) {
		return api.ErrServerUnavailable
	}
	return m.client.Register(ctx, req)
}

// Logout clears the session from memory and storage. Local-only: no
// server call, and the availability cache is reset with it.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.current = nil
	m.persistLocked()
	m.mu.Unlock()

	m.client.Availability().Reset()
	m.logger.Info("logged out")
}

// RefreshProfile fetches the authoritative profile and merges it into
// the session (credential untouched). On 401 the session is destroyed
// and an expired AuthError surfaces; navigation is the caller's job.
func (m *Manager) RefreshProfile(ctx context.Context) (Session, error) {
	if _, ok := m.Current(); !ok {
		return Session{}, &api.AuthError{Message: "not logged in"}
	}

	profile, err := m.client.FetchProfile(ctx)
	if err != nil {
		return Session{}, m.invalidateOnExpiry(err)
	}
	return m.mergeProfile(profile), nil
}

// UpdateProfile sends partial fields and merges the accepted copy.
// Server-side rejections pass through as ValidationError.
func (m *Manager) UpdateProfile(ctx context.Context, fields api.ProfileUpdate) (Session, error) {
	if _, ok := m.Current(); !ok {
		return Session{}, &api.AuthError{Message: "not logged in"}
	}

	profile, err := m.client.UpdateProfile(ctx, fields)
	if err != nil {
		return Session{}, m.invalidateOnExpiry(err)
	}
	return m.mergeProfile(profile), nil
}

// ChangePassword verifies the current password server-side. The
// session credential remains valid on success.
func (m *Manager) ChangePassword(ctx context.Context, current, next string) error {
	if _, ok := m.Current(); !ok {
		return &api.AuthError{Message: "not logged in"}
	}
	return m.client.ChangePassword(ctx, current, next)
}

// RefreshCredential implements api.CredentialSource: obtain a fresh
// token for the held identity. Called by the client at most once per
// rejected request.
func (m *Manager) RefreshCredential(ctx context.Context) error {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return errors.New("no session to refresh")
	}
	email, stale := m.current.Email, m.current.Credential
	m.mu.Unlock()

	payload, err := m.client.RefreshCredentialToken(ctx, email, stale)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		// Logged out while the refresh was in flight; drop the result.
		return errors.New("session gone")
	}
	m.current.Credential = payload.Credential()
	m.persistLocked()
	m.logger.Debug("credential refreshed")
	return nil
}

// Reload re-reads the snapshot from storage, for watcher-driven
// updates from another process.
func (m *Manager) Reload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	m.restore()
}

// invalidateOnExpiry destroys the local session when err signals an
// expired credential, then returns err unchanged.
func (m *Manager) invalidateOnExpiry(err error) error {
	var ae *api.AuthError
	if errors.As(err, &ae) && ae.Expired {
		m.mu.Lock()
		m.current = nil
		m.persistLocked()
		m.mu.Unlock()
		m.logger.Info("session invalidated by expired credential")
	}
	return err
}

func (m *Manager) mergeProfile(p api.Profile) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Session{}
	}
	if p.Username != "" {
		m.current.Username = p.Username
	}
	if p.Email != "" {
		m.current.Email = p.Email
	}
	if p.Roles != nil {
		m.current.Roles = p.Roles
	}
	m.current.FirstName = p.FirstName
	m.current.LastName = p.LastName
	m.current.Address = p.Address
	m.current.PhoneNumber = p.PhoneNumber
	if string(p.ID) != "" {
		m.current.UserID = string(p.ID)
	}
	m.persistLocked()
	return *m.current
}

func sessionFromPayload(p api.AuthPayload) Session {
	username := p.Username
	if username == "" {
		username = p.Email
	}
	return Session{
		UserID:     string(p.ID),
		Username:   username,
		Email:      p.Email,
		Roles:      p.Roles,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Credential: p.Credential(),
	}
}
