package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmxshop/internal/api"
	"bmxshop/internal/config"
	"bmxshop/internal/localstore"
)

// fakeBackend is a minimal shop API for session tests.
type fakeBackend struct {
	mu            struct{ loginCalls, refreshCalls, profileCalls int }
	validToken    string
	refreshTo     string // token handed out by /api/auth/refresh; "" = refuse
	password      string
	profileExtras map[string]string
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/auth/roles", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `["ROLE_USER","ROLE_ADMIN"]`)
	})

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.mu.loginCalls++
		var req struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != b.password {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"bad credentials"}`)
			return
		}
		fmt.Fprintf(w, `{"id":7,"username":"rider","email":%q,
			"roles":["ROLE_USER"],"firstName":"Ada","lastName":"Lovelace","token":%q}`,
			req.Email, b.validToken)
	})

	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.mu.refreshCalls++
		if b.refreshTo == "" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"refresh rejected"}`)
			return
		}
		fmt.Fprintf(w, `{"id":7,"token":%q}`, b.refreshTo)
	})

	mux.HandleFunc("GET /api/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		b.mu.profileCalls++
		if r.Header.Get("Authorization") != "Bearer "+b.validToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprintf(w, `{"id":7,"username":"rider","email":"r@example.com",
			"roles":["ROLE_USER","ROLE_ADMIN"],"firstName":"Ada","lastName":"Lovelace",
			"address":%q,"phoneNumber":"555-0100"}`, b.profileExtras["address"])
	})

	mux.HandleFunc("GET /api/orders/my-orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+b.validToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `[{"id":1,"status":"SHIPPED","total":"25"}]`)
	})

	mux.HandleFunc("POST /api/auth/change-password", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ CurrentPassword, NewPassword string }
		json.NewDecoder(r.Body).Decode(&req)
		if req.CurrentPassword != b.password {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"message":"current password incorrect"}`)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

func setup(t *testing.T, backend *fakeBackend) (*Manager, *api.Client, *localstore.Store) {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	client := api.New(config.APIConfig{
		BaseURL:        srv.URL,
		Timeout:        5 * time.Second,
		ProbeTimeout:   time.Second,
		ProbeFreshness: 10 * time.Second,
	}, nil)

	storage, err := localstore.Open(t.TempDir())
	require.NoError(t, err)

	mgr := NewManager(client, storage, nil)
	client.SetCredentialSource(mgr)
	return mgr, client, storage
}

func TestLifecycle_AnonymousLoginLogout(t *testing.T) {
	backend := &fakeBackend{validToken: "tok-1", password: "pw"}
	mgr, _, storage := setup(t, backend)

	_, ok := mgr.Current()
	assert.False(t, ok, "fresh manager must be anonymous")

	s, err := mgr.Login(context.Background(), "r@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "rider", s.Username)
	assert.Equal(t, "7", s.UserID)
	assert.Equal(t, "tok-1", s.Credential)

	got, ok := mgr.Current()
	require.True(t, ok)
	assert.Equal(t, "r@example.com", got.Email)

	// Both storage keys written.
	raw, ok, err := storage.Get(localstore.KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok-1", string(raw))

	mgr.Logout()
	_, ok = mgr.Current()
	assert.False(t, ok, "logout must leave the manager anonymous")

	_, ok, err = storage.Get(localstore.KeyUser)
	require.NoError(t, err)
	assert.False(t, ok, "logout must clear the persisted snapshot")
}

func TestLogin_RejectedCredentials(t *testing.T) {
	backend := &fakeBackend{validToken: "tok-1", password: "pw"}
	mgr, _, _ := setup(t, backend)

	_, err := mgr.Login(context.Background(), "r@example.com", "wrong")

	var ae *api.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "bad credentials", ae.Message)

	_, ok := mgr.Current()
	assert.False(t, ok, "failed login must not create a session")
}

func TestLogin_GatedOnAvailability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening

	client := api.New(config.APIConfig{
		BaseURL:        srv.URL,
		Timeout:        2 * time.Second,
		ProbeTimeout:   time.Second,
		ProbeFreshness: 10 * time.Second,
	}, nil)
	storage, err := localstore.Open(t.TempDir())
	require.NoError(t, err)
	mgr := NewManager(client, storage, nil)

	_, err = mgr.Login(context.Background(), "r@example.com", "pw")
	assert.ErrorIs(t, err, api.ErrServerUnavailable)
}

func TestSession_SurvivesRestart(t *testing.T) {
	backend := &fakeBackend{validToken: "tok-1", password: "pw"}
	mgr, client, storage := setup(t, backend)

	_, err := mgr.Login(context.Background(), "r@example.com", "pw")
	require.NoError(t, err)

	restored := NewManager(client, storage, nil)
	s, ok := restored.Current()
	require.True(t, ok, "session must survive a restart")
	assert.Equal(t, "rider", s.Username)
	assert.Equal(t, "tok-1", s.Credential)
}

func TestRestore_CorruptSnapshotIsAnonymous(t *testing.T) {
	backend := &fakeBackend{validToken: "tok-1", password: "pw"}
	_, client, storage := setup(t, backend)

	require.NoError(t, storage.Put(localstore.KeyUser, []byte("{broken")))

	mgr := NewManager(client, storage, nil)
	_, ok := mgr.Current()
	assert.False(t, ok)
}

func TestRestore_SnapshotWithoutCredentialIsAnonymous(t *testing.T) {
	backend := &fakeBackend{validToken: "tok-1", password: "pw"}
	_, client, storage := setup(t, backend)

	require.NoError(t, storage.Put(localstore.KeyUser, []byte(`{"id":"7","username":"rider"}`)))

	mgr := NewManager(client, storage, nil)
	_, ok := mgr.Current()
	assert.False(t, ok, "a session exists only while a credential is held")
}

func TestRefreshProfile_MergesAndKeepsCredential(t *testing.T) {
	backend := &fakeBackend{
		validToken:    "tok-1",
		password:      "pw",
		profileExtras: map[string]string{"address": "1 BMX Lane"},
	}
	mgr, _, _ := setup(t, backend)

	_, err := mgr.Login(context.Background(), "r@example.com", "pw")
	require.NoError(t, err)

	s, err := mgr.RefreshProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1 BMX Lane", s.Address)
	assert.Equal(t, "555-0100", s.PhoneNumber)
	assert.True(t, s.IsAdmin(), "roles refreshed from server")
	assert.Equal(t, "tok-1", s.Credential, "credential untouched by profile merge")
}

func TestRefreshProfile_ExpiredDestroysSession(t *testing.T) {
	backend := &fakeBackend{validToken: "tok-1", password: "pw"}
	mgr, _, _ := setup(t, backend)

	_, err := mgr.Login(context.Background(), "r@example.com", "pw")
	require.NoError(t, err)

	backend.validToken = "rotated-elsewhere" // our token is now stale

	_, err = mgr.RefreshProfile(context.Background())
	var ae *api.AuthError
	require.ErrorAs(t, err, &ae)
	assert.True(t, ae.Expired)

	_, ok := mgr.Current()
	assert.False(t, ok, "expired credential must destroy the session")
}

func TestChangePassword(t *testing.T) {
	backend := &fakeBackend{validToken: "tok-1", password: "pw"}
	mgr, _, _ := setup(t, backend)

	_, err := mgr.Login(context.Background(), "r@example.com", "pw")
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		err := mgr.ChangePassword(context.Background(), "nope", "newpw")
		var ae *api.AuthError
		require.ErrorAs(t, err, &ae)

		_, ok := mgr.Current()
		assert.True(t, ok, "session remains valid after a rejected change")
	})

	t.Run("success keeps session valid", func(t *testing.T) {
		require.NoError(t, mgr.ChangePassword(context.Background(), "pw", "newpw"))
		_, ok := mgr.Current()
		assert.True(t, ok)
	})
}

func TestRefreshAndRetry_EndToEnd(t *testing.T) {
	backend := &fakeBackend{validToken: "tok-2", refreshTo: "tok-2", password: "pw"}
	mgr, client, storage := setup(t, backend)

	// Seed a session holding a stale credential, as if the token
	// expired while the app was closed.
	stale := Session{UserID: "7", Username: "rider", Email: "r@example.com", Credential: "tok-1"}
	data, _ := json.Marshal(stale)
	require.NoError(t, storage.Put(localstore.KeyUser, data))
	mgr.Reload()

	orders, err := client.MyOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 1, backend.mu.refreshCalls, "exactly one refresh")

	// The rotated credential was persisted.
	raw, ok, err := storage.Get(localstore.KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok-2", string(raw))
}

func TestRefreshAndRetry_RefreshRejectedEndToEnd(t *testing.T) {
	backend := &fakeBackend{validToken: "tok-2", refreshTo: "", password: "pw"}
	mgr, client, storage := setup(t, backend)

	stale := Session{UserID: "7", Username: "rider", Email: "r@example.com", Credential: "tok-1"}
	data, _ := json.Marshal(stale)
	require.NoError(t, storage.Put(localstore.KeyUser, data))
	mgr.Reload()

	_, err := client.MyOrders(context.Background())
	require.ErrorIs(t, err, api.ErrSessionExpired)
	assert.Equal(t, 1, backend.mu.refreshCalls)
}

func TestSessionHelpers(t *testing.T) {
	s := Session{Username: "rider", Roles: []string{"ROLE_USER"}}
	assert.False(t, s.IsAdmin())
	assert.Equal(t, "rider", s.DisplayName())

	s.FirstName, s.LastName = "Ada", "Lovelace"
	assert.True(t, strings.HasPrefix(s.DisplayName(), "Ada"))

	s.Roles = append(s.Roles, "ROLE_ADMIN")
	assert.True(t, s.IsAdmin())
}
