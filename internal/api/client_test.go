package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmxshop/internal/config"
)

// fakeCreds is a scriptable CredentialSource.
type fakeCreds struct {
	token        atomic.Value // string
	refreshCalls atomic.Int32
	refreshErr   error
	nextToken    string
}

func newFakeCreds(token string) *fakeCreds {
	fc := &fakeCreds{}
	fc.token.Store(token)
	return fc
}

func (f *fakeCreds) Credential() string {
	return f.token.Load().(string)
}

func (f *fakeCreds) RefreshCredential(ctx context.Context) error {
	f.refreshCalls.Add(1)
	if f.refreshErr != nil {
		return f.refreshErr
	}
	f.token.Store(f.nextToken)
	return nil
}

func testClient(t *testing.T, srvURL string) *Client {
	t.Helper()
	return New(config.APIConfig{
		BaseURL:        srvURL,
		Timeout:        5 * time.Second,
		ProbeTimeout:   time.Second,
		ProbeFreshness: 10 * time.Second,
	}, nil)
}

func TestDoAuthed_RefreshAndRetryOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.Header.Get("Authorization") {
		case "Bearer fresh":
			fmt.Fprint(w, `[{"id":1,"status":"SHIPPED","total":"25"}]`)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	creds := newFakeCreds("stale")
	creds.nextToken = "fresh"
	c.SetCredentialSource(creds)

	orders, err := c.MyOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "SHIPPED", orders[0].Status)

	assert.Equal(t, int32(2), hits.Load(), "original request must be retried exactly once")
	assert.Equal(t, int32(1), creds.refreshCalls.Load(), "exactly one refresh attempt")
}

func TestDoAuthed_RefreshFailureIsTerminal(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	creds := newFakeCreds("stale")
	creds.refreshErr = errors.New("refresh rejected")
	c.SetCredentialSource(creds)

	_, err := c.MyOrders(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)

	assert.Equal(t, int32(1), hits.Load(), "no retry after failed refresh")
	assert.Equal(t, int32(1), creds.refreshCalls.Load())
}

func TestDoAuthed_SecondRejectionReturnedAsIs(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	creds := newFakeCreds("stale")
	creds.nextToken = "still-bad"
	c.SetCredentialSource(creds)

	_, err := c.MyOrders(context.Background())

	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, int32(2), hits.Load(), "exactly two attempts, never a third")
	assert.Equal(t, int32(1), creds.refreshCalls.Load())
}

func TestDoAuthed_NoRefreshForNon401(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"server error", http.StatusInternalServerError, func(t *testing.T, err error) {
			var se *ServerError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
		}},
		{"not found", http.StatusNotFound, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrNotFound)
		}},
		{"validation", http.StatusUnprocessableEntity, func(t *testing.T, err error) {
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			c := testClient(t, srv.URL)
			creds := newFakeCreds("tok")
			c.SetCredentialSource(creds)

			_, err := c.MyOrders(context.Background())
			require.Error(t, err)
			tc.check(t, err)

			assert.Equal(t, int32(1), hits.Load(), "non-401 must not be retried")
			assert.Equal(t, int32(0), creds.refreshCalls.Load(), "non-401 must not trigger refresh")
		})
	}
}

func TestDoAuthed_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := testClient(t, srv.URL)
	c.SetCredentialSource(newFakeCreds("tok"))

	_, err := c.MyOrders(context.Background())
	assert.ErrorIs(t, err, ErrServerUnavailable)
}

func TestSend_AttachesBearer(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	c.SetCredentialSource(newFakeCreds("tok-abc"))

	_, err := c.MyOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", got)
}

func TestSend_AnonymousWithoutSource(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)

	_, err := c.Products(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got, "anonymous requests carry no Authorization header")
}

func TestLogin(t *testing.T) {
	t.Run("success returns payload with token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/auth/login", r.URL.Path)
			fmt.Fprint(w, `{"id":4,"username":"rider","email":"r@example.com",
				"roles":["ROLE_USER"],"token":"tok-1"}`)
		}))
		defer srv.Close()

		p, err := testClient(t, srv.URL).Login(context.Background(), "r@example.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", p.Credential())
		assert.Equal(t, "rider", p.Username)
		assert.Equal(t, "4", string(p.ID))
	})

	t.Run("rejection maps to AuthError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"bad credentials"}`)
		}))
		defer srv.Close()

		_, err := testClient(t, srv.URL).Login(context.Background(), "r@example.com", "wrong")

		var ae *AuthError
		require.ErrorAs(t, err, &ae)
		assert.False(t, ae.Expired, "login rejection is not session expiry")
		assert.Equal(t, "bad credentials", ae.Message)
	})

	t.Run("token-less 200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"id":4}`)
		}))
		defer srv.Close()

		_, err := testClient(t, srv.URL).Login(context.Background(), "r@example.com", "pw")
		assert.Error(t, err)
	})

	t.Run("accessToken spelling accepted", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"id":"4","accessToken":"tok-2"}`)
		}))
		defer srv.Close()

		p, err := testClient(t, srv.URL).Login(context.Background(), "r@example.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, "tok-2", p.Credential())
	})
}

func TestRegister_RejectionIsNotExpiry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/register", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"email already registered"}`)
	}))
	defer srv.Close()

	err := testClient(t, srv.URL).Register(context.Background(), RegisterRequest{
		Username: "rider",
		Email:    "r@example.com",
		Password: "pw",
	})

	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.False(t, ae.Expired, "sign-up rejection is not session expiry")
	assert.Equal(t, "email already registered", ae.Message)
}

func TestAddReview_RequiresCredential(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)

	_, err := c.AddReview(context.Background(), "1", ReviewInput{Rating: 5, Comment: "great"})

	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, int32(0), hits.Load(), "request must not be issued without a credential")
}
