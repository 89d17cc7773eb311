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

func TestAvailability_ProbeReusedWithinWindow(t *testing.T) {
	var probes atomic.Int32
	now := time.Now()
	clock := func() time.Time { return now }

	cache := newAvailabilityCache(10*time.Second, func(ctx context.Context) error {
		probes.Add(1)
		return nil
	}, clock)

	assert.True(t, cache.IsAvailable(context.Background()))
	assert.True(t, cache.IsAvailable(context.Background()))
	assert.Equal(t, int32(1), probes.Load(), "second check inside the window must not probe")

	// Window elapses; the next check probes again.
	now = now.Add(11 * time.Second)
	assert.True(t, cache.IsAvailable(context.Background()))
	assert.Equal(t, int32(2), probes.Load())
}

func TestAvailability_TransportFailureMeansDown(t *testing.T) {
	cache := newAvailabilityCache(10*time.Second, func(ctx context.Context) error {
		return errors.New("connection refused")
	}, time.Now)

	st := cache.Check(context.Background())
	assert.True(t, st.Known)
	assert.False(t, st.Available)
	assert.Contains(t, st.ErrorMessage, "connection refused")
}

func TestAvailability_HTTPErrorStatusMeansUp(t *testing.T) {
	// Probe endpoint answering 500: the server responded, so it is up.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/roles", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	assert.True(t, c.Availability().IsAvailable(context.Background()))
}

func TestAvailability_Reset(t *testing.T) {
	var probes atomic.Int32
	cache := newAvailabilityCache(time.Hour, func(ctx context.Context) error {
		probes.Add(1)
		return nil
	}, time.Now)

	cache.IsAvailable(context.Background())
	cache.Reset()

	st := cache.Check(context.Background())
	assert.True(t, st.Known)
	assert.Equal(t, int32(2), probes.Load(), "reset must force a fresh probe")
}

func TestAvailability_PassiveMarksFromRegularTraffic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))

	cfg := config.APIConfig{
		BaseURL:        srv.URL,
		Timeout:        2 * time.Second,
		ProbeTimeout:   time.Second,
		ProbeFreshness: 10 * time.Second,
	}
	c := New(cfg, nil)

	_, err := c.Products(context.Background())
	require.NoError(t, err)

	srv.Close()
	_, err = c.Products(context.Background())
	require.ErrorIs(t, err, ErrServerUnavailable)
}
