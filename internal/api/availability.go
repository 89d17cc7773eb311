package api

import (
	"context"
	"sync"
	"time"
)

// Availability is the cached view of backend reachability.
type Availability struct {
	// Available is meaningful only when Known is true.
	Known        bool
	Available    bool
	CheckedAt    time.Time
	ErrorMessage string
}

// AvailabilityCache avoids issuing doomed requests when the backend is
// known unreachable. A probe result is reused for the freshness window;
// a check inside the window never touches the network. Only login and
// register are gated on it.
type AvailabilityCache struct {
	mu        sync.Mutex
	known     bool
	available bool
	checkedAt time.Time
	errMsg    string

	window time.Duration
	probe  func(context.Context) error
	now    func() time.Time
}

func newAvailabilityCache(window time.Duration, probe func(context.Context) error, now func() time.Time) *AvailabilityCache {
	return &AvailabilityCache{window: window, probe: probe, now: now}
}

// Check returns the cached availability when fresh, otherwise probes
// once and caches the outcome. A probe that gets any HTTP response
// counts as available; only a transport failure counts as down.
func (a *AvailabilityCache) Check(ctx context.Context) Availability {
	a.mu.Lock()
	if a.known && a.now().Sub(a.checkedAt) < a.window {
		st := a.snapshotLocked()
		a.mu.Unlock()
		return st
	}
	a.mu.Unlock()

	err := a.probe(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.known = true
	a.checkedAt = a.now()
	if err != nil {
		a.available = false
		a.errMsg = err.Error()
	} else {
		a.available = true
		a.errMsg = ""
	}
	return a.snapshotLocked()
}

// IsAvailable is the boolean form of Check.
func (a *AvailabilityCache) IsAvailable(ctx context.Context) bool {
	return a.Check(ctx).Available
}

// Reset drops the cached result; the next check probes again. Called
// on logout and from test setup.
func (a *AvailabilityCache) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.known = false
	a.available = false
	a.checkedAt = time.Time{}
	a.errMsg = ""
}

// markReachable records that some request got an HTTP response. It
// does not extend the freshness window.
func (a *AvailabilityCache) markReachable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.available = true
	a.errMsg = ""
}

// markUnreachable records a transport-level failure seen by a regular
// request.
func (a *AvailabilityCache) markUnreachable(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.available = false
	a.errMsg = err.Error()
}

func (a *AvailabilityCache) snapshotLocked() Availability {
	return Availability{
		Known:        a.known,
		Available:    a.available,
		CheckedAt:    a.checkedAt,
		ErrorMessage: a.errMsg,
	}
}
