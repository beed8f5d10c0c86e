package session

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// UnknownName is the placeholder for identity fields an agent did not report.
const UnknownName = "Unknown"

var ErrNotFound = errors.New("session not found")

// Registry tracks one session per connected agent, keyed by connection id.
// It is safe for concurrent use; the hub additionally serializes mutations
// so registry changes and the broadcasts derived from them stay in order.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register inserts or replaces the session for a connection. Missing
// identity fields fall back to "Unknown".
func (r *Registry) Register(connID string, reg Registration, now time.Time) Session {
	driver := reg.DriverName
	if driver == "" {
		driver = UnknownName
	}
	computer := reg.ComputerName
	if computer == "" {
		computer = UnknownName
	}

	s := &Session{
		ID:           connID,
		DriverName:   driver,
		ComputerName: computer,
		ConnectedAt:  now,
		LastUpdateAt: now,
	}

	r.mu.Lock()
	r.sessions[connID] = s
	r.mu.Unlock()
	return *s
}

// Touch refreshes the session's activity timestamp. It reports ErrNotFound
// for connections that never registered; callers treat those as invalid
// data sources and drop the associated message.
func (r *Registry) Touch(connID string, now time.Time) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return Session{}, ErrNotFound
	}
	s.LastUpdateAt = now
	return *s, nil
}

// Remove deletes and returns the session. Removing a connection twice
// reports ErrNotFound on the second call.
func (r *Registry) Remove(connID string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return Session{}, ErrNotFound
	}
	delete(r.sessions, connID)
	return *s, nil
}

// Snapshot returns a copy of every current session ordered by connect time.
// Mutating the registry afterwards does not affect the returned slice.
func (r *Registry) Snapshot() []Session {
	r.mu.RLock()
	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ConnectedAt.Equal(out[j].ConnectedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ConnectedAt.Before(out[j].ConnectedAt)
	})
	return out
}

// Count reports the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
