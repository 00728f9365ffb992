package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "go-microplastic-inspector/internal/errors"
	"go-microplastic-inspector/internal/observer"
)

// Registry holds the open workspaces keyed by session ID.
// A workspace lives until it has been idle for longer than the idle timeout.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Workspace

	deps        Dependencies
	idleTimeout time.Duration
	now         func() time.Time
}

// NewRegistry creates an empty registry. A non-positive idle timeout disables eviction.
func NewRegistry(deps Dependencies, idleTimeout time.Duration) *Registry {
	return &Registry{
		sessions:    make(map[string]*Workspace),
		deps:        deps,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// Create opens a new workspace with a fresh session ID
func (r *Registry) Create(ctx context.Context) *Workspace {
	ws := NewWorkspace(uuid.NewString(), r.deps)
	ws.now = r.now
	ws.touch()

	r.mu.Lock()
	r.sessions[ws.ID()] = ws
	r.mu.Unlock()

	ws.publish(ctx, observer.SessionEvent{EventType: observer.SessionOpened})
	return ws
}

// Get returns an open workspace
func (r *Registry) Get(id string) (*Workspace, error) {
	r.mu.RLock()
	ws, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewNotFoundError("session not found", nil)
	}
	return ws, nil
}

// Len returns the number of open workspaces
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Evict drops every workspace idle for longer than the timeout and returns how many went
func (r *Registry) Evict(ctx context.Context) int {
	if r.idleTimeout <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTimeout)

	var evicted []*Workspace
	r.mu.Lock()
	for id, ws := range r.sessions {
		if ws.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			evicted = append(evicted, ws)
		}
	}
	r.mu.Unlock()

	for _, ws := range evicted {
		ws.publish(ctx, observer.SessionEvent{
			EventType: observer.SessionEvicted,
			Count:     ws.history.Len(),
		})
	}
	return len(evicted)
}

// Run evicts idle workspaces every interval until ctx is done
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.idleTimeout <= 0 {
		return
	}
	if interval <= 0 {
		interval = r.idleTimeout / 4
	}
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict(ctx)
		}
	}
}
