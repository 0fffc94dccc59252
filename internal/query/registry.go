package query

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Registry hands out one Client per session so cached reads made with one
// operator's credentials are never served to another.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*session
	opts    Options
	idle    time.Duration
	logger  *slog.Logger
}

type session struct {
	client   *Client
	lastUsed time.Time
}

// NewRegistry returns a registry whose sessions are dropped after idle
// without use. A zero idle keeps sessions forever.
func NewRegistry(opts Options, idle time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		clients: map[string]*session{},
		opts:    opts,
		idle:    idle,
		logger:  logger,
	}
}

func (r *Registry) For(sessionKey string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.clients[sessionKey]
	if !ok {
		s = &session{client: NewClient(r.opts, r.logger.With("session", sessionKey))}
		r.clients[sessionKey] = s
	}
	s.lastUsed = time.Now()
	return s.client
}

// Sweep drops idle sessions and evicts unused entries from the rest.
func (r *Registry) Sweep(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, s := range r.clients {
		if r.idle > 0 && now.Sub(s.lastUsed) > r.idle {
			delete(r.clients, k)
			continue
		}
		s.client.Sweep(now)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Janitor sweeps every interval until ctx is cancelled.
func Janitor(ctx context.Context, interval time.Duration, sweep func(time.Time)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			sweep(now)
		}
	}
}
