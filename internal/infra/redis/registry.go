package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"live-quiz-service/internal/app"
)

// SessionRegistry is a Redis-aware implementation of app.SessionRegistry.
// Notes:
//   - Sessions themselves stay in a local map; the broadcast hub and the
//     state machine are in-process by design.
//   - Redis holds liveness markers keyed by game code, so an operator can
//     see live codes (and a future multi-instance router could shard on
//     them).
type SessionRegistry struct {
	client *redis.Client
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (r *SessionRegistry) Put(code string, s *app.Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.sessions[code]; taken {
		return false
	}
	r.sessions[code] = s
	// best-effort liveness marker
	_ = r.client.Set(context.Background(), r.key(code), s.Host(), r.ttl).Err()
	return true
}

func (r *SessionRegistry) Get(code string) (*app.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[code]
	return s, ok
}

func (r *SessionRegistry) Delete(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[code]; !ok {
		return
	}
	delete(r.sessions, code)
	_ = r.client.Del(context.Background(), r.key(code)).Err()
}

func (r *SessionRegistry) Sessions() []*app.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*app.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

func (r *SessionRegistry) key(code string) string {
	return "game:session:" + code
}
