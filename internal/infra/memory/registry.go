package memory

import (
	"sync"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// SessionRegistry is the in-memory implementation of app.SessionRegistry.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
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
	delete(r.sessions, code)
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

type indexEntry struct {
	code string
	name string
}

// ParticipantIndex maps live connections to (session code, player name).
type ParticipantIndex struct {
	mu      sync.RWMutex
	entries map[domain.ConnID]indexEntry
}

func NewParticipantIndex() *ParticipantIndex {
	return &ParticipantIndex{
		entries: make(map[domain.ConnID]indexEntry),
	}
}

func (i *ParticipantIndex) Put(conn domain.ConnID, code, name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[conn] = indexEntry{code: code, name: name}
}

func (i *ParticipantIndex) Resolve(conn domain.ConnID) (code, name string, ok bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	e, ok := i.entries[conn]
	return e.code, e.name, ok
}

func (i *ParticipantIndex) Drop(conn domain.ConnID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.entries, conn)
}
