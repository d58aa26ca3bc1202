package app

import (
	"context"
	"time"

	"live-quiz-service/internal/domain"
)

// SessionRegistry is the authoritative code -> session mapping.
type SessionRegistry interface {
	// Put stores the session under its code and reports false if the
	// code is already taken, so callers can regenerate.
	Put(code string, s *Session) bool
	Get(code string) (*Session, bool)
	Delete(code string)
	// Sessions returns a snapshot of all live sessions for the idle sweep.
	Sessions() []*Session
}

// ParticipantIndex resolves live connections back to their session,
// so answer submissions and disconnects need not re-state the code.
type ParticipantIndex interface {
	Put(conn domain.ConnID, code, name string)
	Resolve(conn domain.ConnID) (code, name string, ok bool)
	Drop(conn domain.ConnID)
}

// Publisher fans events out to a session's broadcast group or to a
// single connection. The websocket hub implements it; the core never
// touches a socket.
type Publisher interface {
	Publish(code, event string, payload any)
	SendTo(conn domain.ConnID, event string, payload any)
	Subscribe(conn domain.ConnID, code string)
	Unsubscribe(conn domain.ConnID)
}

// Scheduler defers work without blocking the caller. The returned
// cancel function stops the timer if it has not fired yet.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}
