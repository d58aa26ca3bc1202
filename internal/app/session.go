package app

import (
	"sort"
	"sync"
	"time"

	"live-quiz-service/internal/domain"
)

// leaderboardSize caps the game-ended leaderboard.
const leaderboardSize = 5

// Session is the in-memory state of one live game. The quiz snapshot is
// taken at creation time; later catalog edits never reach a running
// session. All mutable fields are guarded by mu, and every mutation
// re-checks closed under the same lock, so a timer or sweep firing
// against a deleted session is a no-op.
type Session struct {
	code string
	host string
	quiz domain.Quiz
	now  func() time.Time

	mu           sync.Mutex
	state        domain.SessionState
	current      int
	players      []*domain.Participant
	lastActivity time.Time
	closed       bool
}

// NewSession constructs a session in the waiting state with no players.
func NewSession(code, host string, quiz domain.Quiz) *Session {
	return NewSessionWithClock(code, host, quiz, time.Now)
}

// NewSessionWithClock constructs a session on an injected clock. The
// service passes its own clock through so activity timestamps and the
// idle sweep agree; tests pass a fake for deterministic timestamps.
func NewSessionWithClock(code, host string, quiz domain.Quiz, now func() time.Time) *Session {
	return &Session{
		code:         code,
		host:         host,
		quiz:         quiz,
		now:          now,
		state:        domain.StateWaiting,
		current:      -1,
		lastActivity: now(),
	}
}

func (s *Session) Code() string { return s.code }

func (s *Session) Host() string { return s.host }

func (s *Session) QuizTitle() string { return s.quiz.Title }

func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// join appends a participant while the session is still in the lobby.
func (s *Session) join(conn domain.ConnID, name string) (domain.Participant, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.Participant{}, 0, domain.ErrSessionNotFound
	}
	if s.state != domain.StateWaiting {
		return domain.Participant{}, 0, domain.ErrSessionAlreadyStarted
	}
	for _, p := range s.players {
		if p.Name == name {
			return domain.Participant{}, 0, domain.ErrNameTaken
		}
	}

	p := &domain.Participant{Conn: conn, Name: name, LastAnswered: -1}
	s.players = append(s.players, p)
	s.lastActivity = s.now()
	return *p, len(s.players), nil
}

// start moves the session to playing and arms the first question.
func (s *Session) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSessionNotFound
	}
	if s.state != domain.StateWaiting {
		return domain.ErrSessionAlreadyStarted
	}
	if len(s.players) == 0 {
		return domain.ErrNoPlayers
	}

	s.state = domain.StatePlaying
	s.current = 0
	s.lastActivity = s.now()
	return nil
}

// answer scores a submission against the current question. Repeat
// submissions for the same question are answered idempotently: the
// result is recomputed but the score never changes twice.
func (s *Session) answer(conn domain.ConnID, option int) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.AnswerResult{}, domain.ErrSessionNotFound
	}
	if s.state != domain.StatePlaying {
		return domain.AnswerResult{}, domain.ErrNoActiveQuestion
	}

	var player *domain.Participant
	for _, p := range s.players {
		if p.Conn == conn {
			player = p
			break
		}
	}
	if player == nil {
		return domain.AnswerResult{}, domain.ErrParticipantNotFound
	}

	q := s.quiz.Questions[s.current]
	correct := option == q.Correct
	if correct && player.LastAnswered != s.current {
		player.Score += 100
	}
	player.LastAnswered = s.current
	s.lastActivity = s.now()

	return domain.AnswerResult{
		Correct:       correct,
		CorrectAnswer: q.Options[q.Correct],
	}, nil
}

// advance moves to the next question, or finishes the game when the
// last question has been played. Reaching finished is the sole path
// out of playing.
func (s *Session) advance() (prompt domain.QuestionPrompt, ended bool, board []domain.LeaderboardEntry, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.QuestionPrompt{}, false, nil, domain.ErrSessionNotFound
	}
	if s.state != domain.StatePlaying {
		return domain.QuestionPrompt{}, false, nil, domain.ErrNoActiveQuestion
	}

	s.current++
	s.lastActivity = s.now()

	if s.current >= len(s.quiz.Questions) {
		s.state = domain.StateFinished
		return domain.QuestionPrompt{}, true, s.leaderboardLocked(), nil
	}
	return s.promptLocked(), false, nil, nil
}

// currentPrompt returns the question payload for the question in play.
// Used by the deferred first-question broadcast, which re-checks state
// after the presentation delay.
func (s *Session) currentPrompt() (domain.QuestionPrompt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != domain.StatePlaying {
		return domain.QuestionPrompt{}, false
	}
	return s.promptLocked(), true
}

func (s *Session) promptLocked() domain.QuestionPrompt {
	q := s.quiz.Questions[s.current]
	limit := q.TimeLimit
	if limit <= 0 {
		limit = domain.DefaultTimeLimit
	}
	return domain.QuestionPrompt{
		Question:       q.Text,
		Options:        q.Options,
		QuestionNumber: s.current + 1,
		TotalQuestions: len(s.quiz.Questions),
		TimeLimit:      limit,
	}
}

// leaderboardLocked ranks players by score descending. The sort is
// stable so ties keep join order, then truncates to the top entries.
func (s *Session) leaderboardLocked() []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(s.players))
	for _, p := range s.players {
		entries = append(entries, domain.LeaderboardEntry{Name: p.Name, Score: p.Score})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > leaderboardSize {
		entries = entries[:leaderboardSize]
	}
	return entries
}

// removePlayer drops the participant owning conn, reporting the name
// and remaining count for the player-left broadcast.
func (s *Session) removePlayer(conn domain.ConnID) (name string, total int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", 0, false
	}
	for i, p := range s.players {
		if p.Conn == conn {
			name = p.Name
			s.players = append(s.players[:i], s.players[i+1:]...)
			s.lastActivity = s.now()
			return name, len(s.players), true
		}
	}
	return "", 0, false
}

// touch stamps activity for admin actions that mutate nothing else.
func (s *Session) touch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionNotFound
	}
	s.lastActivity = s.now()
	return nil
}

// idleFor reports whether the session has seen no activity within d.
func (s *Session) idleFor(d time.Duration, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && now.Sub(s.lastActivity) > d
}

// close marks the session dead and returns the connections of its
// remaining players so the caller can clear the participant index.
// Idempotent: a second close returns nothing.
func (s *Session) close() []domain.ConnID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	conns := make([]domain.ConnID, 0, len(s.players))
	for _, p := range s.players {
		conns = append(conns, p.Conn)
	}
	return conns
}
