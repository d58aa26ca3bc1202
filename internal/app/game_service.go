package app

import (
	"context"
	"log"
	"time"

	"live-quiz-service/internal/domain"
)

// Config tunes the session lifecycle timers.
type Config struct {
	// StartDelay separates the game-started signal from the first
	// question, giving clients time to render the transition.
	StartDelay time.Duration
	// FinishGrace is how long a finished session lingers before removal.
	FinishGrace time.Duration
	// IdleTimeout evicts sessions with no activity for this long.
	IdleTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.StartDelay <= 0 {
		c.StartDelay = 2 * time.Second
	}
	if c.FinishGrace <= 0 {
		c.FinishGrace = 5 * time.Minute
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = time.Hour
	}
	return c
}

// GameService contains the live game use cases: session creation,
// joins, lockstep question progression, scoring, and disposal. All
// collaborators are injected; the service owns no sockets and no
// storage of its own.
type GameService struct {
	registry SessionRegistry
	index    ParticipantIndex
	quizzes  QuizRepository
	pub      Publisher
	sched    Scheduler
	cfg      Config

	genCode func() string
	now     func() time.Time
}

func NewGameService(registry SessionRegistry, index ParticipantIndex, quizzes QuizRepository, pub Publisher, sched Scheduler, cfg Config) *GameService {
	return &GameService{
		registry: registry,
		index:    index,
		quizzes:  quizzes,
		pub:      pub,
		sched:    sched,
		cfg:      cfg.withDefaults(),
		genCode:  newGameCode,
		now:      time.Now,
	}
}

// NewGameServiceWithClock is test-only: it fixes the code source and
// clock for deterministic sessions.
func NewGameServiceWithClock(registry SessionRegistry, index ParticipantIndex, quizzes QuizRepository, pub Publisher, sched Scheduler, cfg Config, genCode func() string, now func() time.Time) *GameService {
	s := NewGameService(registry, index, quizzes, pub, sched, cfg)
	if genCode != nil {
		s.genCode = genCode
	}
	if now != nil {
		s.now = now
	}
	return s
}

// CreateSession snapshots the quiz and registers a fresh waiting
// session. Codes are regenerated until the registry accepts one, so a
// collision can never clobber a live game.
func (s *GameService) CreateSession(ctx context.Context, host, quizID string) (code, quizTitle string, err error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return "", "", err
	}
	if host == "" {
		host = "Admin"
	}

	for {
		code = s.genCode()
		sess := NewSessionWithClock(code, host, quiz, s.now)
		if s.registry.Put(code, sess) {
			break
		}
	}
	log.Printf("game %s created for quiz %q by %s", code, quiz.Title, host)
	return code, quiz.Title, nil
}

// Lookup returns the live session for a code, if any.
func (s *GameService) Lookup(code string) (*Session, bool) {
	return s.registry.Get(code)
}

// Join adds a player to a waiting session, subscribes their connection
// to the broadcast group, and announces the new headcount. Failures are
// returned to the caller only; nothing is broadcast.
func (s *GameService) Join(conn domain.ConnID, code, name string) error {
	sess, ok := s.registry.Get(code)
	if !ok {
		return domain.ErrSessionNotFound
	}

	player, total, err := sess.join(conn, name)
	if err != nil {
		return err
	}

	s.index.Put(conn, code, name)
	s.pub.Subscribe(conn, code)
	s.pub.SendTo(conn, EventJoinedGame, JoinedGamePayload{GameCode: code, PlayerName: name})
	s.pub.Publish(code, EventPlayerJoined, PlayerJoinedPayload{Player: player, TotalPlayers: total})
	return nil
}

// AttachObserver subscribes a connection to a session's broadcast group
// without adding a player. The admin console uses this to watch joins
// and drive questions.
func (s *GameService) AttachObserver(conn domain.ConnID, code string) error {
	sess, ok := s.registry.Get(code)
	if !ok {
		return domain.ErrSessionNotFound
	}
	if err := sess.touch(); err != nil {
		return err
	}
	s.pub.Subscribe(conn, code)
	return nil
}

// Start moves the session into playing, broadcasts game-started at
// once, and schedules the first question after the presentation delay.
// The deferred broadcast re-resolves the session, so it is a safe no-op
// if the session was evicted in the meantime.
func (s *GameService) Start(code string) error {
	sess, ok := s.registry.Get(code)
	if !ok {
		return domain.ErrSessionNotFound
	}
	if err := sess.start(); err != nil {
		return err
	}

	s.pub.Publish(code, EventGameStarted, struct{}{})
	s.sched.AfterFunc(s.cfg.StartDelay, func() {
		s.publishCurrentQuestion(code)
	})
	return nil
}

func (s *GameService) publishCurrentQuestion(code string) {
	sess, ok := s.registry.Get(code)
	if !ok {
		return
	}
	prompt, ok := sess.currentPrompt()
	if !ok {
		return
	}
	s.pub.Publish(code, EventQuestion, prompt)
}

// SubmitAnswer resolves the connection to its session, scores the
// submission, and replies to the caller only.
func (s *GameService) SubmitAnswer(conn domain.ConnID, option int) error {
	code, _, ok := s.index.Resolve(conn)
	if !ok {
		return domain.ErrParticipantNotFound
	}
	sess, ok := s.registry.Get(code)
	if !ok {
		return domain.ErrSessionNotFound
	}

	result, err := sess.answer(conn, option)
	if err != nil {
		return err
	}
	s.pub.SendTo(conn, EventAnswerResult, result)
	return nil
}

// Advance steps to the next question, or ends the game after the last
// one: the final leaderboard is broadcast and removal is scheduled
// after the grace period.
func (s *GameService) Advance(code string) error {
	sess, ok := s.registry.Get(code)
	if !ok {
		return domain.ErrSessionNotFound
	}

	prompt, ended, board, err := sess.advance()
	if err != nil {
		return err
	}

	if ended {
		s.pub.Publish(code, EventGameEnded, GameEndedPayload{Leaderboard: board})
		s.sched.AfterFunc(s.cfg.FinishGrace, func() {
			if finished, ok := s.registry.Get(code); ok && finished == sess {
				s.removeSession(finished)
				log.Printf("game %s cleaned up after finish", code)
			}
		})
		return nil
	}
	s.pub.Publish(code, EventQuestion, prompt)
	return nil
}

// Disconnect removes the participant owning conn from their session and
// announces the departure. Connections that never joined (admins,
// already-evicted players) are a no-op.
func (s *GameService) Disconnect(conn domain.ConnID) {
	code, _, ok := s.index.Resolve(conn)
	if !ok {
		s.pub.Unsubscribe(conn)
		return
	}

	if sess, found := s.registry.Get(code); found {
		if name, total, removed := sess.removePlayer(conn); removed {
			s.pub.Publish(code, EventPlayerLeft, PlayerLeftPayload{PlayerName: name, TotalPlayers: total})
		}
	}
	s.index.Drop(conn)
	s.pub.Unsubscribe(conn)
}

// SweepIdle removes sessions with no activity past the idle timeout and
// returns how many were evicted. Eviction marks the session closed
// under its own lock first, so an in-flight event that already resolved
// the session still sees a dead session and bails out.
func (s *GameService) SweepIdle() int {
	now := s.now()
	removed := 0
	for _, sess := range s.registry.Sessions() {
		if sess.idleFor(s.cfg.IdleTimeout, now) {
			s.removeSession(sess)
			removed++
			log.Printf("cleaned up inactive game: %s", sess.Code())
		}
	}
	return removed
}

// RunSweeper periodically sweeps idle sessions until ctx is done.
func (s *GameService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.SweepIdle()
		case <-ctx.Done():
			return
		}
	}
}

func (s *GameService) removeSession(sess *Session) {
	conns := sess.close()
	s.registry.Delete(sess.Code())
	for _, conn := range conns {
		s.index.Drop(conn)
		s.pub.Unsubscribe(conn)
	}
}
