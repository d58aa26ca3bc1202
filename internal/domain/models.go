package domain

import "time"

// SessionState is the lifecycle phase of a live game session.
type SessionState string

const (
	StateWaiting  SessionState = "waiting"
	StatePlaying  SessionState = "playing"
	StateFinished SessionState = "finished"
)

// DefaultTimeLimit is applied to questions stored without one.
const DefaultTimeLimit = 30

// Question models a single MCQ with one correct option index.
// Field tags mirror the quiz-store JSON shape.
type Question struct {
	ID        int      `json:"id"`
	Text      string   `json:"question"`
	Options   []string `json:"options"`
	Correct   int      `json:"correct"`
	TimeLimit int      `json:"timeLimit"` // seconds, defaults to 30 if zero
}

// Quiz is an ordered collection of questions plus display metadata.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	Questions   []Question `json:"questions"`
}

// ConnID is an opaque handle for one live transport connection. The
// transport layer mints one per socket; the core never sees the socket.
type ConnID string

// Participant is a player joined to a session.
type Participant struct {
	Conn  ConnID `json:"-"`
	Name  string `json:"name"`
	Score int    `json:"score"`

	// LastAnswered is the question index this participant last submitted
	// an answer for, -1 before any submission. At most one submission per
	// question is scored.
	LastAnswered int `json:"-"`
}

// LeaderboardEntry is the wire view of a ranked participant.
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// QuestionPrompt is the broadcast payload for one question.
type QuestionPrompt struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	QuestionNumber int      `json:"questionNumber"`
	TotalQuestions int      `json:"totalQuestions"`
	TimeLimit      int      `json:"timeLimit"`
}

// AnswerResult is the caller-only reply to an answer submission.
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
}
