package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"live-quiz-service/internal/domain"
)

// QuestionInput is the creation payload for one question.
type QuestionInput struct {
	Text      string   `json:"question"`
	Options   []string `json:"options"`
	Correct   int      `json:"correct"`
	TimeLimit int      `json:"timeLimit"`
}

// QuizInput is the creation payload for a quiz.
type QuizInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   []QuestionInput `json:"questions"`
}

// Validate applies the catalog's input rules: a title, at least one
// question, 2-4 options each, and an in-range correct index.
func (in QuizInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return errors.New("valid title is required")
	}
	if len(in.Questions) == 0 {
		return errors.New("at least one question is required")
	}
	for i, q := range in.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %d: valid question text is required", i+1)
		}
		if len(q.Options) < 2 || len(q.Options) > 4 {
			return fmt.Errorf("question %d: between 2 and 4 options are required", i+1)
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return fmt.Errorf("question %d: valid correct answer index is required", i+1)
		}
	}
	return nil
}

// FromInput builds a stored quiz from a validated input: timestamp id,
// sequential question ids, trimmed text, defaulted time limits.
func FromInput(in QuizInput, now time.Time) domain.Quiz {
	quiz := domain.Quiz{
		ID:          strconv.FormatInt(now.UnixMilli(), 10),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now.UTC(),
		Questions:   make([]domain.Question, 0, len(in.Questions)),
	}
	for i, q := range in.Questions {
		limit := q.TimeLimit
		if limit <= 0 {
			limit = domain.DefaultTimeLimit
		}
		options := make([]string, len(q.Options))
		for j, opt := range q.Options {
			options[j] = strings.TrimSpace(opt)
		}
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:        i + 1,
			Text:      strings.TrimSpace(q.Text),
			Options:   options,
			Correct:   q.Correct,
			TimeLimit: limit,
		})
	}
	return quiz
}
