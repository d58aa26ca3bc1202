package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"live-quiz-service/internal/domain"
)

type countingLoader struct {
	calls   int
	quizzes map[string]domain.Quiz
}

func (l *countingLoader) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	if quiz, ok := l.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "q1",
		Title: "Capitals",
		Questions: []domain.Question{
			{ID: 1, Text: "Capital of France?", Options: []string{"Paris", "Lyon"}, Correct: 0, TimeLimit: 15},
		},
	}
}

func TestQuizCacheFillsRedisOnMiss(t *testing.T) {
	mr, client := newTestClient(t)
	loader := &countingLoader{quizzes: map[string]domain.Quiz{"q1": sampleQuiz()}}
	cache := NewQuizCache(client, loader, time.Minute)

	quiz, err := cache.GetQuiz(context.Background(), "q1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if quiz.Title != "Capitals" || len(quiz.Questions) != 1 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}

	if !mr.Exists("quiz:q1") {
		t.Fatalf("miss must fill the cache")
	}
	raw, _ := mr.Get("quiz:q1")
	var cached domain.Quiz
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		t.Fatalf("cached value must be the quiz document: %v", err)
	}
	if cached.Questions[0].Correct != 0 {
		t.Fatalf("cached document must keep the answer key, got %+v", cached)
	}
}

func TestQuizCacheServesFromRedis(t *testing.T) {
	_, client := newTestClient(t)
	loader := &countingLoader{quizzes: map[string]domain.Quiz{"q1": sampleQuiz()}}
	cache := NewQuizCache(client, loader, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := cache.GetQuiz(context.Background(), "q1"); err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
	}
	if loader.calls != 1 {
		t.Fatalf("expected a single store hit, got %d", loader.calls)
	}
}

func TestQuizCacheReloadsAfterExpiry(t *testing.T) {
	mr, client := newTestClient(t)
	loader := &countingLoader{quizzes: map[string]domain.Quiz{"q1": sampleQuiz()}}
	cache := NewQuizCache(client, loader, time.Minute)

	if _, err := cache.GetQuiz(context.Background(), "q1"); err != nil {
		t.Fatalf("get: %v", err)
	}

	// jitter adds at most 10%, so two TTLs is safely past expiry
	mr.FastForward(2 * time.Minute)

	if _, err := cache.GetQuiz(context.Background(), "q1"); err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected a reload after expiry, got %d calls", loader.calls)
	}
}

func TestQuizCachePropagatesLoaderErrors(t *testing.T) {
	_, client := newTestClient(t)
	loader := &countingLoader{quizzes: map[string]domain.Quiz{}}
	cache := NewQuizCache(client, loader, time.Minute)

	if _, err := cache.GetQuiz(context.Background(), "missing"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}
