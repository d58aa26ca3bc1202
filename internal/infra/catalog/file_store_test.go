package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"live-quiz-service/internal/domain"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quiz-store.json")
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, err := newFileStoreWithClock(path, func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func validInput() QuizInput {
	return QuizInput{
		Title:       "  Math Basics  ",
		Description: "Quick arithmetic",
		Questions: []QuestionInput{
			{Text: " 2+2? ", Options: []string{"3", " 4 ", "5", "6"}, Correct: 1, TimeLimit: 20},
			{Text: "3*3?", Options: []string{"6", "9"}, Correct: 1},
		},
	}
}

func TestFileStoreSeedsEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "quiz-store.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("store file must be seeded: %v", err)
	}
	quizzes, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 0 {
		t.Fatalf("fresh store must be empty, got %d", len(quizzes))
	}
}

func TestFileStoreCreateNormalizesInput(t *testing.T) {
	store := newTestStore(t)

	quiz, err := store.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.ID == "" {
		t.Fatalf("quiz must get an id")
	}
	if quiz.Title != "Math Basics" {
		t.Fatalf("title must be trimmed, got %q", quiz.Title)
	}
	if quiz.Questions[0].ID != 1 || quiz.Questions[1].ID != 2 {
		t.Fatalf("question ids must be sequential, got %d/%d", quiz.Questions[0].ID, quiz.Questions[1].ID)
	}
	if quiz.Questions[0].Text != "2+2?" || quiz.Questions[0].Options[1] != "4" {
		t.Fatalf("question text and options must be trimmed, got %+v", quiz.Questions[0])
	}
	if quiz.Questions[0].TimeLimit != 20 {
		t.Fatalf("explicit time limit must be kept, got %d", quiz.Questions[0].TimeLimit)
	}
	if quiz.Questions[1].TimeLimit != domain.DefaultTimeLimit {
		t.Fatalf("absent time limit must default, got %d", quiz.Questions[1].TimeLimit)
	}

	got, err := store.Get(context.Background(), quiz.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != quiz.Title || len(got.Questions) != 2 {
		t.Fatalf("stored quiz mismatch %+v", got)
	}
}

func TestFileStoreCreateDistinctIDs(t *testing.T) {
	store := newTestStore(t)

	a, err := store.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	b, err := store.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create b: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("ids must be distinct, both %q", a.ID)
	}

	quizzes, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 2 {
		t.Fatalf("expected 2 quizzes, got %d", len(quizzes))
	}
}

func TestFileStoreCreateValidation(t *testing.T) {
	store := newTestStore(t)

	cases := []struct {
		name   string
		mutate func(*QuizInput)
	}{
		{"blank title", func(in *QuizInput) { in.Title = "   " }},
		{"no questions", func(in *QuizInput) { in.Questions = nil }},
		{"blank question text", func(in *QuizInput) { in.Questions[0].Text = "" }},
		{"too few options", func(in *QuizInput) { in.Questions[0].Options = []string{"only"} }},
		{"too many options", func(in *QuizInput) {
			in.Questions[0].Options = []string{"a", "b", "c", "d", "e"}
		}},
		{"correct out of range", func(in *QuizInput) { in.Questions[0].Correct = 4 }},
		{"correct negative", func(in *QuizInput) { in.Questions[0].Correct = -1 }},
	}
	for _, tc := range cases {
		in := validInput()
		tc.mutate(&in)
		if _, err := store.Create(context.Background(), in); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}

	quizzes, _ := store.List(context.Background())
	if len(quizzes) != 0 {
		t.Fatalf("rejected input must not be persisted, got %d", len(quizzes))
	}
}

func TestFileStoreDelete(t *testing.T) {
	store := newTestStore(t)

	quiz, err := store.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Delete(context.Background(), quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(context.Background(), quiz.ID); err != domain.ErrQuizNotFound {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	if err := store.Delete(context.Background(), quiz.ID); err != domain.ErrQuizNotFound {
		t.Fatalf("second delete must report not found, got %v", err)
	}
}

func TestFileStoreLoadQuiz(t *testing.T) {
	store := newTestStore(t)

	quiz, err := store.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.LoadQuiz(context.Background(), quiz.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != quiz.ID {
		t.Fatalf("expected %s, got %s", quiz.ID, got.ID)
	}
	if _, err := store.LoadQuiz(context.Background(), "missing"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}
