// Package catalog persists quiz definitions as a flat JSON document on
// disk, matching the quiz-store.json layout the admin tooling expects.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"live-quiz-service/internal/domain"
)

type storeDocument struct {
	Quizzes []domain.Quiz `json:"quizzes"`
}

// FileStore reads and writes the quiz store document. Every operation
// reloads from disk, so external edits between requests are picked up;
// the mutex serializes writers within the process.
type FileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewFileStore(path string) (*FileStore, error) {
	return newFileStoreWithClock(path, time.Now)
}

func newFileStoreWithClock(path string, now func() time.Time) (*FileStore, error) {
	s := &FileStore{path: path, now: now}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.save(storeDocument{Quizzes: []domain.Quiz{}}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *FileStore) load() (storeDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return storeDocument{}, fmt.Errorf("load quiz store: %w", err)
	}
	var doc storeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return storeDocument{}, fmt.Errorf("parse quiz store: %w", err)
	}
	return doc, nil
}

func (s *FileStore) save(doc storeDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal quiz store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save quiz store: %w", err)
	}
	return nil
}

// List returns all stored quizzes in insertion order.
func (s *FileStore) List(_ context.Context) ([]domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Quizzes, nil
}

// Get returns one quiz by id.
func (s *FileStore) Get(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return domain.Quiz{}, err
	}
	for _, q := range doc.Quizzes {
		if q.ID == id {
			return q, nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// Create validates and appends a new quiz, assigning a timestamp id and
// sequential question ids, and defaulting absent time limits.
func (s *FileStore) Create(_ context.Context, in QuizInput) (domain.Quiz, error) {
	if err := in.Validate(); err != nil {
		return domain.Quiz{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return domain.Quiz{}, err
	}

	quiz := FromInput(in, s.now())
	doc.Quizzes = append(doc.Quizzes, quiz)
	if err := s.save(doc); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Delete removes a quiz by id.
func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	kept := doc.Quizzes[:0]
	found := false
	for _, q := range doc.Quizzes {
		if q.ID == id {
			found = true
			continue
		}
		kept = append(kept, q)
	}
	if !found {
		return domain.ErrQuizNotFound
	}
	doc.Quizzes = kept
	return s.save(doc)
}

// LoadQuiz implements the cache layers' QuizLoader.
func (s *FileStore) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.Get(ctx, quizID)
}
