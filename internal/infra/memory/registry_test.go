package memory

import (
	"testing"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

func TestSessionRegistryPutGetDelete(t *testing.T) {
	r := NewSessionRegistry()

	sess := app.NewSession("ABC123", "Admin", domain.Quiz{ID: "q1", Title: "Quiz"})
	if !r.Put("ABC123", sess) {
		t.Fatalf("first put must succeed")
	}
	if r.Put("ABC123", app.NewSession("ABC123", "Other", domain.Quiz{})) {
		t.Fatalf("put on a taken code must be rejected")
	}

	got, ok := r.Get("ABC123")
	if !ok || got != sess {
		t.Fatalf("get must return the original session")
	}
	if _, ok := r.Get("ZZZZZZ"); ok {
		t.Fatalf("unknown code must miss")
	}

	if n := len(r.Sessions()); n != 1 {
		t.Fatalf("expected 1 session, got %d", n)
	}

	r.Delete("ABC123")
	if _, ok := r.Get("ABC123"); ok {
		t.Fatalf("deleted code must miss")
	}
	r.Delete("ABC123") // idempotent
}

func TestParticipantIndex(t *testing.T) {
	idx := NewParticipantIndex()

	if _, _, ok := idx.Resolve("conn-1"); ok {
		t.Fatalf("empty index must not resolve")
	}

	idx.Put("conn-1", "ABC123", "Alice")
	code, name, ok := idx.Resolve("conn-1")
	if !ok || code != "ABC123" || name != "Alice" {
		t.Fatalf("unexpected resolution %q/%q/%v", code, name, ok)
	}

	idx.Put("conn-1", "XYZ789", "Alice")
	code, _, _ = idx.Resolve("conn-1")
	if code != "XYZ789" {
		t.Fatalf("put must overwrite, got %q", code)
	}

	idx.Drop("conn-1")
	if _, _, ok := idx.Resolve("conn-1"); ok {
		t.Fatalf("dropped connection must not resolve")
	}
	idx.Drop("conn-1") // idempotent
}
