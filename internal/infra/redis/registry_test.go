package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionRegistryLivenessMarkers(t *testing.T) {
	mr, client := newTestClient(t)
	r := NewSessionRegistry(client, time.Hour)

	sess := app.NewSession("ABC123", "Admin", domain.Quiz{ID: "q1", Title: "Quiz"})
	if !r.Put("ABC123", sess) {
		t.Fatalf("first put must succeed")
	}
	if !mr.Exists("game:session:ABC123") {
		t.Fatalf("put must set the liveness marker")
	}
	if host, _ := mr.Get("game:session:ABC123"); host != "Admin" {
		t.Fatalf("marker must record the host, got %q", host)
	}

	if r.Put("ABC123", app.NewSession("ABC123", "Other", domain.Quiz{})) {
		t.Fatalf("put on a taken code must be rejected")
	}

	got, ok := r.Get("ABC123")
	if !ok || got != sess {
		t.Fatalf("get must return the original session")
	}

	r.Delete("ABC123")
	if mr.Exists("game:session:ABC123") {
		t.Fatalf("delete must clear the liveness marker")
	}
	if _, ok := r.Get("ABC123"); ok {
		t.Fatalf("deleted code must miss")
	}
}
