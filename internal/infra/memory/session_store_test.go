package memory

import (
	"context"
	"errors"
	"testing"

	"quiz-session-service/internal/app"
	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/session"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	store.Put("s-1", app.NewLiveSession("s-1", nil))
	if _, ok := store.Get("s-1"); !ok {
		t.Fatalf("expected session present")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 live session, got %d", store.Len())
	}

	store.Delete("s-1")
	if _, ok := store.Get("s-1"); ok {
		t.Fatalf("expected session removed")
	}
}

func TestSnapshotStoreLastWriteWins(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	if _, err := store.Load(ctx, "s-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_ = store.Save(ctx, "s-1", session.Snapshot{CurrentIndex: 1})
	_ = store.Save(ctx, "s-1", session.Snapshot{CurrentIndex: 2})
	snap, err := store.Load(ctx, "s-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.CurrentIndex != 2 {
		t.Fatalf("expected latest snapshot, got index %d", snap.CurrentIndex)
	}

	_ = store.Delete(ctx, "s-1")
	if _, err := store.Load(ctx, "s-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected snapshot deleted, got %v", err)
	}
}
