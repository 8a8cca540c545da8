package redis

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/session"
)

func TestSnapshotStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSnapshotStore(newClient(mr), time.Hour)
	ctx := context.Background()

	in := sampleQuiz()
	quiz := domain.Quiz{ID: 1, Title: in.Title, Topic: in.Topic, Content: in.Content}
	sess, err := session.New(quiz, domain.QuizSettings{Mode: domain.ModePractice}, session.Config{Rand: rand.New(rand.NewSource(1))})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := sess.Submit("b"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := store.Save(ctx, "s-1", sess.Snapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap, err := store.Load(ctx, "s-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	restored, err := session.Restore(snap, session.Config{})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Ledger().AnsweredCount() != 1 || restored.Settings().Mode != domain.ModePractice {
		t.Fatalf("restored session lost state")
	}
	if restored.Queue().Len() != 2 {
		t.Fatalf("expected queue of 2, got %d", restored.Queue().Len())
	}
}

func TestSnapshotStoreMissingAndExpired(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSnapshotStore(newClient(mr), time.Minute)
	ctx := context.Background()

	if _, err := store.Load(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_ = store.Save(ctx, "s-1", session.Snapshot{CurrentIndex: 0})
	mr.FastForward(2 * time.Minute)
	if _, err := store.Load(ctx, "s-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired snapshot, got %v", err)
	}
}
