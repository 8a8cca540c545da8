package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-session-service/internal/app"
	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/infra/memory"
)

func TestCatalogCreateValidates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuizStore()
	catalog := app.NewCatalog(store, memory.NewQuizCache(store, time.Minute), nil)

	bad := sampleQuiz()
	bad.Content.Questions[0].CorrectAnswer = "z"
	if _, err := catalog.Create(ctx, bad); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected content validation error, got %v", err)
	}

	untitled := sampleQuiz()
	untitled.Title = ""
	if _, err := catalog.Create(ctx, untitled); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected metadata validation error, got %v", err)
	}

	noTopic := sampleQuiz()
	noTopic.Topic = ""
	quiz, err := catalog.Create(ctx, noTopic)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.Topic != "Math" {
		t.Fatalf("expected topic taken from content, got %q", quiz.Topic)
	}
}

func TestCatalogUpdateInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuizStore(sampleQuiz())
	cache := memory.NewQuizCache(store, time.Hour)
	catalog := app.NewCatalog(store, cache, nil)

	if _, err := cache.GetQuiz(ctx, 1); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	title := "Arithmetic II"
	if _, err := catalog.Update(ctx, 1, domain.QuizPatch{Title: &title}); err != nil {
		t.Fatalf("update: %v", err)
	}
	cached, _ := cache.GetQuiz(ctx, 1)
	if cached.Title != title {
		t.Fatalf("cache served stale quiz %q", cached.Title)
	}

	if err := catalog.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := cache.GetQuiz(ctx, 1); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected deleted quiz to miss the cache, got %v", err)
	}
}

func TestCatalogUpdateRejectsInvalidContent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuizStore(sampleQuiz())
	catalog := app.NewCatalog(store, nil, nil)

	empty := domain.QuizContent{Topic: "Math"}
	if _, err := catalog.Update(ctx, 1, domain.QuizPatch{Content: &empty}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := catalog.Update(ctx, 99, domain.QuizPatch{}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
