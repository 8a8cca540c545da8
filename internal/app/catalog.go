package app

import (
	"context"

	"go.uber.org/zap"

	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/parser"
)

// QuizStore is the durable quiz repository.
type QuizStore interface {
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	GetQuiz(ctx context.Context, id int64) (domain.Quiz, error)
	CreateQuiz(ctx context.Context, in domain.NewQuiz) (domain.Quiz, error)
	UpdateQuiz(ctx context.Context, id int64, patch domain.QuizPatch) (domain.Quiz, error)
	DeleteQuiz(ctx context.Context, id int64) error
}

// QuizCache is a read-through cache in front of the store used when sessions start.
type QuizCache interface {
	QuizReader
	Invalidate(ctx context.Context, id int64) error
}

// Catalog contains the quiz authoring use cases.
type Catalog struct {
	store QuizStore
	cache QuizCache
	log   *zap.Logger
}

func NewCatalog(store QuizStore, cache QuizCache, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{store: store, cache: cache, log: logger}
}

func (c *Catalog) List(ctx context.Context) ([]domain.Quiz, error) {
	return c.store.ListQuizzes(ctx)
}

func (c *Catalog) Get(ctx context.Context, id int64) (domain.Quiz, error) {
	return c.store.GetQuiz(ctx, id)
}

// Create validates metadata and content before storing. A missing topic falls back to the
// content's topic.
func (c *Catalog) Create(ctx context.Context, in domain.NewQuiz) (domain.Quiz, error) {
	if in.Topic == "" {
		in.Topic = in.Content.Topic
	}
	if err := domain.ValidateNewQuiz(in); err != nil {
		return domain.Quiz{}, err
	}
	if err := parser.Validate(in.Content); err != nil {
		return domain.Quiz{}, err
	}
	quiz, err := c.store.CreateQuiz(ctx, in)
	if err != nil {
		return domain.Quiz{}, err
	}
	c.log.Info("quiz created", zap.Int64("quiz_id", quiz.ID), zap.Int("questions", len(quiz.Content.Questions)))
	return quiz, nil
}

// Update applies a partial update. Sessions already running keep the version they started with.
func (c *Catalog) Update(ctx context.Context, id int64, patch domain.QuizPatch) (domain.Quiz, error) {
	if err := domain.ValidatePatch(patch); err != nil {
		return domain.Quiz{}, err
	}
	if patch.Content != nil {
		if err := parser.Validate(*patch.Content); err != nil {
			return domain.Quiz{}, err
		}
	}
	quiz, err := c.store.UpdateQuiz(ctx, id, patch)
	if err != nil {
		return domain.Quiz{}, err
	}
	c.invalidate(ctx, id)
	return quiz, nil
}

func (c *Catalog) Delete(ctx context.Context, id int64) error {
	if err := c.store.DeleteQuiz(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	c.log.Info("quiz deleted", zap.Int64("quiz_id", id))
	return nil
}

// ParseText converts the plain-text authoring format into content without storing it.
func (c *Catalog) ParseText(raw, title string) (domain.QuizContent, error) {
	return parser.ParseText(raw, title)
}

// ParseJSON decodes and validates exported quiz content without storing it.
func (c *Catalog) ParseJSON(raw []byte) (domain.QuizContent, error) {
	return parser.ParseJSON(raw)
}

func (c *Catalog) invalidate(ctx context.Context, id int64) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(ctx, id); err != nil {
		c.log.Warn("failed to invalidate cached quiz", zap.Int64("quiz_id", id), zap.Error(err))
	}
}
