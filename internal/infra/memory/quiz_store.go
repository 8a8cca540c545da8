package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quiz-session-service/internal/domain"
)

// QuizStore is an in-memory implementation of app.QuizStore with monotonically increasing ids.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[int64]domain.Quiz
	nextID  int64
	clock   func() time.Time
}

func NewQuizStore(seed ...domain.NewQuiz) *QuizStore {
	s := &QuizStore{
		quizzes: make(map[int64]domain.Quiz),
		nextID:  1,
		clock:   time.Now,
	}
	for _, in := range seed {
		_, _ = s.CreateQuiz(context.Background(), in)
	}
	return s
}

func (s *QuizStore) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		out = append(out, cloneQuiz(q))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *QuizStore) GetQuiz(_ context.Context, id int64) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(q), nil
}

func (s *QuizStore) CreateQuiz(_ context.Context, in domain.NewQuiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := domain.Quiz{
		ID:        s.nextID,
		Title:     in.Title,
		Topic:     in.Topic,
		CreatedAt: s.clock().UTC(),
		Content:   cloneContent(in.Content),
	}
	s.quizzes[q.ID] = q
	s.nextID++
	return cloneQuiz(q), nil
}

func (s *QuizStore) UpdateQuiz(_ context.Context, id int64, patch domain.QuizPatch) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	q = patch.Apply(q)
	q.Content = cloneContent(q.Content)
	s.quizzes[id] = q
	return cloneQuiz(q), nil
}

func (s *QuizStore) DeleteQuiz(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[id]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, id)
	return nil
}

func cloneQuiz(q domain.Quiz) domain.Quiz {
	q.Content = cloneContent(q.Content)
	return q
}

func cloneContent(c domain.QuizContent) domain.QuizContent {
	questions := make([]domain.Question, len(c.Questions))
	for i, q := range c.Questions {
		questions[i] = q.Clone()
	}
	c.Questions = questions
	return c
}
