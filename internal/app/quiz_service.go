package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/metrics"
	"quiz-session-service/internal/session"
)

// SessionRepository holds the sessions currently live in this process.
type SessionRepository interface {
	Put(id string, live *LiveSession)
	Get(id string) (*LiveSession, bool)
	Delete(id string)
}

// SnapshotStore persists session snapshots so a session survives reloads and restarts.
// Load returns domain.ErrSessionNotFound for unknown ids.
type SnapshotStore interface {
	Save(ctx context.Context, id string, snap session.Snapshot) error
	Load(ctx context.Context, id string) (session.Snapshot, error)
	Delete(ctx context.Context, id string) error
}

// QuizReader loads quiz content (from cache/backing store).
type QuizReader interface {
	GetQuiz(ctx context.Context, id int64) (domain.Quiz, error)
}

// Options tunes the service. Zero values select production defaults.
type Options struct {
	// NavigationGuard is how long manual navigation stays locked after a move. Zero selects
	// session.DefaultNavigationGuard; a negative value disables the guard.
	NavigationGuard time.Duration
	// TickInterval drives timed sessions. Zero disables the background ticker; Tick can then be
	// called directly.
	TickInterval time.Duration
	Clock        func() time.Time
	NewRand      func() *rand.Rand
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
}

// QuizService runs quiz sessions on behalf of the presentation layer. Each session is owned
// by a LiveSession whose mutex serializes every call into the state machine.
type QuizService struct {
	sessions  SessionRepository
	snapshots SnapshotStore
	quizzes   QuizReader
	opts      Options
	log       *zap.Logger
	resumes   singleflight.Group

	tickMu  sync.Mutex
	tickers map[string]context.CancelFunc
	tickWG  sync.WaitGroup
}

func NewQuizService(sessions SessionRepository, snapshots SnapshotStore, quizzes QuizReader, opts Options) *QuizService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewRand == nil {
		opts.NewRand = func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NavigationGuard == 0 {
		opts.NavigationGuard = session.DefaultNavigationGuard
	}
	return &QuizService{
		sessions:  sessions,
		snapshots: snapshots,
		quizzes:   quizzes,
		opts:      opts,
		log:       opts.Logger,
		tickers:   make(map[string]context.CancelFunc),
	}
}

// StartSession creates a session over the current version of quizID.
func (s *QuizService) StartSession(ctx context.Context, quizID int64, settings domain.QuizSettings) (View, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return View{}, err
	}

	id := ulid.Make().String()
	sess, err := session.New(quiz, settings, s.sessionConfig(id))
	if err != nil {
		return View{}, err
	}

	live := NewLiveSession(id, sess)
	s.sessions.Put(id, live)
	s.opts.Metrics.SessionStarted(string(sess.Settings().Mode))

	live.mu.Lock()
	view := live.viewLocked()
	s.persistLocked(ctx, live)
	live.mu.Unlock()

	if sess.Settings().Mode == domain.ModeTimed {
		s.startTicker(live)
	}
	s.log.Info("quiz session started",
		zap.String("session_id", id),
		zap.Int64("quiz_id", quizID),
		zap.String("mode", string(sess.Settings().Mode)),
		zap.Int("questions", sess.OriginalQuestionCount()))
	return view, nil
}

// SubmitAnswer grades value against the displayed question. A non-zero questionID must match
// it, which rejects answers sent by a client showing a stale question.
func (s *QuizService) SubmitAnswer(ctx context.Context, id string, questionID int64, value string) (domain.Answer, View, error) {
	var answer domain.Answer
	view, err := s.mutate(ctx, id, func(sess *session.Session) error {
		if questionID != 0 {
			current, ok := sess.CurrentQuestion()
			if ok && current.ID != questionID {
				return fmt.Errorf("%w: question %d is not displayed", domain.ErrQuestionNotFound, questionID)
			}
		}
		var err error
		answer, err = sess.Submit(value)
		if err != nil {
			return err
		}
		s.opts.Metrics.AnswerSubmitted(string(sess.Settings().Mode), answer.IsCorrect)
		return nil
	})
	return answer, view, err
}

// RequestAdvance moves to the next question or completes the session.
func (s *QuizService) RequestAdvance(ctx context.Context, id string) (View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		return sess.Advance()
	})
}

// RequestBack returns to the previous question in standard mode.
func (s *QuizService) RequestBack(ctx context.Context, id string) (View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		return sess.GoBack()
	})
}

// JumpTo returns to an earlier queue position in standard mode.
func (s *QuizService) JumpTo(ctx context.Context, id string, index int) (View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		return sess.JumpTo(index)
	})
}

// EndPractice finishes a practice session once everything is mastered.
func (s *QuizService) EndPractice(ctx context.Context, id string) (View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		return sess.EndPractice()
	})
}

// Tick advances the countdown of a timed session. The background ticker calls it; tests
// and single-threaded drivers may call it directly.
func (s *QuizService) Tick(ctx context.Context, id string) (View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		expired, err := sess.Tick()
		if expired {
			s.opts.Metrics.QuestionTimedOut()
		}
		return err
	})
}

// View returns the current state without changing it.
func (s *QuizService) View(ctx context.Context, id string) (View, error) {
	live, err := s.live(ctx, id)
	if err != nil {
		return View{}, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()
	return live.viewLocked(), nil
}

// Result returns the compiled result of a completed session.
func (s *QuizService) Result(ctx context.Context, id string) (domain.Result, error) {
	live, err := s.live(ctx, id)
	if err != nil {
		return domain.Result{}, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()
	result, ok := live.session.Result()
	if !ok {
		return domain.Result{}, domain.ErrResultNotReady
	}
	return result, nil
}

// Subscribe returns a channel that receives a view after every transition and timer tick.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context, id string) (<-chan View, func(), error) {
	live, err := s.live(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := live.subscribe()
	return ch, cancel, nil
}

// Abandon drops a session and its snapshot. Subscribers see their channel closed.
func (s *QuizService) Abandon(ctx context.Context, id string) error {
	live, err := s.live(ctx, id)
	if err != nil {
		return err
	}
	s.stopTicker(id)

	live.mu.Lock()
	live.closeSubscribersLocked()
	live.mu.Unlock()

	s.sessions.Delete(id)
	s.opts.Metrics.SessionReleased()
	if err := s.snapshots.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	s.log.Info("quiz session abandoned", zap.String("session_id", id))
	return nil
}

// Close stops every background ticker and waits for them to exit.
func (s *QuizService) Close() {
	s.tickMu.Lock()
	for id, cancel := range s.tickers {
		cancel()
		delete(s.tickers, id)
	}
	s.tickMu.Unlock()
	s.tickWG.Wait()
}

// mutate runs fn under the session lock, then publishes and persists the new state.
func (s *QuizService) mutate(ctx context.Context, id string, fn func(*session.Session) error) (View, error) {
	live, err := s.live(ctx, id)
	if err != nil {
		return View{}, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	wasCompleted := live.session.Status() == session.StatusCompleted
	if err := fn(live.session); err != nil {
		return View{}, err
	}

	view := live.viewLocked()
	live.broadcastLocked(view)
	s.persistLocked(ctx, live)

	if !wasCompleted && live.session.Status() == session.StatusCompleted {
		s.opts.Metrics.SessionCompleted(string(live.session.Settings().Mode))
		s.stopTicker(id)
	}
	return view, nil
}

// live finds the in-memory session or resumes it from its snapshot.
func (s *QuizService) live(ctx context.Context, id string) (*LiveSession, error) {
	if live, ok := s.sessions.Get(id); ok {
		return live, nil
	}

	result, err, _ := s.resumes.Do(id, func() (interface{}, error) {
		if live, ok := s.sessions.Get(id); ok {
			return live, nil
		}
		snap, err := s.snapshots.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		sess, err := session.Restore(snap, s.sessionConfig(id))
		if err != nil {
			return nil, err
		}

		live := NewLiveSession(id, sess)
		s.sessions.Put(id, live)
		s.opts.Metrics.SessionResumed()
		if sess.Status() == session.StatusInProgress && sess.Settings().Mode == domain.ModeTimed {
			s.startTicker(live)
		}
		s.log.Info("quiz session resumed", zap.String("session_id", id), zap.Int("index", sess.Index()))
		return live, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("resume session %s: %w", id, err)
	}
	return result.(*LiveSession), nil
}

// persistLocked saves a snapshot. A failed save keeps the session running.
func (s *QuizService) persistLocked(ctx context.Context, live *LiveSession) {
	if err := s.snapshots.Save(ctx, live.id, live.session.Snapshot()); err != nil {
		s.log.Warn("failed to persist session snapshot", zap.String("session_id", live.id), zap.Error(err))
	}
}

func (s *QuizService) sessionConfig(id string) session.Config {
	return session.Config{
		Now:             s.opts.Clock,
		Rand:            s.opts.NewRand(),
		Logger:          s.log.With(zap.String("session_id", id)),
		NavigationGuard: s.opts.NavigationGuard,
	}
}

func (s *QuizService) startTicker(live *LiveSession) {
	if s.opts.TickInterval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())

	s.tickMu.Lock()
	if _, running := s.tickers[live.id]; running {
		s.tickMu.Unlock()
		cancel()
		return
	}
	s.tickers[live.id] = cancel
	s.tickWG.Add(1)
	s.tickMu.Unlock()

	go func() {
		defer s.tickWG.Done()
		ticker := time.NewTicker(s.opts.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Tick(ctx, live.id); err != nil {
					s.log.Warn("timer tick failed", zap.String("session_id", live.id), zap.Error(err))
				}
				if live.Completed() {
					return
				}
			}
		}
	}()
}

func (s *QuizService) stopTicker(id string) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	if cancel, ok := s.tickers[id]; ok {
		cancel()
		delete(s.tickers, id)
	}
}
