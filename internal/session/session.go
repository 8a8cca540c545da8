package session

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"quiz-session-service/internal/domain"
)

// Status is the state machine's coarse state.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// DefaultNavigationGuard is how long manual navigation stays locked after a move.
const DefaultNavigationGuard = 200 * time.Millisecond

// Config carries the collaborators a session needs. Zero values are replaced by defaults.
type Config struct {
	Now             func() time.Time
	Rand            *rand.Rand
	Logger          *zap.Logger
	NavigationGuard time.Duration
}

func (c Config) withDefaults() Config {
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.NavigationGuard < 0 {
		c.NavigationGuard = 0
	}
	return c
}

// slotState is what the learner did on the slot currently displayed. Practice repeats start
// with a fresh slot even though the ledger remembers earlier attempts.
type slotState struct {
	submitted   bool
	value       string
	correct     bool
	timeSpentMs int64
	// pending marks an incorrect practice answer that is recorded on Advance.
	pending bool
}

// Session is one learner's run through a quiz. It is not safe for concurrent use; the owner
// serializes calls.
type Session struct {
	quiz        domain.Quiz
	settings    domain.QuizSettings
	policy      modePolicy
	queue       Queue
	ledger      *Ledger
	timer       *Timer
	index       int
	originalIDs []int64
	slot        slotState
	status      Status
	result      *domain.Result
	// practiceComplete is set once every original question is mastered while the last slot is answered correctly.
	practiceComplete bool
	navUntil         time.Time

	now   func() time.Time
	rnd   *rand.Rand
	log   *zap.Logger
	guard time.Duration
}

// New starts a session over a snapshot of quiz. The timer starts immediately.
func New(quiz domain.Quiz, settings domain.QuizSettings, cfg Config) (*Session, error) {
	settings = settings.Normalize()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	queue := NewQueue(quiz.Content, settings, cfg.Rand)
	if queue.Len() == 0 {
		return nil, domain.ErrEmptyQuiz
	}
	ids := make([]int64, queue.Len())
	for i, q := range queue.slots {
		ids[i] = q.ID
	}

	s := newSession(quiz, settings, cfg)
	s.queue = queue
	s.originalIDs = ids
	s.ledger = NewLedger(settings.Mode)
	s.timer.Start()
	return s, nil
}

func newSession(quiz domain.Quiz, settings domain.QuizSettings, cfg Config) *Session {
	return &Session{
		quiz:     quiz,
		settings: settings,
		policy:   policyFor(settings.Mode),
		timer:    NewTimer(settings.TimePerQuestionSeconds, settings.Mode == domain.ModeTimed, cfg.Now),
		status:   StatusInProgress,
		now:      cfg.Now,
		rnd:      cfg.Rand,
		log:      cfg.Logger.With(zap.Int64("quiz_id", quiz.ID), zap.String("mode", string(settings.Mode))),
		guard:    cfg.NavigationGuard,
	}
}

// Submit grades value against the current question.
func (s *Session) Submit(value string) (domain.Answer, error) {
	if s.status == StatusCompleted {
		return domain.Answer{}, domain.ErrSessionCompleted
	}
	q, err := s.current()
	if err != nil {
		return domain.Answer{}, err
	}
	if !q.Accepts(value) {
		return domain.Answer{}, fmt.Errorf("%w: %q for question %d", domain.ErrOptionNotFound, value, q.ID)
	}
	return s.policy.submit(s, q, value)
}

// Advance moves past the current question or finishes the session. It is a no-op once
// completed or while a previous navigation still holds the guard.
func (s *Session) Advance() error {
	if s.status == StatusCompleted {
		return nil
	}
	if s.navigationLocked() {
		s.log.Debug("navigation in progress, dropping advance", zap.Int("index", s.index))
		return nil
	}
	if _, err := s.current(); err != nil {
		return err
	}
	return s.policy.advance(s)
}

// GoBack returns to the previous question.
func (s *Session) GoBack() error {
	return s.JumpTo(s.index - 1)
}

// JumpTo returns to an earlier question. Only standard sessions allow it.
func (s *Session) JumpTo(target int) error {
	if s.status == StatusCompleted {
		return domain.ErrSessionCompleted
	}
	if s.navigationLocked() {
		s.log.Debug("navigation in progress, dropping back navigation", zap.Int("index", s.index))
		return nil
	}
	return s.policy.goBack(s, target)
}

// TimeExpired reacts to the countdown reaching zero.
func (s *Session) TimeExpired() error {
	if s.status == StatusCompleted {
		return nil
	}
	if _, err := s.current(); err != nil {
		return err
	}
	return s.policy.expire(s)
}

// Tick advances the countdown and handles expiry. It reports whether the timer expired.
func (s *Session) Tick() (bool, error) {
	if s.status == StatusCompleted {
		return false, nil
	}
	if !s.timer.Tick() {
		return false, nil
	}
	return true, s.TimeExpired()
}

// EndPractice finishes a practice session once every question is mastered and the current
// answer is correct. Pending repeat slots are discarded.
func (s *Session) EndPractice() error {
	if s.status == StatusCompleted {
		return nil
	}
	if s.settings.Mode != domain.ModePractice {
		return domain.ErrNavigationNotAllowed
	}
	if !s.policy.canEnd(s) {
		return domain.ErrEndNotAllowed
	}
	s.finish()
	return nil
}

func (s *Session) Status() Status {
	return s.status
}

func (s *Session) Settings() domain.QuizSettings {
	return s.settings
}

func (s *Session) Quiz() domain.Quiz {
	return s.quiz
}

// Index is the 0-based position in the queue.
func (s *Session) Index() int {
	return s.index
}

// OriginalQuestionCount is the queue length at start; repeats never change it.
func (s *Session) OriginalQuestionCount() int {
	return len(s.originalIDs)
}

// Queue returns a copy of the current queue.
func (s *Session) Queue() Queue {
	return queueFromSlots(s.queue.slots)
}

func (s *Session) Ledger() *Ledger {
	return s.ledger
}

// PracticeComplete reports whether practice reached its natural end.
func (s *Session) PracticeComplete() bool {
	return s.practiceComplete
}

// Result returns the compiled result once the session is completed.
func (s *Session) Result() (domain.Result, bool) {
	if s.result == nil {
		return domain.Result{}, false
	}
	return *s.result, true
}

func (s *Session) TimerDisplay() TimerDisplay {
	return s.timer.Display()
}

func (s *Session) current() (domain.Question, error) {
	q, ok := s.queue.At(s.index)
	if !ok {
		return domain.Question{}, s.violation("current index outside queue",
			zap.Int("index", s.index), zap.Int("queue_length", s.queue.Len()))
	}
	return q, nil
}

// moveTo displays slot target with a fresh question clock.
func (s *Session) moveTo(target int) {
	s.timer.NextQuestion()
	s.index = target
	s.slot = s.policy.slotFor(s, target)
	s.timer.Start()
	s.lockNavigation()
}

// finish pauses the timer and compiles the result exactly once.
func (s *Session) finish() {
	if s.status == StatusCompleted {
		return
	}
	s.timer.Pause()
	s.status = StatusCompleted
	result := Compile(s.quiz, s.settings.Mode, len(s.originalIDs), s.ledger, s.timer.SessionStart(), s.now())
	s.result = &result
	s.lockNavigation()
	s.log.Info("quiz session completed",
		zap.Int("correct", result.CorrectCount),
		zap.Int("total", result.TotalQuestions),
		zap.Int64("time_ms", result.TotalTimeSpentMs))
}

func (s *Session) allMastered() bool {
	for _, id := range s.originalIDs {
		if !s.ledger.IsMastered(id) {
			return false
		}
	}
	return true
}

func (s *Session) lockNavigation() {
	s.navUntil = s.now().Add(s.guard)
}

func (s *Session) navigationLocked() bool {
	return s.now().Before(s.navUntil)
}

func (s *Session) violation(msg string, fields ...zap.Field) error {
	s.log.Error(msg, fields...)
	return fmt.Errorf("%w: %s", domain.ErrInvariantViolation, msg)
}
