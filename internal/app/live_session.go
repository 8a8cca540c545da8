package app

import (
	"sync"

	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/session"
)

// View is everything a client needs to render a session: the current question, progress,
// the countdown and, once completed, the result.
type View struct {
	SessionID string                `json:"sessionId"`
	QuizID    int64                 `json:"quizId"`
	Title     string                `json:"title"`
	Status    session.Status        `json:"status"`
	Question  *session.QuestionView `json:"question,omitempty"`
	Progress  session.Progress      `json:"progress"`
	Timer     session.TimerDisplay  `json:"timer"`
	Result    *domain.Result        `json:"result,omitempty"`
}

// LiveSession is a session held in memory together with its subscribers. All access to the
// underlying state machine goes through mu.
type LiveSession struct {
	id          string
	mu          sync.Mutex
	session     *session.Session
	subscribers map[chan View]struct{}
}

// NewLiveSession is exported for infrastructure layers that need to seed sessions.
func NewLiveSession(id string, s *session.Session) *LiveSession {
	return &LiveSession{
		id:          id,
		session:     s,
		subscribers: make(map[chan View]struct{}),
	}
}

func (l *LiveSession) ID() string {
	return l.id
}

// Completed reports whether the session has compiled its result.
func (l *LiveSession) Completed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session.Status() == session.StatusCompleted
}

func (l *LiveSession) subscribe() (<-chan View, func()) {
	ch := make(chan View, 8)

	// The channel is fresh and buffered, so the initial send cannot block under mu.
	l.mu.Lock()
	l.subscribers[ch] = struct{}{}
	ch <- l.viewLocked()
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		if _, ok := l.subscribers[ch]; ok {
			delete(l.subscribers, ch)
			close(ch)
		}
		l.mu.Unlock()
	}
	return ch, cancel
}

// broadcastLocked pushes view to every subscriber. A slow subscriber loses its oldest
// pending view instead of blocking the session.
func (l *LiveSession) broadcastLocked(view View) {
	for ch := range l.subscribers {
		select {
		case ch <- view:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}

func (l *LiveSession) closeSubscribersLocked() {
	for ch := range l.subscribers {
		delete(l.subscribers, ch)
		close(ch)
	}
}

func (l *LiveSession) viewLocked() View {
	s := l.session
	quiz := s.Quiz()
	view := View{
		SessionID: l.id,
		QuizID:    quiz.ID,
		Title:     quiz.Title,
		Status:    s.Status(),
		Progress:  s.Progress(),
		Timer:     s.TimerDisplay(),
	}
	if q, ok := s.CurrentQuestion(); ok {
		view.Question = &q
	}
	if result, ok := s.Result(); ok {
		view.Result = &result
	}
	return view
}
