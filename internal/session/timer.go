package session

import "time"

// TimerDisplay is what the presentation layer shows for the countdown.
type TimerDisplay struct {
	RemainingSeconds int  `json:"remaining"`
	TotalSeconds     int  `json:"total"`
	Running          bool `json:"running"`
}

// Timer tracks session and per-question elapsed time. It does not own a goroutine: whoever
// drives the session calls Tick once per second.
type Timer struct {
	now           func() time.Time
	perQuestion   int
	countdown     bool
	sessionStart  time.Time
	questionStart time.Time
	running       bool
	remaining     int
	expired       bool
}

// NewTimer returns a stopped timer. Only countdown timers signal expiry.
func NewTimer(perQuestionSeconds int, countdown bool, now func() time.Time) *Timer {
	return &Timer{
		now:         now,
		perQuestion: perQuestionSeconds,
		countdown:   countdown,
		remaining:   perQuestionSeconds,
	}
}

// Start is a no-op while running. It sets the session and question start markers if unset.
func (t *Timer) Start() {
	if t.running {
		return
	}
	t.running = true
	now := t.now()
	if t.sessionStart.IsZero() {
		t.sessionStart = now
	}
	if t.questionStart.IsZero() {
		t.questionStart = now
	}
}

// Pause stops the timer and returns the milliseconds spent on the current question.
func (t *Timer) Pause() int64 {
	if !t.running {
		return 0
	}
	t.running = false
	elapsed := t.Elapsed()
	t.questionStart = time.Time{}
	return elapsed
}

// Reset stops the timer, clears both start markers and restores the full countdown.
func (t *Timer) Reset() {
	t.running = false
	t.sessionStart = time.Time{}
	t.questionStart = time.Time{}
	t.remaining = t.perQuestion
	t.expired = false
}

// NextQuestion pauses, clears the question marker and re-arms expiry for the next question.
func (t *Timer) NextQuestion() int64 {
	elapsed := t.Pause()
	t.questionStart = time.Time{}
	t.remaining = t.perQuestion
	t.expired = false
	return elapsed
}

// Elapsed returns milliseconds since the current question started, 0 when unset.
func (t *Timer) Elapsed() int64 {
	if t.questionStart.IsZero() {
		return 0
	}
	return max(t.now().Sub(t.questionStart).Milliseconds(), 0)
}

// Tick recomputes the remaining time. It returns true exactly once per question, when a
// countdown reaches zero.
func (t *Timer) Tick() bool {
	if !t.running || t.questionStart.IsZero() {
		return false
	}
	elapsed := int(t.now().Sub(t.questionStart) / time.Second)
	t.remaining = max(t.perQuestion-elapsed, 0)
	if !t.countdown || t.remaining > 0 || t.expired {
		return false
	}
	t.expired = true
	return true
}

func (t *Timer) Display() TimerDisplay {
	return TimerDisplay{
		RemainingSeconds: t.remaining,
		TotalSeconds:     t.perQuestion,
		Running:          t.running,
	}
}

func (t *Timer) SessionStart() time.Time {
	return t.sessionStart
}

func (t *Timer) Running() bool {
	return t.running
}

// resume restores a persisted session start and starts a fresh question clock.
func (t *Timer) resume(sessionStart time.Time) {
	t.sessionStart = sessionStart
	t.questionStart = time.Time{}
	t.running = false
	t.Start()
}
