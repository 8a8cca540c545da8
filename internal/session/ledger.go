package session

import "quiz-session-service/internal/domain"

// Ledger is the log of graded answers keyed by question id.
//
// Standard and timed sessions keep a single entry per question and replace it on re-submission.
// Practice sessions keep every incorrect attempt until the first correct one, which then replaces
// them all and carries the total attempt count.
type Ledger struct {
	mode    domain.Mode
	order   []int64
	entries map[int64][]domain.Answer
}

func NewLedger(mode domain.Mode) *Ledger {
	return &Ledger{
		mode:    mode,
		entries: make(map[int64][]domain.Answer),
	}
}

// restoreLedger rebuilds a ledger from answers in the order Answers returned them.
func restoreLedger(mode domain.Mode, answers []domain.Answer) *Ledger {
	l := NewLedger(mode)
	for _, a := range answers {
		if _, seen := l.entries[a.QuestionID]; !seen {
			l.order = append(l.order, a.QuestionID)
		}
		l.entries[a.QuestionID] = append(l.entries[a.QuestionID], a)
	}
	return l
}

// Record grades value against q and stores the resulting entry. Any correctness claimed by a
// caller is ignored.
func (l *Ledger) Record(q domain.Question, value string, timeSpentMs int64) domain.Answer {
	answer := domain.Answer{
		QuestionID:     q.ID,
		SubmittedValue: value,
		IsCorrect:      q.IsCorrect(value),
		TimeSpentMs:    max(timeSpentMs, 0),
	}

	prior, seen := l.entries[q.ID]
	if !seen {
		l.order = append(l.order, q.ID)
	}

	if l.mode != domain.ModePractice {
		l.entries[q.ID] = []domain.Answer{answer}
		return answer
	}

	answer.AttemptNumber = maxAttempt(prior) + 1
	if answer.IsCorrect {
		l.entries[q.ID] = []domain.Answer{answer}
	} else {
		l.entries[q.ID] = append(prior, answer)
	}
	return answer
}

// AttemptsFor returns the highest attempt number recorded for id, or the raw entry count when
// entries carry no attempt numbers.
func (l *Ledger) AttemptsFor(id int64) int {
	entries := l.entries[id]
	if n := maxAttempt(entries); n > 0 {
		return n
	}
	return len(entries)
}

// IsMastered reports whether id has a correct entry.
func (l *Ledger) IsMastered(id int64) bool {
	for _, a := range l.entries[id] {
		if a.IsCorrect {
			return true
		}
	}
	return false
}

// Latest returns the most recent entry for id.
func (l *Ledger) Latest(id int64) (domain.Answer, bool) {
	entries := l.entries[id]
	if len(entries) == 0 {
		return domain.Answer{}, false
	}
	return entries[len(entries)-1], true
}

// TotalIncorrectAttempts sums, per question, the attempts made before the correct one, or every
// attempt when the question was never answered correctly.
func (l *Ledger) TotalIncorrectAttempts() int {
	total := 0
	for _, id := range l.order {
		attempts := l.AttemptsFor(id)
		if l.IsMastered(id) {
			attempts--
		}
		total += attempts
	}
	return total
}

// CorrectCount is the number of distinct questions with a correct entry.
func (l *Ledger) CorrectCount() int {
	n := 0
	for _, id := range l.order {
		if l.IsMastered(id) {
			n++
		}
	}
	return n
}

// AnsweredCount is the number of distinct questions with any entry.
func (l *Ledger) AnsweredCount() int {
	return len(l.order)
}

// Answers flattens the ledger in first-answered order.
func (l *Ledger) Answers() []domain.Answer {
	out := make([]domain.Answer, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.entries[id]...)
	}
	return out
}

// EntriesFor returns a copy of the entries stored for id.
func (l *Ledger) EntriesFor(id int64) []domain.Answer {
	return append([]domain.Answer(nil), l.entries[id]...)
}

func maxAttempt(entries []domain.Answer) int {
	n := 0
	for _, a := range entries {
		n = max(n, a.AttemptNumber)
	}
	return n
}
