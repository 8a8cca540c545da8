package session

import (
	"fmt"
	"math/rand"
	"slices"

	"quiz-session-service/internal/domain"
)

// Queue is the sequence of question slots presented to the learner. It starts as a copy of the
// quiz content and only ever grows: practice mode inserts repeat slots after wrong answers.
type Queue struct {
	slots []domain.Question
}

// NewQueue copies the content, shuffles it when requested and truncates it to the question cap.
func NewQueue(content domain.QuizContent, settings domain.QuizSettings, rnd *rand.Rand) Queue {
	slots := make([]domain.Question, len(content.Questions))
	for i, q := range content.Questions {
		slots[i] = q.Clone()
	}
	if settings.Shuffle {
		// Fisher-Yates
		for i := len(slots) - 1; i > 0; i-- {
			j := rnd.Intn(i + 1)
			slots[i], slots[j] = slots[j], slots[i]
		}
	}
	if n := settings.QuestionCount; n != nil && *n > 0 && *n < len(slots) {
		slots = slots[:*n]
	}
	return Queue{slots: slots}
}

func queueFromSlots(slots []domain.Question) Queue {
	q := Queue{slots: make([]domain.Question, len(slots))}
	for i, s := range slots {
		q.slots[i] = s.Clone()
	}
	return q
}

func (q Queue) Len() int {
	return len(q.slots)
}

// At returns the question in slot i.
func (q Queue) At(i int) (domain.Question, bool) {
	if i < 0 || i >= len(q.slots) {
		return domain.Question{}, false
	}
	return q.slots[i], true
}

// Slots returns a copy of every slot in order.
func (q Queue) Slots() []domain.Question {
	out := make([]domain.Question, len(q.slots))
	for i, s := range q.slots {
		out[i] = s.Clone()
	}
	return out
}

// ScheduleRepeat inserts a copy of the question at sourceIndex further down the queue and returns
// the index of the new slot. With at least two slots after the source the copy lands two or three
// slots later, otherwise it is appended.
func (q *Queue) ScheduleRepeat(sourceIndex int, rnd *rand.Rand) (int, error) {
	if sourceIndex < 0 || sourceIndex >= len(q.slots) {
		return -1, fmt.Errorf("%w: repeat source %d outside queue of %d", domain.ErrInvariantViolation, sourceIndex, len(q.slots))
	}
	repeat := q.slots[sourceIndex].Clone()

	pos := len(q.slots)
	if len(q.slots)-sourceIndex-1 >= 2 {
		pos = min(sourceIndex+2+rnd.Intn(2), len(q.slots))
	}
	q.slots = slices.Insert(q.slots, pos, repeat)
	return pos, nil
}
