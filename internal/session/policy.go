package session

import (
	"fmt"

	"go.uber.org/zap"

	"quiz-session-service/internal/domain"
)

// modePolicy holds the branching for one delivery mode. A session picks its policy once.
type modePolicy interface {
	submit(s *Session, q domain.Question, value string) (domain.Answer, error)
	advance(s *Session) error
	goBack(s *Session, target int) error
	expire(s *Session) error
	canEnd(s *Session) bool
	// slotFor is the slot state shown when the learner lands on index.
	slotFor(s *Session, index int) slotState
}

func policyFor(mode domain.Mode) modePolicy {
	switch mode {
	case domain.ModePractice:
		return practicePolicy{}
	case domain.ModeTimed:
		return timedPolicy{}
	default:
		return standardPolicy{}
	}
}

// recordNow grades and stores the answer immediately.
func recordNow(s *Session, q domain.Question, value string) domain.Answer {
	answer := s.ledger.Record(q, value, s.timer.Elapsed())
	s.slot = slotState{
		submitted:   true,
		value:       value,
		correct:     answer.IsCorrect,
		timeSpentMs: answer.TimeSpentMs,
	}
	return answer
}

// advanceLinear walks the original questions once and finishes after the last.
func advanceLinear(s *Session) error {
	if s.index+1 < len(s.originalIDs) {
		s.moveTo(s.index + 1)
		return nil
	}
	s.finish()
	return nil
}

// Standard: every answer is recorded, re-submission replaces, back navigation is free.
type standardPolicy struct{}

func (standardPolicy) submit(s *Session, q domain.Question, value string) (domain.Answer, error) {
	return recordNow(s, q, value), nil
}

func (standardPolicy) advance(s *Session) error {
	return advanceLinear(s)
}

func (standardPolicy) goBack(s *Session, target int) error {
	if target < 0 || target >= s.index {
		return fmt.Errorf("%w: cannot go back from %d to %d", domain.ErrNavigationNotAllowed, s.index, target)
	}
	s.moveTo(target)
	return nil
}

func (standardPolicy) expire(*Session) error {
	return nil
}

func (standardPolicy) canEnd(*Session) bool {
	return false
}

// slotFor shows the stored answer when revisiting a question.
func (standardPolicy) slotFor(s *Session, index int) slotState {
	q, ok := s.queue.At(index)
	if !ok {
		return slotState{}
	}
	answer, ok := s.ledger.Latest(q.ID)
	if !ok {
		return slotState{}
	}
	return slotState{
		submitted:   true,
		value:       answer.SubmittedValue,
		correct:     answer.IsCorrect,
		timeSpentMs: answer.TimeSpentMs,
	}
}

// Timed: like standard without back navigation; expiry records a timeout and moves on.
type timedPolicy struct{}

func (timedPolicy) submit(s *Session, q domain.Question, value string) (domain.Answer, error) {
	return recordNow(s, q, value), nil
}

func (timedPolicy) advance(s *Session) error {
	return advanceLinear(s)
}

func (timedPolicy) goBack(*Session, int) error {
	return domain.ErrNavigationNotAllowed
}

func (timedPolicy) expire(s *Session) error {
	q, err := s.current()
	if err != nil {
		return err
	}
	if !s.slot.submitted {
		timeout := s.ledger.Record(q, "", int64(s.settings.TimePerQuestionSeconds)*1000)
		s.slot = slotState{submitted: true, timeSpentMs: timeout.TimeSpentMs}
		s.log.Debug("question timed out", zap.Int64("question_id", q.ID), zap.Int("index", s.index))
	}
	return advanceLinear(s)
}

func (timedPolicy) canEnd(*Session) bool {
	return false
}

// slotFor reads the ledger like standard mode. Without back navigation an entry for the
// displayed id can only come from the current visit.
func (timedPolicy) slotFor(s *Session, index int) slotState {
	return standardPolicy{}.slotFor(s, index)
}

// Practice: wrong answers are held until Advance, then recorded and scheduled to come back.
// The session ends once every original question is mastered.
type practicePolicy struct{}

func (practicePolicy) submit(s *Session, q domain.Question, value string) (domain.Answer, error) {
	if s.slot.submitted {
		return domain.Answer{}, domain.ErrAlreadyAnswered
	}
	if q.IsCorrect(value) {
		answer := recordNow(s, q, value)
		if s.allMastered() && s.index == s.queue.Len()-1 {
			s.practiceComplete = true
		}
		return answer, nil
	}

	elapsed := s.timer.Elapsed()
	s.slot = slotState{
		submitted:   true,
		value:       value,
		timeSpentMs: elapsed,
		pending:     true,
	}
	return domain.Answer{
		QuestionID:     q.ID,
		SubmittedValue: value,
		TimeSpentMs:    elapsed,
		AttemptNumber:  s.ledger.AttemptsFor(q.ID) + 1,
	}, nil
}

func (practicePolicy) advance(s *Session) error {
	if !s.slot.submitted {
		return domain.ErrNotAnswered
	}
	q, err := s.current()
	if err != nil {
		return err
	}
	if s.slot.pending {
		if _, err := s.queue.ScheduleRepeat(s.index, s.rnd); err != nil {
			return s.violation(err.Error(), zap.Int64("question_id", q.ID))
		}
		s.ledger.Record(q, s.slot.value, s.slot.timeSpentMs)
		s.slot.pending = false
	}

	if s.index+1 < s.queue.Len() {
		s.moveTo(s.index + 1)
		return nil
	}
	if s.allMastered() && s.ledger.IsMastered(q.ID) {
		s.finish()
		return nil
	}
	// Unreachable while every wrong answer schedules a later slot; stay put rather than finish early.
	s.log.Warn("practice session on last slot with unmastered questions",
		zap.Int("index", s.index), zap.Int("queue_length", s.queue.Len()))
	return nil
}

func (practicePolicy) goBack(*Session, int) error {
	return domain.ErrNavigationNotAllowed
}

func (practicePolicy) expire(*Session) error {
	return nil
}

func (practicePolicy) canEnd(s *Session) bool {
	return s.slot.submitted && s.slot.correct && s.allMastered()
}

func (practicePolicy) slotFor(*Session, int) slotState {
	return slotState{}
}
