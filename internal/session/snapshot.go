package session

import (
	"fmt"
	"time"

	"quiz-session-service/internal/domain"
)

// SlotSnapshot is what the learner already did on the displayed slot.
type SlotSnapshot struct {
	Submitted   bool   `json:"submitted"`
	Value       string `json:"answer,omitempty"`
	Correct     bool   `json:"correct,omitempty"`
	TimeSpentMs int64  `json:"timeSpent,omitempty"`
	Pending     bool   `json:"pending,omitempty"`
}

// Snapshot is the persisted form of a session used to resume after a reload or restart.
type Snapshot struct {
	Quiz                domain.Quiz         `json:"quiz"`
	Settings            domain.QuizSettings `json:"settings"`
	Queue               []domain.Question   `json:"queue"`
	CurrentIndex        int                 `json:"currentIndex"`
	OriginalQuestionIDs []int64             `json:"originalQuestionIds"`
	Answers             []domain.Answer     `json:"answers"`
	SessionStart        time.Time           `json:"sessionStart"`
	Status              Status              `json:"status"`
	PracticeComplete    bool                `json:"practiceComplete,omitempty"`
	Slot                *SlotSnapshot       `json:"slot,omitempty"`
	Result              *domain.Result      `json:"result,omitempty"`
	SavedAt             time.Time           `json:"savedAt"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Quiz:                s.quiz,
		Settings:            s.settings,
		Queue:               s.queue.Slots(),
		CurrentIndex:        s.index,
		OriginalQuestionIDs: append([]int64(nil), s.originalIDs...),
		Answers:             s.ledger.Answers(),
		SessionStart:        s.timer.SessionStart(),
		Status:              s.status,
		PracticeComplete:    s.practiceComplete,
		SavedAt:             s.now(),
	}
	if s.slot.submitted {
		snap.Slot = &SlotSnapshot{
			Submitted:   true,
			Value:       s.slot.value,
			Correct:     s.slot.correct,
			TimeSpentMs: s.slot.timeSpentMs,
			Pending:     s.slot.pending,
		}
	}
	if s.result != nil {
		result := *s.result
		snap.Result = &result
	}
	return snap
}

// Restore rebuilds a session from a snapshot. The current question's clock restarts.
func Restore(snap Snapshot, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	if len(snap.Queue) == 0 || len(snap.OriginalQuestionIDs) == 0 {
		return nil, fmt.Errorf("%w: snapshot without questions", domain.ErrInvariantViolation)
	}
	if snap.CurrentIndex < 0 || snap.CurrentIndex >= len(snap.Queue) {
		return nil, fmt.Errorf("%w: snapshot index %d outside queue of %d", domain.ErrInvariantViolation, snap.CurrentIndex, len(snap.Queue))
	}

	settings := snap.Settings.Normalize()
	s := newSession(snap.Quiz, settings, cfg)
	s.queue = queueFromSlots(snap.Queue)
	s.originalIDs = append([]int64(nil), snap.OriginalQuestionIDs...)
	s.ledger = restoreLedger(settings.Mode, snap.Answers)
	s.index = snap.CurrentIndex
	s.practiceComplete = snap.PracticeComplete
	s.slot = s.policy.slotFor(s, s.index)
	if snap.Slot != nil && snap.Slot.Submitted {
		s.slot = slotState{
			submitted:   true,
			value:       snap.Slot.Value,
			correct:     snap.Slot.Correct,
			timeSpentMs: snap.Slot.TimeSpentMs,
			pending:     snap.Slot.Pending,
		}
	}

	if snap.Status == StatusCompleted {
		s.status = StatusCompleted
		if snap.Result != nil {
			result := *snap.Result
			s.result = &result
		} else {
			result := Compile(s.quiz, settings.Mode, len(s.originalIDs), s.ledger, snap.SessionStart, snap.SavedAt)
			s.result = &result
		}
		return s, nil
	}
	s.timer.resume(snap.SessionStart)
	return s, nil
}
