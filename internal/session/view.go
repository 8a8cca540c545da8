package session

import "quiz-session-service/internal/domain"

// Option is one labelled choice of a multiple choice question.
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Feedback describes the learner's answer on the displayed slot. Correctness and the correct
// answer are only filled in when the settings allow immediate review.
type Feedback struct {
	Value         string `json:"answer"`
	TimedOut      bool   `json:"timedOut,omitempty"`
	Correct       *bool  `json:"correct,omitempty"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
}

// QuestionView is the current question without its answer key.
type QuestionView struct {
	Index    int                 `json:"index"`
	ID       int64               `json:"id"`
	Kind     domain.QuestionKind `json:"type"`
	Prompt   string              `json:"question"`
	Options  []Option            `json:"options,omitempty"`
	IsRepeat bool                `json:"isRepeat"`
	Attempt  int                 `json:"attempt"`
	Feedback *Feedback           `json:"feedback,omitempty"`
}

// Progress is the summary the presentation layer shows next to the question. Totals use the
// original question count so repeat slots never change the denominator.
type Progress struct {
	Mode              domain.Mode `json:"mode"`
	Status            Status      `json:"status"`
	Position          int         `json:"position"`
	TotalQuestions    int         `json:"totalQuestions"`
	QueueLength       int         `json:"queueLength"`
	Answered          int         `json:"answered"`
	Mastered          int         `json:"mastered"`
	IncorrectAttempts int         `json:"incorrectAttempts"`
	CanGoBack         bool        `json:"canGoBack"`
	CanEnd            bool        `json:"canEnd"`
	PracticeComplete  bool        `json:"practiceComplete"`
	IsLastSlot        bool        `json:"isLastSlot"`
}

// CurrentQuestion returns the displayed question. It reports false once the session is completed.
func (s *Session) CurrentQuestion() (QuestionView, bool) {
	if s.status == StatusCompleted {
		return QuestionView{}, false
	}
	q, ok := s.queue.At(s.index)
	if !ok {
		return QuestionView{}, false
	}

	view := QuestionView{
		Index:    s.index,
		ID:       q.ID,
		Kind:     q.Kind,
		Prompt:   q.Prompt,
		IsRepeat: s.isRepeatSlot(s.index),
		Attempt:  1,
	}
	if q.Kind == domain.KindMultipleChoice {
		for _, key := range q.OptionKeys() {
			view.Options = append(view.Options, Option{Key: key, Label: q.Options[key]})
		}
	}
	if s.settings.Mode == domain.ModePractice {
		view.Attempt = s.ledger.AttemptsFor(q.ID) + 1
		if s.slot.submitted && !s.slot.pending {
			// the recorded correct answer already counts as an attempt
			view.Attempt = s.ledger.AttemptsFor(q.ID)
		}
	}
	if s.slot.submitted {
		fb := &Feedback{Value: s.slot.value, TimedOut: s.slot.value == ""}
		if s.settings.ImmediateReview {
			correct := s.slot.correct
			fb.Correct = &correct
			fb.CorrectAnswer = q.CorrectAnswer
		}
		view.Feedback = fb
	}
	return view, true
}

// Progress summarizes where the learner is.
func (s *Session) Progress() Progress {
	mastered := 0
	for _, id := range s.originalIDs {
		if s.ledger.IsMastered(id) {
			mastered++
		}
	}
	return Progress{
		Mode:              s.settings.Mode,
		Status:            s.status,
		Position:          s.index + 1,
		TotalQuestions:    len(s.originalIDs),
		QueueLength:       s.queue.Len(),
		Answered:          s.ledger.AnsweredCount(),
		Mastered:          mastered,
		IncorrectAttempts: s.ledger.TotalIncorrectAttempts(),
		CanGoBack:         s.status == StatusInProgress && s.settings.Mode == domain.ModeStandard && s.index > 0,
		CanEnd:            s.status == StatusInProgress && s.policy.canEnd(s),
		PracticeComplete:  s.practiceComplete,
		IsLastSlot:        s.index == s.queue.Len()-1,
	}
}

func (s *Session) isRepeatSlot(index int) bool {
	q, ok := s.queue.At(index)
	if !ok {
		return false
	}
	for i := 0; i < index; i++ {
		if s.queue.slots[i].ID == q.ID {
			return true
		}
	}
	return false
}
