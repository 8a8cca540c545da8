package domain

import (
	"slices"
	"time"
)

// QuestionKind tags a question's answer format.
type QuestionKind string

const (
	KindTrueFalse      QuestionKind = "true_false"
	KindMultipleChoice QuestionKind = "mcq"
)

const (
	AnswerTrue  = "True"
	AnswerFalse = "False"
)

// Question is an immutable quiz item. For multiple choice questions CorrectAnswer is a key of Options.
type Question struct {
	ID            int64             `json:"id"`
	Kind          QuestionKind      `json:"type"`
	Prompt        string            `json:"question"`
	CorrectAnswer string            `json:"correct_answer"`
	Options       map[string]string `json:"options,omitempty"`
}

// Clone returns a copy that shares no state with q.
func (q Question) Clone() Question {
	out := q
	if q.Options != nil {
		out.Options = make(map[string]string, len(q.Options))
		for k, v := range q.Options {
			out.Options[k] = v
		}
	}
	return out
}

// IsCorrect grades value against the authoritative answer.
func (q Question) IsCorrect(value string) bool {
	return value == q.CorrectAnswer
}

// Accepts reports whether value is one of the choices the question offers.
func (q Question) Accepts(value string) bool {
	switch q.Kind {
	case KindTrueFalse:
		return value == AnswerTrue || value == AnswerFalse
	case KindMultipleChoice:
		_, ok := q.Options[value]
		return ok
	}
	return false
}

// OptionKeys returns the option keys in lexical order (a, b, c, ...).
func (q Question) OptionKeys() []string {
	keys := make([]string, 0, len(q.Options))
	for k := range q.Options {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// QuizContent is the parsed body of a quiz.
type QuizContent struct {
	Topic     string     `json:"topic"`
	Questions []Question `json:"questions"`
}

// QuestionIDs lists ids in content order.
func (c QuizContent) QuestionIDs() []int64 {
	ids := make([]int64, len(c.Questions))
	for i, q := range c.Questions {
		ids[i] = q.ID
	}
	return ids
}

// Quiz is the stored entity. Sessions only ever read a snapshot of it.
type Quiz struct {
	ID        int64       `json:"id"`
	Title     string      `json:"title"`
	Topic     string      `json:"topic"`
	CreatedAt time.Time   `json:"created_at"`
	Content   QuizContent `json:"content"`
}

// NewQuiz is the input for creating a quiz.
type NewQuiz struct {
	Title   string      `json:"title" validate:"required,max=255"`
	Topic   string      `json:"topic" validate:"required,max=255"`
	Content QuizContent `json:"content"`
}

// QuizPatch carries a partial update; nil fields are left untouched.
type QuizPatch struct {
	Title   *string      `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Topic   *string      `json:"topic,omitempty" validate:"omitempty,min=1,max=255"`
	Content *QuizContent `json:"content,omitempty"`
}

// Apply returns quiz with the patch fields applied.
func (p QuizPatch) Apply(quiz Quiz) Quiz {
	if p.Title != nil {
		quiz.Title = *p.Title
	}
	if p.Topic != nil {
		quiz.Topic = *p.Topic
	}
	if p.Content != nil {
		quiz.Content = *p.Content
	}
	return quiz
}

// Answer is one ledger entry. An empty SubmittedValue marks a timeout.
type Answer struct {
	QuestionID     int64  `json:"questionId"`
	SubmittedValue string `json:"answer"`
	IsCorrect      bool   `json:"isCorrect"`
	TimeSpentMs    int64  `json:"timeSpent"`
	AttemptNumber  int    `json:"attemptCount,omitempty"`
}

// TimedOut reports whether the entry was produced by timer expiry.
func (a Answer) TimedOut() bool {
	return a.SubmittedValue == ""
}

// Result summarizes a finished session. It is never mutated after compilation.
type Result struct {
	QuizID                   int64     `json:"quizId"`
	Title                    string    `json:"title"`
	Mode                     Mode      `json:"quizMode"`
	TotalQuestions           int       `json:"totalQuestions"`
	CorrectCount             int       `json:"correctAnswers"`
	TotalIncorrectAttempts   int       `json:"totalIncorrectAttempts"`
	Answers                  []Answer  `json:"answers"`
	TotalTimeSpentMs         int64     `json:"totalTimeSpent"`
	AverageTimePerQuestionMs int64     `json:"averageTimePerQuestion"`
	CompletedAt              time.Time `json:"date"`
}
