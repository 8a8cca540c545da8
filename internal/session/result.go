package session

import (
	"time"

	"quiz-session-service/internal/domain"
)

// Compile reduces a ledger to the session result. Total time is wall time since the session
// started when timing ran, otherwise the sum of per-answer times.
func Compile(quiz domain.Quiz, mode domain.Mode, totalQuestions int, ledger *Ledger, sessionStart, now time.Time) domain.Result {
	answers := ledger.Answers()

	var total int64
	if !sessionStart.IsZero() {
		total = max(now.Sub(sessionStart).Milliseconds(), 0)
	} else {
		for _, a := range answers {
			total += a.TimeSpentMs
		}
	}

	var average int64
	if answered := ledger.AnsweredCount(); answered > 0 {
		average = total / int64(answered)
	}

	return domain.Result{
		QuizID:                   quiz.ID,
		Title:                    quiz.Title,
		Mode:                     mode,
		TotalQuestions:           totalQuestions,
		CorrectCount:             ledger.CorrectCount(),
		TotalIncorrectAttempts:   ledger.TotalIncorrectAttempts(),
		Answers:                  answers,
		TotalTimeSpentMs:         total,
		AverageTimePerQuestionMs: average,
		CompletedAt:              now,
	}
}
