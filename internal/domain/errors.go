package domain

import (
	"errors"
	"strings"
)

var (
	// ErrQuizNotFound indicates the quiz id is missing from the repository.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSessionNotFound is returned when a session id is neither live nor persisted.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionCompleted rejects answers after the result has been compiled.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrQuestionNotFound indicates a submitted question id is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a submitted value is not one of the question's choices.
	ErrOptionNotFound = errors.New("option not found")
	// ErrNavigationNotAllowed is returned for back navigation outside standard mode.
	ErrNavigationNotAllowed = errors.New("navigation not allowed in this mode")
	// ErrNotAnswered is returned when practice mode is asked to move on before an answer.
	ErrNotAnswered = errors.New("current question has not been answered")
	// ErrAlreadyAnswered rejects a second submission on the same practice slot.
	ErrAlreadyAnswered = errors.New("current question already answered")
	// ErrEndNotAllowed is returned when ending practice before every question is mastered.
	ErrEndNotAllowed = errors.New("practice can only end once every question is mastered")
	// ErrResultNotReady is returned when a result is requested before the session completed.
	ErrResultNotReady = errors.New("quiz session has not completed")
	// ErrEmptyQuiz is returned when a session would start without questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrInvariantViolation marks programming errors caught by defensive checks.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrValidation is the sentinel every ValidationError unwraps to.
	ErrValidation = errors.New("validation failed")
)

// ValidationError lists every problem found in author or client input.
type ValidationError struct {
	Problems []string `json:"problems"`
}

func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Add appends a problem.
func (e *ValidationError) Add(problem string) {
	e.Problems = append(e.Problems, problem)
}

// OrNil returns nil when no problems were collected.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Problems) == 0 {
		return nil
	}
	return e
}
