package parser

import (
	"fmt"
	"strings"

	"quiz-session-service/internal/domain"
)

// Validate reports every structural problem in content as a *domain.ValidationError.
func Validate(content domain.QuizContent) error {
	verr := domain.NewValidationError()
	if len(content.Questions) == 0 {
		verr.Add("quiz has no questions")
	}

	seen := make(map[int64]bool, len(content.Questions))
	for i, q := range content.Questions {
		label := fmt.Sprintf("question %d (id %d)", i+1, q.ID)
		if q.ID <= 0 {
			verr.Add(label + ": id must be positive")
		} else if seen[q.ID] {
			verr.Add(label + ": duplicate id")
		}
		seen[q.ID] = true

		if strings.TrimSpace(q.Prompt) == "" {
			verr.Add(label + ": question text is empty")
		}

		switch q.Kind {
		case domain.KindTrueFalse:
			if q.CorrectAnswer != domain.AnswerTrue && q.CorrectAnswer != domain.AnswerFalse {
				verr.Add(fmt.Sprintf("%s: answer %q must be True or False", label, q.CorrectAnswer))
			}
		case domain.KindMultipleChoice:
			if len(q.Options) < 2 {
				verr.Add(label + ": needs at least two options")
			}
			for _, key := range q.OptionKeys() {
				if key == "" || strings.TrimSpace(q.Options[key]) == "" {
					verr.Add(fmt.Sprintf("%s: option %q is empty", label, key))
				}
			}
			if _, ok := q.Options[q.CorrectAnswer]; !ok {
				verr.Add(fmt.Sprintf("%s: answer %q is not one of the options", label, q.CorrectAnswer))
			}
		default:
			verr.Add(fmt.Sprintf("%s: unknown type %q", label, q.Kind))
		}
	}
	return verr.OrNil()
}
