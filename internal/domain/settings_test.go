package domain

import (
	"errors"
	"testing"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	s := QuizSettings{Mode: ModePractice}.Normalize()
	if s.TimePerQuestionSeconds != DefaultTimePerQuestionSeconds {
		t.Fatalf("expected default time per question, got %d", s.TimePerQuestionSeconds)
	}
	if !s.ImmediateReview {
		t.Fatalf("practice should imply immediate review")
	}
	if got := (QuizSettings{}).Normalize().Mode; got != ModeStandard {
		t.Fatalf("expected standard mode by default, got %s", got)
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	zero := 0
	cases := map[string]QuizSettings{
		"unknown mode":   {Mode: "sprint", TimePerQuestionSeconds: 10},
		"negative time":  {Mode: ModeTimed, TimePerQuestionSeconds: -5},
		"zero questions": {Mode: ModeStandard, TimePerQuestionSeconds: 10, QuestionCount: &zero},
	}
	for name, s := range cases {
		err := s.Validate()
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || len(verr.Problems) == 0 {
			t.Fatalf("%s: expected problems to be listed, got %v", name, err)
		}
	}
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("default settings should validate: %v", err)
	}
}

func TestQuestionCloneIsIndependent(t *testing.T) {
	q := Question{ID: 1, Kind: KindMultipleChoice, CorrectAnswer: "a", Options: map[string]string{"a": "x", "b": "y"}}
	c := q.Clone()
	c.Options["a"] = "changed"
	if q.Options["a"] != "x" {
		t.Fatalf("clone shares options map with source")
	}
	if !q.Accepts("b") || q.Accepts("z") {
		t.Fatalf("unexpected Accepts result")
	}
}
