package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-session-service/internal/domain"
)

const sampleText = `4 questions on Inflammation Biology:
True/False:
1. Inflammation is a response of vascularized tissues. (True)
2. The first step is recognition of the agent.
Multiple Choice Questions:
3. Which cell arrives first
at the site of injury?
a) Neutrophil
b) Macrophage
c) Lymphocyte
4. Which mediator causes vasodilation? a) Histamine b) Insulin c) Collagen d) Keratin

Answer Key:
True/False:
2. F
Multiple Choice Questions:
3. a
4. a)
`

func TestParseTextSections(t *testing.T) {
	content, err := ParseText(sampleText, "")
	require.NoError(t, err)

	assert.Equal(t, "Inflammation Biology", content.Topic)
	require.Len(t, content.Questions, 4)

	q1 := content.Questions[0]
	assert.Equal(t, int64(1), q1.ID)
	assert.Equal(t, domain.KindTrueFalse, q1.Kind)
	assert.Equal(t, "Inflammation is a response of vascularized tissues.", q1.Prompt)
	assert.Equal(t, domain.AnswerTrue, q1.CorrectAnswer)

	q2 := content.Questions[1]
	assert.Equal(t, "The first step is recognition of the agent", q2.Prompt)
	assert.Equal(t, domain.AnswerFalse, q2.CorrectAnswer)

	q3 := content.Questions[2]
	assert.Equal(t, domain.KindMultipleChoice, q3.Kind)
	assert.Equal(t, "Which cell arrives first at the site of injury?", q3.Prompt)
	assert.Equal(t, map[string]string{"a": "Neutrophil", "b": "Macrophage", "c": "Lymphocyte"}, q3.Options)
	assert.Equal(t, "a", q3.CorrectAnswer)

	q4 := content.Questions[3]
	assert.Equal(t, "Which mediator causes vasodilation?", q4.Prompt)
	assert.Equal(t, []string{"a", "b", "c", "d"}, q4.OptionKeys())
	assert.Equal(t, "Keratin", q4.Options["d"])
	assert.Equal(t, "a", q4.CorrectAnswer)
}

func TestParseTextTitleOverridesTopic(t *testing.T) {
	content, err := ParseText(sampleText, "  Midterm review ")
	require.NoError(t, err)
	assert.Equal(t, "Midterm review", content.Topic)
}

func TestParseTextDefaultTopic(t *testing.T) {
	content, err := ParseText("True/False:\n1. Water is wet (True)\n", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTopic, content.Topic)
}

func TestParseTextGenericAnswerKey(t *testing.T) {
	raw := `True/False:
1. Go has generics.
Multiple Choice Questions:
2. Which keyword starts a goroutine?
a) go
b) async
Answers:
1. t
2. b) async
`
	content, err := ParseText(raw, "Go")
	require.NoError(t, err)
	require.Len(t, content.Questions, 2)
	assert.Equal(t, domain.AnswerTrue, content.Questions[0].CorrectAnswer)
	assert.Equal(t, "b", content.Questions[1].CorrectAnswer)
}

func TestParseTextDropsQuestionsWithoutAnswer(t *testing.T) {
	raw := `True/False:
1. Has an answer (False)
2. Has no answer
Multiple Choice Questions:
3. Key points at a missing option
a) one
b) two
4. Never answered
a) one
b) two
Answer Key:
3. d
`
	content, err := ParseText(raw, "")
	require.NoError(t, err)
	require.Len(t, content.Questions, 1)
	assert.Equal(t, int64(1), content.Questions[0].ID)
}

func TestParseTextWithoutQuestions(t *testing.T) {
	_, err := ParseText("just some notes\nwith no sections", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestParseTextDuplicateIDs(t *testing.T) {
	raw := `True/False:
1. First (True)
Multiple Choice Questions:
1. Second
a) x
b) y
Answer Key:
1. a
`
	_, err := ParseText(raw, "")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Problems[0], "duplicate id")
}

func TestParseJSON(t *testing.T) {
	raw := []byte(`{
		"topic": "Geography",
		"questions": [
			{"id": 1, "type": "true_false", "question": "Paris is in France", "correct_answer": "True"},
			{"id": 2, "type": "mcq", "question": "Capital of Italy?", "options": {"a": "Rome", "b": "Milan"}, "correct_answer": "a"}
		]
	}`)
	content, err := ParseJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "Geography", content.Topic)
	require.Len(t, content.Questions, 2)
	assert.Equal(t, domain.KindMultipleChoice, content.Questions[1].Kind)
}

func TestParseJSONRejectsUnknownFields(t *testing.T) {
	_, err := ParseJSON([]byte(`{"topic": "x", "questions": [], "extra": true}`))
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	raw := []byte(`{"questions": [{"id": 1, "type": "true_false", "question": "q", "correct_answer": "True"}]} {}`)
	_, err := ParseJSON(raw)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	content := domain.QuizContent{Questions: []domain.Question{
		{ID: 1, Kind: domain.KindTrueFalse, Prompt: "ok", CorrectAnswer: "yes"},
		{ID: 2, Kind: domain.KindMultipleChoice, Prompt: "", Options: map[string]string{"a": "only"}, CorrectAnswer: "b"},
		{ID: 3, Kind: "essay", Prompt: "write"},
	}}

	err := Validate(content)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 5)
}

func TestValidateAcceptsWellFormedContent(t *testing.T) {
	content := domain.QuizContent{Questions: []domain.Question{
		{ID: 7, Kind: domain.KindTrueFalse, Prompt: "ok", CorrectAnswer: domain.AnswerFalse},
	}}
	assert.NoError(t, Validate(content))
}
