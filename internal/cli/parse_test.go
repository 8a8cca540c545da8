package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-session-service/internal/domain"
)

func TestConvertText(t *testing.T) {
	raw := "True/False:\n1. Go has goroutines. (True)\n"

	var out bytes.Buffer
	require.NoError(t, convertText(raw, "Go basics", &out))

	var content domain.QuizContent
	require.NoError(t, json.Unmarshal(out.Bytes(), &content))
	assert.Equal(t, "Go basics", content.Topic)
	require.Len(t, content.Questions, 1)
	assert.Equal(t, domain.AnswerTrue, content.Questions[0].CorrectAnswer)
}

func TestConvertTextRejectsEmptyQuiz(t *testing.T) {
	var out bytes.Buffer
	err := convertText("nothing to see here", "", &out)
	assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
	assert.Zero(t, out.Len())
}
