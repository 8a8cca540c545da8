package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"quiz-session-service/internal/domain"
)

// ParseJSON decodes quiz content exported by the authoring tools and validates it.
// Unknown fields and trailing data are rejected.
func ParseJSON(raw []byte) (domain.QuizContent, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var content domain.QuizContent
	if err := dec.Decode(&content); err != nil {
		return domain.QuizContent{}, domain.NewValidationError("invalid quiz json: " + err.Error())
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.QuizContent{}, domain.NewValidationError("invalid quiz json: unexpected data after content")
	}
	if content.Topic == "" {
		content.Topic = DefaultTopic
	}
	if err := Validate(content); err != nil {
		return domain.QuizContent{}, err
	}
	return content, nil
}
