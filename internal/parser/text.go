package parser

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"quiz-session-service/internal/domain"
)

// DefaultTopic is used when neither a title nor a topic line is present.
const DefaultTopic = "Untitled Quiz"

type section int

const (
	sectionNone section = iota
	sectionTrueFalse
	sectionMultipleChoice
	sectionAnswers
)

var (
	headerRe     = regexp.MustCompile(`(?i)^(true/false|multiple choice questions|answer key|answers):\s*(.*)$`)
	topicRe      = regexp.MustCompile(`(?i)\bon\s+(.*?):`)
	tfKeyRe      = regexp.MustCompile(`(?i)^(\d+)\.\s*(true|false|t|f)$`)
	mcqKeyRe     = regexp.MustCompile(`(?i)^(\d+)\.\s*([a-z])\)?$`)
	genericKeyRe = regexp.MustCompile(`^(\d+)\.\s*(.+)$`)
	tfLineRe     = regexp.MustCompile(`(?i)^(\d+)\.(.+?)(?:\((true|false)\))?\.?$`)
	numberedRe   = regexp.MustCompile(`^(\d+)\.(.+)$`)
	optionLineRe = regexp.MustCompile(`(?i)^([a-z])\)\s+(.+)$`)
	inlineOptRe  = regexp.MustCompile(`(?i)(?:^|\s)([a-h])\)\s+`)
)

type sections struct {
	trueFalse []string
	mcq       []string
	answers   []string
}

// ParseText converts the plain-text authoring format into quiz content. The title, when
// given, becomes the topic. Questions without a usable answer are dropped.
func ParseText(raw, title string) (domain.QuizContent, error) {
	content := domain.QuizContent{Topic: extractTopic(raw, title)}

	secs := splitSections(raw)
	key := parseAnswerKey(secs.answers)

	content.Questions = append(content.Questions, parseTrueFalse(secs.trueFalse, key)...)
	content.Questions = append(content.Questions, parseMultipleChoice(secs.mcq, key)...)

	if len(content.Questions) == 0 {
		return domain.QuizContent{}, domain.NewValidationError("no questions found in quiz text")
	}
	if err := Validate(content); err != nil {
		return domain.QuizContent{}, err
	}
	return content, nil
}

func extractTopic(raw, title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	first, _, _ := strings.Cut(raw, "\n")
	if !strings.Contains(strings.ToLower(first), "questions") {
		return DefaultTopic
	}
	if m := topicRe.FindStringSubmatch(first); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}
	return DefaultTopic
}

// splitSections groups lines under the last seen top-level header. Inside the answer key
// the question headers are kept as sub-section markers.
func splitSections(raw string) sections {
	var out sections
	current := sectionNone

	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if m := headerRe.FindStringSubmatch(line); m != nil {
			kind := headerKind(m[1])
			if current == sectionAnswers && kind != sectionAnswers {
				out.answers = append(out.answers, line)
				continue
			}
			current = kind
			line = strings.TrimSpace(m[2])
		}
		if line == "" {
			continue
		}
		switch current {
		case sectionTrueFalse:
			out.trueFalse = append(out.trueFalse, line)
		case sectionMultipleChoice:
			out.mcq = append(out.mcq, line)
		case sectionAnswers:
			out.answers = append(out.answers, line)
		}
	}
	return out
}

func headerKind(name string) section {
	switch strings.ToLower(name) {
	case "true/false":
		return sectionTrueFalse
	case "multiple choice questions":
		return sectionMultipleChoice
	default:
		return sectionAnswers
	}
}

func parseAnswerKey(lines []string) map[int64]string {
	key := make(map[int64]string)
	mode := sectionNone
	for _, line := range lines {
		if m := headerRe.FindStringSubmatch(line); m != nil {
			mode = headerKind(m[1])
			continue
		}
		switch mode {
		case sectionTrueFalse:
			if m := tfKeyRe.FindStringSubmatch(line); m != nil {
				key[atoi(m[1])] = normalizeTrueFalse(m[2])
			}
		case sectionMultipleChoice:
			if m := mcqKeyRe.FindStringSubmatch(line); m != nil {
				key[atoi(m[1])] = strings.ToLower(m[2])
			}
		default:
			if m := tfKeyRe.FindStringSubmatch(line); m != nil {
				key[atoi(m[1])] = normalizeTrueFalse(m[2])
			} else if m := mcqKeyRe.FindStringSubmatch(line); m != nil {
				key[atoi(m[1])] = strings.ToLower(m[2])
			} else if m := genericKeyRe.FindStringSubmatch(line); m != nil {
				key[atoi(m[1])] = strings.TrimSpace(m[2])
			}
		}
	}
	return key
}

func parseTrueFalse(lines []string, key map[int64]string) []domain.Question {
	var out []domain.Question
	for _, line := range lines {
		m := tfLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		id := atoi(m[1])
		answer := normalizeTrueFalse(m[3])
		if answer == "" {
			answer = normalizeTrueFalse(key[id])
		}
		if answer == "" {
			continue
		}
		out = append(out, domain.Question{
			ID:            id,
			Kind:          domain.KindTrueFalse,
			Prompt:        strings.TrimSpace(m[2]),
			CorrectAnswer: answer,
		})
	}
	return out
}

func parseMultipleChoice(lines []string, key map[int64]string) []domain.Question {
	var (
		out     []domain.Question
		current *domain.Question
	)
	flush := func() {
		if current == nil || len(current.Options) == 0 {
			return
		}
		answer := normalizeOptionKey(key[current.ID])
		if _, ok := current.Options[answer]; !ok {
			return
		}
		current.CorrectAnswer = answer
		out = append(out, *current)
	}

	for _, line := range lines {
		if m := numberedRe.FindStringSubmatch(line); m != nil {
			flush()
			prompt, options := splitInlineOptions(strings.TrimSpace(m[2]))
			current = &domain.Question{
				ID:      atoi(m[1]),
				Kind:    domain.KindMultipleChoice,
				Prompt:  prompt,
				Options: options,
			}
			continue
		}
		if current == nil {
			continue
		}
		if m := optionLineRe.FindStringSubmatch(line); m != nil {
			current.Options[strings.ToLower(m[1])] = strings.TrimSpace(m[2])
			continue
		}
		// continuation of a prompt that wraps onto several lines
		if len(current.Options) == 0 {
			current.Prompt += " " + line
		}
	}
	flush()
	return out
}

// splitInlineOptions handles "Which is it? a) one b) two c) three" on a single line.
func splitInlineOptions(text string) (string, map[string]string) {
	options := make(map[string]string)
	marks := inlineOptRe.FindAllStringSubmatchIndex(text, -1)
	if len(marks) < 2 || strings.ToLower(text[marks[0][2]:marks[0][3]]) != "a" {
		return text, options
	}
	for i, mark := range marks {
		end := len(text)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		letter := strings.ToLower(text[mark[2]:mark[3]])
		options[letter] = strings.TrimSpace(text[mark[1]:end])
	}
	return strings.TrimSpace(text[:marks[0][0]]), options
}

func normalizeTrueFalse(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "t":
		return domain.AnswerTrue
	case "false", "f":
		return domain.AnswerFalse
	}
	return ""
}

func normalizeOptionKey(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.TrimSuffix(v, ")")
	if len(v) > 1 && v[1] == ')' {
		v = v[:1]
	}
	return v
}

func atoi(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
