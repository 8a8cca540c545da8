package domain

// Mode selects how a session branches on answers and navigation.
type Mode string

const (
	ModeStandard Mode = "standard"
	ModePractice Mode = "practice"
	ModeTimed    Mode = "timed"
)

const DefaultTimePerQuestionSeconds = 30

// QuizSettings is fixed when a session starts.
type QuizSettings struct {
	Mode                   Mode `json:"mode" validate:"required,oneof=standard practice timed"`
	TimePerQuestionSeconds int  `json:"timePerQuestion" validate:"min=1,max=3600"`
	// QuestionCount caps the number of questions; nil means all of them.
	QuestionCount   *int `json:"questionCount" validate:"omitempty,min=1"`
	Shuffle         bool `json:"shuffleQuestions"`
	ImmediateReview bool `json:"immediateReview"`
}

func DefaultSettings() QuizSettings {
	return QuizSettings{
		Mode:                   ModeStandard,
		TimePerQuestionSeconds: DefaultTimePerQuestionSeconds,
	}
}

// Normalize fills defaults. Practice always reviews immediately.
func (s QuizSettings) Normalize() QuizSettings {
	if s.Mode == "" {
		s.Mode = ModeStandard
	}
	if s.TimePerQuestionSeconds == 0 {
		s.TimePerQuestionSeconds = DefaultTimePerQuestionSeconds
	}
	if s.Mode == ModePractice {
		s.ImmediateReview = true
	}
	return s
}

// Validate checks the settings after normalization.
func (s QuizSettings) Validate() error {
	return validateStruct(s)
}
