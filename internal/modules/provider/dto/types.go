package dto

type ProviderInfo struct {
	Name    string
	Version string
	Enabled bool
	Binary  string
	Roles   []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type ContentItemPayload struct {
	Origin string  `json:"origin"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}

type ScoreInput struct {
	Topic      string               `json:"topic"`
	Objectives []string             `json:"objectives"`
	Items      []ContentItemPayload `json:"items"`
}

type ScoreOutput struct {
	Scores []float64 `json:"scores"`
}

type QuestionPayload struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	ObjectiveRef string `json:"objective_ref"`
	Difficulty   string `json:"difficulty"`
}

type GenerateInput struct {
	Topic        string   `json:"topic"`
	Objectives   []string `json:"objectives"`
	Difficulty   string   `json:"difficulty"`
	ContextText  []string `json:"context_text"`
	MinQuestions int      `json:"min_questions"`
	MaxQuestions int      `json:"max_questions"`
}

type GenerateOutput struct {
	Questions []QuestionPayload `json:"questions"`
}

type AnswerPayload struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
}

type GradeInput struct {
	Topic       string            `json:"topic"`
	Objectives  []string          `json:"objectives"`
	ContextText []string          `json:"context_text"`
	Questions   []QuestionPayload `json:"questions"`
	Answers     []AnswerPayload   `json:"answers"`
}

type GradeOutput struct {
	PerQuestion    map[string]float64 `json:"per_question"`
	OverallScore   float64            `json:"overall_score"`
	WeakObjectives []string           `json:"weak_objectives"`
}

type ExplainInput struct {
	Topic          string   `json:"topic"`
	ContextText    []string `json:"context_text"`
	WeakObjectives []string `json:"weak_objectives"`
	Attempt        int      `json:"attempt"`
}

type ExplainOutput struct {
	Explanations map[string]string `json:"explanations"`
}
