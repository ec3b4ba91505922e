package dto

import "time"

// --- Admin-facing DTOs (include correctness data) ---

type OptionDTO struct {
	Key       string `json:"key" binding:"required"`
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type MatchPairDTO struct {
	Left  string `json:"left" binding:"required"`
	Right string `json:"right" binding:"required"`
}

type BlankDTO struct {
	Position     int      `json:"position"`
	Answer       string   `json:"answer" binding:"required"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// QuestionCreateDTO covers all variants; the service validates that exactly
// the fields for Type are present.
type QuestionCreateDTO struct {
	TopicID     uint           `json:"topic_id" binding:"required"`
	Type        string         `json:"type" binding:"required,oneof=mcq true_false matching fill_in_blank"`
	Difficulty  string         `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Text        string         `json:"text" binding:"required"`
	Explanation string         `json:"explanation,omitempty"`
	CorrectBool *bool          `json:"correct_bool,omitempty"`
	Options     []OptionDTO    `json:"options,omitempty" binding:"omitempty,dive"`
	Pairs       []MatchPairDTO `json:"pairs,omitempty" binding:"omitempty,dive"`
	Blanks      []BlankDTO     `json:"blanks,omitempty" binding:"omitempty,dive"`
}

type QuestionResponseDTO struct {
	ID          uint           `json:"id"`
	TopicID     uint           `json:"topic_id"`
	Type        string         `json:"type"`
	Difficulty  string         `json:"difficulty"`
	Text        string         `json:"text"`
	Explanation string         `json:"explanation,omitempty"`
	AIGenerated bool           `json:"ai_generated"`
	CorrectBool *bool          `json:"correct_bool,omitempty"`
	Options     []OptionDTO    `json:"options,omitempty"`
	Pairs       []MatchPairDTO `json:"pairs,omitempty"`
	Blanks      []BlankDTO     `json:"blanks,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// GenerateQuestionsDTO asks the AI tutor to draft questions for a topic.
type GenerateQuestionsDTO struct {
	TopicID    uint   `json:"topic_id" binding:"required"`
	Type       string `json:"type" binding:"required,oneof=mcq true_false matching fill_in_blank"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Count      int    `json:"count" binding:"required,min=1,max=10"`
}

// --- Topic DTOs ---

type TopicCreateDTO struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}

type TopicResponseDTO struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// --- Learner-facing question view (correctness data stripped) ---

type PracticeOptionDTO struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

type PracticeQuestionDTO struct {
	ID         uint                `json:"id"`
	TopicID    uint                `json:"topic_id"`
	Type       string              `json:"type"`
	Difficulty string              `json:"difficulty"`
	Text       string              `json:"text"`
	Options    []PracticeOptionDTO `json:"options,omitempty"`
	LeftItems  []string            `json:"left_items,omitempty"`
	RightItems []string            `json:"right_items,omitempty"`
	BlankCount int                 `json:"blank_count,omitempty"`
}
