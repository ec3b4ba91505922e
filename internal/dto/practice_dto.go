package dto

import "time"

// SubmissionDTO mirrors evaluator.Submission on the wire. Exactly one field
// group should be populated, matching the current question's type.
type SubmissionDTO struct {
	OptionKey string            `json:"option_key,omitempty"`
	Bool      *bool             `json:"bool,omitempty"`
	Matches   map[string]string `json:"matches,omitempty"`
	Blanks    []string          `json:"blanks,omitempty"`
}

// StartSessionDTO resolves the question source in priority order: explicit
// question ids, then topic, then personalized by user, then the default set.
type StartSessionDTO struct {
	UserID      *uint  `json:"user_id,omitempty"`
	TopicID     *uint  `json:"topic_id,omitempty"`
	QuestionIDs []uint `json:"question_ids,omitempty"`
	Limit       int    `json:"limit,omitempty" binding:"omitempty,min=1,max=50"`
}

type SubmitAnswerDTO struct {
	QuestionID uint          `json:"question_id" binding:"required"`
	Answer     SubmissionDTO `json:"answer" binding:"required"`
}

type AdvanceDTO struct {
	Direction string `json:"direction" binding:"required,oneof=next previous"`
}

type AcceptRemediationDTO struct {
	QuestionID uint `json:"question_id" binding:"required"`
}

// AnswerFeedbackDTO is what the learner sees after a submission. IsCorrect
// is always locally computed; Explanation may be the degraded fallback text.
type AnswerFeedbackDTO struct {
	QuestionID    uint                  `json:"question_id"`
	IsCorrect     bool                  `json:"is_correct"`
	Explanation   string                `json:"explanation"`
	CorrectAnswer SubmissionDTO         `json:"correct_answer"`
	Remediation   []PracticeQuestionDTO `json:"remediation,omitempty"`
	SubmittedAt   time.Time             `json:"submitted_at"`
}

type SessionResponseDTO struct {
	ID              string                `json:"id"`
	UserID          *uint                 `json:"user_id,omitempty"`
	Questions       []PracticeQuestionDTO `json:"questions"`
	CurrentIndex    int                   `json:"current_index"`
	CurrentQuestion *PracticeQuestionDTO  `json:"current_question,omitempty"`
	Stats           SessionStatsDTO       `json:"stats"`
}

type SessionStatsDTO struct {
	Attempted int    `json:"attempted"`
	Correct   int    `json:"correct"`
	Accuracy  string `json:"accuracy"` // rounded percentage, "0%" with no attempts
}

type HintRequestDTO struct {
	PreviousHintCount int `json:"previous_hint_count" binding:"min=0"`
}

type HintResponseDTO struct {
	QuestionID uint   `json:"question_id"`
	HintIndex  int    `json:"hint_index"`
	Hint       string `json:"hint"`
}
