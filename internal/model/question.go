package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Question type tags. The tag decides which variant rows are meaningful;
// the evaluator refuses anything else.
const (
	TypeMCQ         = "mcq"
	TypeTrueFalse   = "true_false"
	TypeMatching    = "matching"
	TypeFillInBlank = "fill_in_blank"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Question struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	TopicID     uint           `json:"topic_id" gorm:"not null;index"`
	Type        string         `json:"type" gorm:"not null"` // mcq, true_false, matching, fill_in_blank
	Difficulty  string         `json:"difficulty" gorm:"not null;default:'medium'"`
	Text        string         `json:"text" gorm:"type:text;not null"`
	Explanation string         `json:"explanation,omitempty" gorm:"type:text"`
	AIGenerated bool           `json:"ai_generated" gorm:"default:false"`
	CorrectBool *bool          `json:"correct_bool,omitempty"` // true_false only
	Options     []Option       `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	Pairs       []MatchPair    `json:"pairs,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	Blanks      []Blank        `json:"blanks,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Option is one MCQ choice. Key is an opaque token compared case-sensitively.
type Option struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Key        string `json:"key" gorm:"not null"`
	Text       string `json:"text" gorm:"type:text;not null"`
	IsCorrect  bool   `json:"is_correct" gorm:"not null;default:false"`
}

type MatchPair struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Left       string `json:"left" gorm:"column:left_item;not null"`
	Right      string `json:"right" gorm:"column:right_item;not null"`
}

// Blank is one fill-in-the-blank position. Alternatives holds additional
// accepted strings as a JSON array.
type Blank struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	QuestionID   uint   `json:"question_id" gorm:"not null;index"`
	Position     int    `json:"position" gorm:"not null"`
	Answer       string `json:"answer" gorm:"not null"`
	Alternatives string `json:"alternatives,omitempty" gorm:"type:text"`
}

func (b *Blank) AlternativeList() []string {
	if b.Alternatives == "" {
		return nil
	}
	var alts []string
	if err := json.Unmarshal([]byte(b.Alternatives), &alts); err != nil {
		return nil
	}
	return alts
}

func (b *Blank) SetAlternatives(alts []string) error {
	if len(alts) == 0 {
		b.Alternatives = ""
		return nil
	}
	raw, err := json.Marshal(alts)
	if err != nil {
		return err
	}
	b.Alternatives = string(raw)
	return nil
}
