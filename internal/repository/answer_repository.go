package repository

import (
	"github.com/lephan/quokka/internal/model"
	"gorm.io/gorm"
)

// TopicAccuracy aggregates a learner's history per topic; the recommendation
// service ranks topics by it.
type TopicAccuracy struct {
	TopicID   uint
	Attempted int
	Correct   int
}

type AnswerRepository interface {
	Create(answer *model.StudentAnswer) error
	AccuracyByTopic(userID uint) ([]TopicAccuracy, error)
	RecentQuestionIDs(userID uint, limit int) ([]uint, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(answer *model.StudentAnswer) error {
	return r.db.Create(answer).Error
}

func (r *answerRepository) AccuracyByTopic(userID uint) ([]TopicAccuracy, error) {
	var results []TopicAccuracy
	err := r.db.Model(&model.StudentAnswer{}).
		Select("questions.topic_id as topic_id, COUNT(*) as attempted, SUM(CASE WHEN student_answers.is_correct THEN 1 ELSE 0 END) as correct").
		Joins("JOIN questions ON questions.id = student_answers.question_id").
		Where("student_answers.user_id = ?", userID).
		Where("student_answers.deleted_at IS NULL").
		Where("questions.deleted_at IS NULL").
		Group("questions.topic_id").
		Scan(&results).Error
	return results, err
}

func (r *answerRepository) RecentQuestionIDs(userID uint, limit int) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.StudentAnswer{}).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Limit(limit).
		Pluck("question_id", &ids).Error
	return ids, err
}
