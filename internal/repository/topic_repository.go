package repository

import (
	"github.com/lephan/quokka/internal/model"
	"gorm.io/gorm"
)

type TopicRepository interface {
	Create(topic *model.Topic) error
	FindByID(id uint) (*model.Topic, error)
	FindAllWithQuestionCount() ([]struct {
		model.Topic
		QuestionCount int
	}, error)
	Delete(id uint) error
}

type topicRepository struct {
	db *gorm.DB
}

func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Create(topic *model.Topic) error {
	return r.db.Create(topic).Error
}

func (r *topicRepository) FindByID(id uint) (*model.Topic, error) {
	var topic model.Topic
	if err := r.db.First(&topic, id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) FindAllWithQuestionCount() ([]struct {
	model.Topic
	QuestionCount int
}, error) {
	var results []struct {
		model.Topic
		QuestionCount int
	}
	err := r.db.Model(&model.Topic{}).
		Select("topics.*, (SELECT COUNT(*) FROM questions WHERE questions.topic_id = topics.id AND questions.deleted_at IS NULL) as question_count").
		Where("topics.deleted_at IS NULL").
		Order("topics.name ASC").
		Scan(&results).Error
	return results, err
}

func (r *topicRepository) Delete(id uint) error {
	return r.db.Delete(&model.Topic{}, id).Error
}
