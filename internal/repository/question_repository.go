package repository

import (
	"github.com/lephan/quokka/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	Create(question *model.Question) error
	FindByID(id uint) (*model.Question, error)
	FindByIDs(ids []uint) ([]model.Question, error)
	FindByTopicID(topicID uint, limit int) ([]model.Question, error)
	FindRandom(limit int) ([]model.Question, error)
	FindSimilar(questionID uint, count int, excludeIDs []uint) ([]model.Question, error)
	Update(question *model.Question) error
	Delete(id uint) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

// withVariants preloads all variant rows; blanks come back in position order
// so evaluation can align submissions positionally.
func (r *questionRepository) withVariants() *gorm.DB {
	return r.db.
		Preload("Options").
		Preload("Pairs").
		Preload("Blanks", func(db *gorm.DB) *gorm.DB {
			return db.Order("blanks.position ASC")
		})
}

func (r *questionRepository) Create(question *model.Question) error {
	return r.db.Create(question).Error
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.withVariants().First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// FindByIDs returns questions in the order ids were given; SQL IN makes no
// ordering promise of its own.
func (r *questionRepository) FindByIDs(ids []uint) ([]model.Question, error) {
	var fetched []model.Question
	if err := r.withVariants().Where("id IN ?", ids).Find(&fetched).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]model.Question, len(fetched))
	for _, q := range fetched {
		byID[q.ID] = q
	}
	questions := make([]model.Question, 0, len(fetched))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

func (r *questionRepository) FindByTopicID(topicID uint, limit int) ([]model.Question, error) {
	var questions []model.Question
	query := r.withVariants().Where("topic_id = ?", topicID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) FindRandom(limit int) ([]model.Question, error) {
	var questions []model.Question
	if err := r.withVariants().Order("RANDOM()").Limit(limit).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// FindSimilar picks questions from the same topic as questionID, excluding
// the ids already queued in the session.
func (r *questionRepository) FindSimilar(questionID uint, count int, excludeIDs []uint) ([]model.Question, error) {
	var source model.Question
	if err := r.db.Select("id", "topic_id").First(&source, questionID).Error; err != nil {
		return nil, err
	}

	exclude := append([]uint{questionID}, excludeIDs...)
	var questions []model.Question
	err := r.withVariants().
		Where("topic_id = ?", source.TopicID).
		Where("id NOT IN ?", exclude).
		Order("RANDOM()").
		Limit(count).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) Update(question *model.Question) error {
	return r.db.Save(question).Error
}

func (r *questionRepository) Delete(id uint) error {
	return r.db.Delete(&model.Question{}, id).Error
}
