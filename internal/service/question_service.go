package service

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lephan/quokka/internal/dto"
	"github.com/lephan/quokka/internal/model"
	"github.com/lephan/quokka/internal/repository"
	"github.com/rs/zerolog/log"
)

type QuestionService interface {
	CreateQuestion(req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error)
	GetQuestion(id uint) (*dto.QuestionResponseDTO, error)
	GetQuestionsByTopic(topicID uint) ([]dto.QuestionResponseDTO, error)
	DeleteQuestion(id uint) error
	GenerateQuestions(ctx context.Context, req dto.GenerateQuestionsDTO) ([]dto.QuestionResponseDTO, error)

	CreateTopic(req dto.TopicCreateDTO) (*dto.TopicResponseDTO, error)
	GetAllTopics() ([]dto.TopicResponseDTO, error)
	DeleteTopic(id uint) error
}

type questionService struct {
	questionRepo repository.QuestionRepository
	topicRepo    repository.TopicRepository
	tutor        TutorService
}

func NewQuestionService(questionRepo repository.QuestionRepository, topicRepo repository.TopicRepository, tutor TutorService) QuestionService {
	return &questionService{questionRepo: questionRepo, topicRepo: topicRepo, tutor: tutor}
}

func (s *questionService) CreateQuestion(req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error) {
	if _, err := s.topicRepo.FindByID(req.TopicID); err != nil {
		return nil, fmt.Errorf("topic not found with ID %d: %w", req.TopicID, err)
	}

	question, err := questionFromCreateDTO(req)
	if err != nil {
		return nil, err
	}
	if err := s.questionRepo.Create(question); err != nil {
		log.Error().Err(err).Msg("CreateQuestion: repository error")
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return questionToResponseDTO(question), nil
}

func (s *questionService) GetQuestion(id uint) (*dto.QuestionResponseDTO, error) {
	question, err := s.questionRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("question not found with ID %d: %w", id, err)
	}
	return questionToResponseDTO(question), nil
}

func (s *questionService) GetQuestionsByTopic(topicID uint) ([]dto.QuestionResponseDTO, error) {
	questions, err := s.questionRepo.FindByTopicID(topicID, 0)
	if err != nil {
		return nil, fmt.Errorf("error fetching questions for topic %d: %w", topicID, err)
	}
	dtos := make([]dto.QuestionResponseDTO, 0, len(questions))
	for i := range questions {
		dtos = append(dtos, *questionToResponseDTO(&questions[i]))
	}
	return dtos, nil
}

func (s *questionService) DeleteQuestion(id uint) error {
	if _, err := s.questionRepo.FindByID(id); err != nil {
		return fmt.Errorf("question not found with ID %d: %w", id, err)
	}
	return s.questionRepo.Delete(id)
}

// GenerateQuestions drafts questions with the AI tutor, persists the valid
// ones, and returns them flagged ai_generated.
func (s *questionService) GenerateQuestions(ctx context.Context, req dto.GenerateQuestionsDTO) ([]dto.QuestionResponseDTO, error) {
	topic, err := s.topicRepo.FindByID(req.TopicID)
	if err != nil {
		return nil, fmt.Errorf("topic not found with ID %d: %w", req.TopicID, err)
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}

	drafts, err := s.tutor.GenerateQuestions(ctx, topic, req.Type, difficulty, req.Count)
	if err != nil {
		log.Error().Err(err).Uint("topicID", req.TopicID).Str("type", req.Type).Msg("GenerateQuestions: tutor call failed")
		return nil, fmt.Errorf("question generation failed: %w", err)
	}

	dtos := make([]dto.QuestionResponseDTO, 0, len(drafts))
	for i := range drafts {
		if err := s.questionRepo.Create(&drafts[i]); err != nil {
			log.Error().Err(err).Msg("GenerateQuestions: failed to persist generated question")
			continue
		}
		dtos = append(dtos, *questionToResponseDTO(&drafts[i]))
	}
	if len(dtos) == 0 {
		return nil, fmt.Errorf("no generated questions could be saved")
	}
	return dtos, nil
}

func (s *questionService) CreateTopic(req dto.TopicCreateDTO) (*dto.TopicResponseDTO, error) {
	topic := &model.Topic{Name: req.Name, Description: req.Description}
	if err := s.topicRepo.Create(topic); err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("CreateTopic: repository error")
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}
	var resp dto.TopicResponseDTO
	if err := copier.Copy(&resp, topic); err != nil {
		return nil, fmt.Errorf("error preparing topic response: %w", err)
	}
	return &resp, nil
}

func (s *questionService) GetAllTopics() ([]dto.TopicResponseDTO, error) {
	topicsWithCount, err := s.topicRepo.FindAllWithQuestionCount()
	if err != nil {
		log.Error().Err(err).Msg("GetAllTopics: repository error")
		return nil, fmt.Errorf("error fetching topics: %w", err)
	}
	dtos := make([]dto.TopicResponseDTO, 0, len(topicsWithCount))
	for _, twc := range topicsWithCount {
		dtos = append(dtos, dto.TopicResponseDTO{
			ID:            twc.Topic.ID,
			Name:          twc.Topic.Name,
			Description:   twc.Topic.Description,
			QuestionCount: twc.QuestionCount,
			CreatedAt:     twc.Topic.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *questionService) DeleteTopic(id uint) error {
	if _, err := s.topicRepo.FindByID(id); err != nil {
		return fmt.Errorf("topic not found with ID %d: %w", id, err)
	}
	return s.topicRepo.Delete(id)
}

// questionFromCreateDTO validates that the request carries exactly the
// variant data its type tag requires.
func questionFromCreateDTO(req dto.QuestionCreateDTO) (*model.Question, error) {
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	q := &model.Question{
		TopicID:     req.TopicID,
		Type:        req.Type,
		Difficulty:  difficulty,
		Text:        req.Text,
		Explanation: req.Explanation,
	}

	switch req.Type {
	case model.TypeMCQ:
		if len(req.Options) < 2 {
			return nil, fmt.Errorf("mcq question requires at least two options")
		}
		correct := 0
		for _, opt := range req.Options {
			if opt.IsCorrect {
				correct++
			}
			q.Options = append(q.Options, model.Option{Key: opt.Key, Text: opt.Text, IsCorrect: opt.IsCorrect})
		}
		if correct != 1 {
			return nil, fmt.Errorf("mcq question requires exactly one correct option, got %d", correct)
		}
	case model.TypeTrueFalse:
		if req.CorrectBool == nil {
			return nil, fmt.Errorf("true_false question requires correct_bool")
		}
		q.CorrectBool = req.CorrectBool
	case model.TypeMatching:
		if len(req.Pairs) < 2 {
			return nil, fmt.Errorf("matching question requires at least two pairs")
		}
		for _, pair := range req.Pairs {
			q.Pairs = append(q.Pairs, model.MatchPair{Left: pair.Left, Right: pair.Right})
		}
	case model.TypeFillInBlank:
		if len(req.Blanks) == 0 {
			return nil, fmt.Errorf("fill_in_blank question requires at least one blank")
		}
		for i, blank := range req.Blanks {
			b := model.Blank{Position: i, Answer: blank.Answer}
			if err := b.SetAlternatives(blank.Alternatives); err != nil {
				return nil, fmt.Errorf("failed to encode blank alternatives: %w", err)
			}
			q.Blanks = append(q.Blanks, b)
		}
	default:
		return nil, fmt.Errorf("unknown question type %q", req.Type)
	}
	return q, nil
}

func questionToResponseDTO(q *model.Question) *dto.QuestionResponseDTO {
	resp := &dto.QuestionResponseDTO{
		ID:          q.ID,
		TopicID:     q.TopicID,
		Type:        q.Type,
		Difficulty:  q.Difficulty,
		Text:        q.Text,
		Explanation: q.Explanation,
		AIGenerated: q.AIGenerated,
		CorrectBool: q.CorrectBool,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
	for _, opt := range q.Options {
		resp.Options = append(resp.Options, dto.OptionDTO{Key: opt.Key, Text: opt.Text, IsCorrect: opt.IsCorrect})
	}
	for _, pair := range q.Pairs {
		resp.Pairs = append(resp.Pairs, dto.MatchPairDTO{Left: pair.Left, Right: pair.Right})
	}
	for _, blank := range q.Blanks {
		resp.Blanks = append(resp.Blanks, dto.BlankDTO{
			Position:     blank.Position,
			Answer:       blank.Answer,
			Alternatives: blank.AlternativeList(),
		})
	}
	return resp
}
