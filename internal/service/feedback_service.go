package service

import (
	"context"
	"fmt"

	"github.com/lephan/quokka/internal/dto"
	"github.com/lephan/quokka/internal/evaluator"
	"github.com/lephan/quokka/internal/model"
	"github.com/lephan/quokka/internal/repository"
	"github.com/rs/zerolog/log"
)

// Fallback explanations when the tutor cannot be reached. Correctness always
// comes from the local evaluation, never from the remote call.
const (
	fallbackCorrect   = "Correct! Well done."
	fallbackIncorrect = "Incorrect. Please try again."
)

type FeedbackService interface {
	// FeedbackForAnswer evaluates locally, then decorates the verdict with
	// tutor prose. Tutor failures degrade to the fallback text; evaluation
	// errors propagate.
	FeedbackForAnswer(ctx context.Context, q *model.Question, sub evaluator.Submission) (evaluator.Result, string, error)

	// Hint fetches hint number previousHintCount+1 for a question. Failures
	// propagate so the caller can surface them and allow retry; nothing is
	// accumulated here.
	Hint(ctx context.Context, questionID uint, previousHintCount int) (*dto.HintResponseDTO, error)
}

type feedbackService struct {
	questionRepo repository.QuestionRepository
	tutor        TutorService
}

func NewFeedbackService(questionRepo repository.QuestionRepository, tutor TutorService) FeedbackService {
	return &feedbackService{questionRepo: questionRepo, tutor: tutor}
}

func (s *feedbackService) FeedbackForAnswer(ctx context.Context, q *model.Question, sub evaluator.Submission) (evaluator.Result, string, error) {
	result, err := evaluator.Evaluate(q, sub)
	if err != nil {
		return evaluator.Result{}, "", err
	}

	explanation, tutorErr := s.tutor.ExplainAnswer(ctx, q, sub, result.Canonical, result.IsCorrect)
	if tutorErr != nil {
		log.Warn().Err(tutorErr).Uint("questionID", q.ID).Msg("FeedbackForAnswer: tutor unavailable, using fallback explanation")
		if result.IsCorrect {
			explanation = fallbackCorrect
		} else {
			explanation = fallbackIncorrect
		}
	}
	return result, explanation, nil
}

func (s *feedbackService) Hint(ctx context.Context, questionID uint, previousHintCount int) (*dto.HintResponseDTO, error) {
	question, err := s.questionRepo.FindByID(questionID)
	if err != nil {
		return nil, fmt.Errorf("question not found with ID %d: %w", questionID, err)
	}

	hint, err := s.tutor.NextHint(ctx, question, previousHintCount)
	if err != nil {
		log.Warn().Err(err).Uint("questionID", questionID).Int("previousHintCount", previousHintCount).Msg("Hint: tutor call failed")
		return nil, fmt.Errorf("hint is unavailable right now: %w", err)
	}

	return &dto.HintResponseDTO{
		QuestionID: questionID,
		HintIndex:  previousHintCount,
		Hint:       hint,
	}, nil
}
