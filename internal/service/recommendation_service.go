package service

import (
	"fmt"
	"sort"

	"github.com/lephan/quokka/internal/model"
	"github.com/lephan/quokka/internal/repository"
	"github.com/rs/zerolog/log"
)

// RecommendationService picks practice questions for a learner, weakest
// topics first. Learners with no history get the default random set.
type RecommendationService interface {
	RecommendedQuestions(userID uint, limit int) ([]model.Question, error)
}

type recommendationService struct {
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
}

func NewRecommendationService(questionRepo repository.QuestionRepository, answerRepo repository.AnswerRepository) RecommendationService {
	return &recommendationService{questionRepo: questionRepo, answerRepo: answerRepo}
}

func (s *recommendationService) RecommendedQuestions(userID uint, limit int) ([]model.Question, error) {
	stats, err := s.answerRepo.AccuracyByTopic(userID)
	if err != nil {
		return nil, fmt.Errorf("error loading answer history for user %d: %w", userID, err)
	}
	if len(stats) == 0 {
		log.Info().Uint("userID", userID).Msg("RecommendedQuestions: no history, serving default set")
		return s.questionRepo.FindRandom(limit)
	}

	// Lowest accuracy first; ties broken by attempt count so barely-touched
	// topics surface before well-drilled ones.
	sort.Slice(stats, func(i, j int) bool {
		ai := float64(stats[i].Correct) / float64(stats[i].Attempted)
		aj := float64(stats[j].Correct) / float64(stats[j].Attempted)
		if ai != aj {
			return ai < aj
		}
		return stats[i].Attempted < stats[j].Attempted
	})

	recent, err := s.answerRepo.RecentQuestionIDs(userID, limit*2)
	if err != nil {
		log.Warn().Err(err).Uint("userID", userID).Msg("RecommendedQuestions: could not load recent questions, may repeat some")
		recent = nil
	}
	seen := make(map[uint]bool, len(recent))
	for _, id := range recent {
		seen[id] = true
	}

	var picked []model.Question
	for _, topicStat := range stats {
		if len(picked) >= limit {
			break
		}
		questions, err := s.questionRepo.FindByTopicID(topicStat.TopicID, limit)
		if err != nil {
			log.Warn().Err(err).Uint("topicID", topicStat.TopicID).Msg("RecommendedQuestions: topic fetch failed, skipping")
			continue
		}
		for _, q := range questions {
			if len(picked) >= limit {
				break
			}
			if seen[q.ID] {
				continue
			}
			seen[q.ID] = true
			picked = append(picked, q)
		}
	}

	if len(picked) < limit {
		filler, err := s.questionRepo.FindRandom(limit - len(picked))
		if err == nil {
			for _, q := range filler {
				if !seen[q.ID] {
					picked = append(picked, q)
				}
			}
		}
	}
	return picked, nil
}
