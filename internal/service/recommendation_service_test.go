package service

import (
	"testing"

	"github.com/lephan/quokka/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendationsPrioritizeWeakestTopic(t *testing.T) {
	questionRepo := newFakeQuestionRepo(
		mcqQuestion(1, 1, "strong topic q"),
		mcqQuestion(2, 2, "weak topic q"),
		mcqQuestion(3, 2, "weak topic q2"),
	)
	answerRepo := &fakeAnswerRepo{
		accuracy: []repository.TopicAccuracy{
			{TopicID: 1, Attempted: 10, Correct: 9},
			{TopicID: 2, Attempted: 10, Correct: 2},
		},
	}
	svc := NewRecommendationService(questionRepo, answerRepo)

	picked, err := svc.RecommendedQuestions(42, 2)
	require.NoError(t, err)

	require.Len(t, picked, 2)
	for _, q := range picked {
		assert.Equal(t, uint(2), q.TopicID)
	}
}

func TestRecommendationsSkipRecentlyAnswered(t *testing.T) {
	questionRepo := newFakeQuestionRepo(
		mcqQuestion(1, 1, "seen recently"),
		mcqQuestion(2, 1, "fresh"),
	)
	answerRepo := &fakeAnswerRepo{
		accuracy: []repository.TopicAccuracy{{TopicID: 1, Attempted: 4, Correct: 1}},
		recent:   []uint{1},
	}
	svc := NewRecommendationService(questionRepo, answerRepo)

	picked, err := svc.RecommendedQuestions(42, 5)
	require.NoError(t, err)

	require.Len(t, picked, 1)
	assert.Equal(t, uint(2), picked[0].ID)
}

func TestRecommendationsDefaultToRandomWithoutHistory(t *testing.T) {
	questionRepo := newFakeQuestionRepo(mcqQuestion(1, 1, "anything"))
	svc := NewRecommendationService(questionRepo, &fakeAnswerRepo{})

	picked, err := svc.RecommendedQuestions(42, 5)
	require.NoError(t, err)
	assert.Len(t, picked, 1)
}
