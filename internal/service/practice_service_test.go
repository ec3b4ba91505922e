package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lephan/quokka/internal/dto"
	"github.com/lephan/quokka/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type practiceFixture struct {
	service      PracticeService
	questionRepo *fakeQuestionRepo
	answerRepo   *fakeAnswerRepo
	recommender  *fakeRecommender
	tutor        *fakeTutor
	publisher    *fakePublisher
}

func newPracticeFixture(questions ...model.Question) *practiceFixture {
	f := &practiceFixture{
		questionRepo: newFakeQuestionRepo(questions...),
		answerRepo:   &fakeAnswerRepo{},
		recommender:  &fakeRecommender{},
		tutor:        &fakeTutor{explanation: "because the first option is the definition"},
		publisher:    &fakePublisher{},
	}
	feedback := NewFeedbackService(f.questionRepo, f.tutor)
	f.service = NewPracticeService(f.questionRepo, f.answerRepo, f.recommender, feedback, f.publisher)
	return f
}

func (f *practiceFixture) startSession(t *testing.T, ids ...uint) *dto.SessionResponseDTO {
	t.Helper()
	session, err := f.service.StartSession(dto.StartSessionDTO{QuestionIDs: ids})
	require.NoError(t, err)
	return session
}

func mcqAnswer(questionID uint, key string) dto.SubmitAnswerDTO {
	return dto.SubmitAnswerDTO{QuestionID: questionID, Answer: dto.SubmissionDTO{OptionKey: key}}
}

func TestStartSessionUsesExplicitQuestionIDs(t *testing.T) {
	f := newPracticeFixture(
		mcqQuestion(1, 1, "q1"),
		mcqQuestion(2, 1, "q2"),
		mcqQuestion(3, 2, "q3"),
	)

	session := f.startSession(t, 3, 1)

	require.Len(t, session.Questions, 2)
	assert.Equal(t, uint(3), session.Questions[0].ID)
	assert.Equal(t, uint(1), session.Questions[1].ID)
	assert.Equal(t, 0, session.CurrentIndex)
	require.NotNil(t, session.CurrentQuestion)
	assert.Equal(t, uint(3), session.CurrentQuestion.ID)
	assert.Equal(t, "0%", session.Stats.Accuracy)
	assert.Equal(t, 0, f.recommender.calls)
}

func TestStartSessionPrefersRecommendationsForUser(t *testing.T) {
	f := newPracticeFixture()
	f.recommender.questions = []model.Question{mcqQuestion(7, 4, "recommended")}

	userID := uint(42)
	session, err := f.service.StartSession(dto.StartSessionDTO{UserID: &userID})
	require.NoError(t, err)

	require.Len(t, session.Questions, 1)
	assert.Equal(t, uint(7), session.Questions[0].ID)
	assert.Equal(t, 1, f.recommender.calls)
}

func TestStartSessionFailsWithoutQuestions(t *testing.T) {
	f := newPracticeFixture()

	_, err := f.service.StartSession(dto.StartSessionDTO{})
	assert.ErrorIs(t, err, ErrSessionEmpty)
}

func TestGetSessionUnknownID(t *testing.T) {
	f := newPracticeFixture(mcqQuestion(1, 1, "q1"))

	_, err := f.service.GetSession("no-such-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSubmitAnswerRejectsNonCurrentQuestion(t *testing.T) {
	f := newPracticeFixture(mcqQuestion(1, 1, "q1"), mcqQuestion(2, 1, "q2"))
	session := f.startSession(t, 1, 2)

	_, err := f.service.SubmitAnswer(context.Background(), session.ID, mcqAnswer(2, "a"))
	assert.ErrorIs(t, err, ErrNotCurrentQuestion)

	stats, err := f.service.Stats(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Attempted)
}

func TestSubmitAnswerRecordsAndReportsProgress(t *testing.T) {
	f := newPracticeFixture(mcqQuestion(1, 1, "q1"))
	session := f.startSession(t, 1)

	feedback, err := f.service.SubmitAnswer(context.Background(), session.ID, mcqAnswer(1, "a"))
	require.NoError(t, err)

	assert.True(t, feedback.IsCorrect)
	assert.Equal(t, "because the first option is the definition", feedback.Explanation)
	assert.Equal(t, "a", feedback.CorrectAnswer.OptionKey)
	assert.Empty(t, feedback.Remediation)

	// Progress is reported off the request path.
	require.Eventually(t, func() bool {
		return f.answerRepo.createdCount() == 1 && f.publisher.publishedCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSessionStatsRoundAccuracy(t *testing.T) {
	f := newPracticeFixture(mcqQuestion(1, 1, "q1"), mcqQuestion(2, 1, "q2"), mcqQuestion(3, 1, "q3"))
	session := f.startSession(t, 1, 2, 3)
	ctx := context.Background()

	_, err := f.service.SubmitAnswer(ctx, session.ID, mcqAnswer(1, "a"))
	require.NoError(t, err)
	_, err = f.service.Advance(session.ID, "next")
	require.NoError(t, err)

	_, err = f.service.SubmitAnswer(ctx, session.ID, mcqAnswer(2, "b"))
	require.NoError(t, err)
	_, err = f.service.Advance(session.ID, "next")
	require.NoError(t, err)

	_, err = f.service.SubmitAnswer(ctx, session.ID, mcqAnswer(3, "a"))
	require.NoError(t, err)

	stats, err := f.service.Stats(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Attempted)
	assert.Equal(t, 2, stats.Correct)
	assert.Equal(t, "67%", stats.Accuracy)
}

func TestIncorrectAnswerStagesRemediation(t *testing.T) {
	f := newPracticeFixture(mcqQuestion(1, 1, "q1"))
	f.questionRepo.similar = []model.Question{mcqQuestion(8, 1, "easier take"), mcqQuestion(9, 1, "another take")}
	session := f.startSession(t, 1)

	feedback, err := f.service.SubmitAnswer(context.Background(), session.ID, mcqAnswer(1, "b"))
	require.NoError(t, err)

	assert.False(t, feedback.IsCorrect)
	require.Len(t, feedback.Remediation, 2)
	assert.Equal(t, uint(8), feedback.Remediation[0].ID)

	// Accepting an offered question appends it and jumps to it.
	updated, err := f.service.AcceptRemediation(session.ID, 8)
	require.NoError(t, err)
	require.Len(t, updated.Questions, 2)
	assert.Equal(t, 1, updated.CurrentIndex)
	assert.Equal(t, uint(8), updated.CurrentQuestion.ID)

	// The offer is consumed; the sibling is no longer staged.
	_, err = f.service.AcceptRemediation(session.ID, 9)
	assert.ErrorIs(t, err, ErrNotStaged)
}

func TestRemediationFetchFailureDropsOffer(t *testing.T) {
	f := newPracticeFixture(mcqQuestion(1, 1, "q1"))
	f.questionRepo.similarErr = errors.New("connection refused")
	session := f.startSession(t, 1)

	// The learner still gets their verdict; the offer is simply absent.
	feedback, err := f.service.SubmitAnswer(context.Background(), session.ID, mcqAnswer(1, "b"))
	require.NoError(t, err)
	assert.False(t, feedback.IsCorrect)
	assert.Empty(t, feedback.Remediation)

	_, err = f.service.AcceptRemediation(session.ID, 8)
	assert.ErrorIs(t, err, ErrNotStaged)
}

func TestAdvanceClearsStagedRemediation(t *testing.T) {
	f := newPracticeFixture(mcqQuestion(1, 1, "q1"), mcqQuestion(2, 1, "q2"))
	f.questionRepo.similar = []model.Question{mcqQuestion(8, 1, "easier take")}
	session := f.startSession(t, 1, 2)

	_, err := f.service.SubmitAnswer(context.Background(), session.ID, mcqAnswer(1, "c"))
	require.NoError(t, err)

	updated, err := f.service.Advance(session.ID, "next")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CurrentIndex)

	_, err = f.service.AcceptRemediation(session.ID, 8)
	assert.ErrorIs(t, err, ErrNotStaged)
}

func TestAdvanceClampsAtQueueBounds(t *testing.T) {
	f := newPracticeFixture(mcqQuestion(1, 1, "q1"), mcqQuestion(2, 1, "q2"))
	session := f.startSession(t, 1, 2)

	updated, err := f.service.Advance(session.ID, "previous")
	require.NoError(t, err)
	assert.Equal(t, 0, updated.CurrentIndex)

	_, err = f.service.Advance(session.ID, "next")
	require.NoError(t, err)
	updated, err = f.service.Advance(session.ID, "next")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CurrentIndex)

	_, err = f.service.Advance(session.ID, "sideways")
	assert.Error(t, err)
}

func TestConsecutiveIncorrectAnswersFetchFreshRemediation(t *testing.T) {
	f := newPracticeFixture(mcqQuestion(1, 1, "q1"), mcqQuestion(2, 1, "q2"))
	f.questionRepo.similar = []model.Question{mcqQuestion(8, 1, "easier take")}
	session := f.startSession(t, 1, 2)
	ctx := context.Background()

	_, err := f.service.SubmitAnswer(ctx, session.ID, mcqAnswer(1, "b"))
	require.NoError(t, err)
	_, err = f.service.Advance(session.ID, "next")
	require.NoError(t, err)
	_, err = f.service.SubmitAnswer(ctx, session.ID, mcqAnswer(2, "b"))
	require.NoError(t, err)

	assert.Equal(t, 2, f.questionRepo.similarCalls)
}

func TestPracticeViewHidesCorrectness(t *testing.T) {
	correct := true
	q := model.Question{
		ID:          5,
		TopicID:     1,
		Type:        model.TypeTrueFalse,
		Text:        "The sky is blue.",
		CorrectBool: &correct,
	}
	f := newPracticeFixture(q)
	session := f.startSession(t, 5)

	view := session.Questions[0]
	assert.Equal(t, model.TypeTrueFalse, view.Type)
	assert.Empty(t, view.Options)
	assert.Zero(t, view.BlankCount)
}
