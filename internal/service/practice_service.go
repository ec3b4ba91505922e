package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lephan/quokka/internal/dto"
	"github.com/lephan/quokka/internal/event"
	"github.com/lephan/quokka/internal/evaluator"
	"github.com/lephan/quokka/internal/model"
	"github.com/lephan/quokka/internal/repository"
	"github.com/rs/zerolog/log"
)

var (
	ErrSessionNotFound = errors.New("practice session not found")

	// ErrNotCurrentQuestion rejects submissions against anything but the
	// question the learner is on. Out-of-order submissions are a contract
	// violation, not a silent no-op.
	ErrNotCurrentQuestion = errors.New("submitted question is not the current question")

	ErrSessionEmpty = errors.New("practice session has no questions")

	// ErrNotStaged rejects accepting a remediation question that was never
	// offered (or whose offer was cleared by navigation).
	ErrNotStaged = errors.New("question is not a staged remediation offer")
)

const (
	defaultSessionSize = 10
	remediationCount   = 3
)

// answerRecord is the session-local answer log entry; immutable once added.
type answerRecord struct {
	QuestionID  uint
	IsCorrect   bool
	SubmittedAt time.Time
}

// practiceSession owns one learner's question queue. Only the service
// mutates it; handlers get DTO snapshots.
type practiceSession struct {
	mu           sync.Mutex
	id           string
	userID       *uint
	questions    []model.Question
	currentIndex int
	answers      []answerRecord
	staged       []model.Question
}

type PracticeService interface {
	StartSession(req dto.StartSessionDTO) (*dto.SessionResponseDTO, error)
	GetSession(sessionID string) (*dto.SessionResponseDTO, error)
	SubmitAnswer(ctx context.Context, sessionID string, req dto.SubmitAnswerDTO) (*dto.AnswerFeedbackDTO, error)
	Advance(sessionID string, direction string) (*dto.SessionResponseDTO, error)
	AcceptRemediation(sessionID string, questionID uint) (*dto.SessionResponseDTO, error)
	Stats(sessionID string) (*dto.SessionStatsDTO, error)
}

type practiceService struct {
	mu           sync.Mutex
	sessions     map[string]*practiceSession
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
	recommender  RecommendationService
	feedback     FeedbackService
	publisher    event.Publisher
}

func NewPracticeService(
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	recommender RecommendationService,
	feedback FeedbackService,
	publisher event.Publisher,
) PracticeService {
	return &practiceService{
		sessions:     make(map[string]*practiceSession),
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		recommender:  recommender,
		feedback:     feedback,
		publisher:    publisher,
	}
}

// StartSession resolves exactly one question source: explicit ids, topic,
// personalized recommendation, or the unfiltered default set.
func (s *practiceService) StartSession(req dto.StartSessionDTO) (*dto.SessionResponseDTO, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSessionSize
	}

	var questions []model.Question
	var err error
	switch {
	case len(req.QuestionIDs) > 0:
		questions, err = s.questionRepo.FindByIDs(req.QuestionIDs)
	case req.TopicID != nil:
		questions, err = s.questionRepo.FindByTopicID(*req.TopicID, limit)
	case req.UserID != nil:
		questions, err = s.recommender.RecommendedQuestions(*req.UserID, limit)
	default:
		questions, err = s.questionRepo.FindRandom(limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrSessionEmpty
	}

	session := &practiceSession{
		id:        uuid.NewString(),
		userID:    req.UserID,
		questions: questions,
	}
	s.mu.Lock()
	s.sessions[session.id] = session
	s.mu.Unlock()

	log.Info().Str("sessionID", session.id).Int("questions", len(questions)).Msg("Practice session started")
	return s.snapshot(session), nil
}

func (s *practiceService) GetSession(sessionID string) (*dto.SessionResponseDTO, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(session), nil
}

func (s *practiceService) SubmitAnswer(ctx context.Context, sessionID string, req dto.SubmitAnswerDTO) (*dto.AnswerFeedbackDTO, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	if session.currentIndex >= len(session.questions) {
		session.mu.Unlock()
		return nil, ErrSessionEmpty
	}
	current := session.questions[session.currentIndex]
	if current.ID != req.QuestionID {
		session.mu.Unlock()
		return nil, fmt.Errorf("%w: current is %d, got %d", ErrNotCurrentQuestion, current.ID, req.QuestionID)
	}
	queued := make([]uint, len(session.questions))
	for i, q := range session.questions {
		queued[i] = q.ID
	}
	session.mu.Unlock()

	sub := toSubmission(req.Answer)
	result, explanation, err := s.feedback.FeedbackForAnswer(ctx, &current, sub)
	if err != nil {
		return nil, err
	}

	record := answerRecord{QuestionID: current.ID, IsCorrect: result.IsCorrect, SubmittedAt: time.Now()}

	session.mu.Lock()
	session.answers = append(session.answers, record)
	session.staged = nil
	session.mu.Unlock()

	// Progress reporting is fire-and-forget; failures are logged and never
	// block the learner.
	go s.reportProgress(session.userID, current.ID, req.Answer, result.IsCorrect, record.SubmittedAt)

	var remediation []model.Question
	if !result.IsCorrect {
		remediation, err = s.questionRepo.FindSimilar(current.ID, remediationCount, queued)
		if err != nil {
			log.Warn().Err(err).Uint("questionID", current.ID).Msg("SubmitAnswer: remediation fetch failed, dropping offer")
			remediation = nil
		}
		session.mu.Lock()
		session.staged = remediation
		session.mu.Unlock()
	}

	feedbackDTO := &dto.AnswerFeedbackDTO{
		QuestionID:    current.ID,
		IsCorrect:     result.IsCorrect,
		Explanation:   explanation,
		CorrectAnswer: fromSubmission(result.Canonical),
		SubmittedAt:   record.SubmittedAt,
	}
	for i := range remediation {
		feedbackDTO.Remediation = append(feedbackDTO.Remediation, toPracticeQuestionDTO(&remediation[i]))
	}
	return feedbackDTO, nil
}

// Advance moves the cursor, clamped to the queue bounds. Staged remediation
// is an offer tied to the question just left, so it is cleared either way.
func (s *practiceService) Advance(sessionID string, direction string) (*dto.SessionResponseDTO, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	switch direction {
	case "next":
		if session.currentIndex < len(session.questions)-1 {
			session.currentIndex++
		}
	case "previous":
		if session.currentIndex > 0 {
			session.currentIndex--
		}
	default:
		session.mu.Unlock()
		return nil, fmt.Errorf("unknown direction %q", direction)
	}
	session.staged = nil
	session.mu.Unlock()

	return s.snapshot(session), nil
}

// AcceptRemediation appends a staged question to the end of the queue and
// jumps to it. This is the only mutation that grows the queue mid-session.
func (s *practiceService) AcceptRemediation(sessionID string, questionID uint) (*dto.SessionResponseDTO, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	var accepted *model.Question
	for i := range session.staged {
		if session.staged[i].ID == questionID {
			accepted = &session.staged[i]
			break
		}
	}
	if accepted == nil {
		session.mu.Unlock()
		return nil, fmt.Errorf("%w: question %d", ErrNotStaged, questionID)
	}
	session.questions = append(session.questions, *accepted)
	session.currentIndex = len(session.questions) - 1
	session.staged = nil
	session.mu.Unlock()

	return s.snapshot(session), nil
}

func (s *practiceService) Stats(sessionID string) (*dto.SessionStatsDTO, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	stats := statsFor(session.answers)
	return &stats, nil
}

func (s *practiceService) session(sessionID string) (*practiceSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return session, nil
}

func (s *practiceService) reportProgress(userID *uint, questionID uint, answer dto.SubmissionDTO, isCorrect bool, submittedAt time.Time) {
	raw, err := json.Marshal(answer)
	if err != nil {
		log.Error().Err(err).Uint("questionID", questionID).Msg("reportProgress: failed to serialize answer")
		return
	}

	record := &model.StudentAnswer{
		UserID:      userID,
		QuestionID:  questionID,
		Submitted:   string(raw),
		IsCorrect:   isCorrect,
		SubmittedAt: submittedAt,
	}
	if err := s.answerRepo.Create(record); err != nil {
		log.Error().Err(err).Uint("questionID", questionID).Msg("reportProgress: failed to persist answer")
	}

	if err := s.publisher.Publish(event.AnswerSubmitted, map[string]interface{}{
		"question_id": questionID,
		"user_id":     userID,
		"is_correct":  isCorrect,
	}); err != nil {
		log.Error().Err(err).Uint("questionID", questionID).Msg("reportProgress: failed to publish event")
	}
}

func (s *practiceService) snapshot(session *practiceSession) *dto.SessionResponseDTO {
	session.mu.Lock()
	defer session.mu.Unlock()

	resp := &dto.SessionResponseDTO{
		ID:           session.id,
		UserID:       session.userID,
		CurrentIndex: session.currentIndex,
		Stats:        statsFor(session.answers),
	}
	for i := range session.questions {
		resp.Questions = append(resp.Questions, toPracticeQuestionDTO(&session.questions[i]))
	}
	if session.currentIndex >= 0 && session.currentIndex < len(resp.Questions) {
		current := resp.Questions[session.currentIndex]
		resp.CurrentQuestion = &current
	}
	return resp
}

func statsFor(answers []answerRecord) dto.SessionStatsDTO {
	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}
	accuracy := 0
	if len(answers) > 0 {
		accuracy = int(math.Round(float64(correct) / float64(len(answers)) * 100))
	}
	return dto.SessionStatsDTO{
		Attempted: len(answers),
		Correct:   correct,
		Accuracy:  fmt.Sprintf("%d%%", accuracy),
	}
}

func toSubmission(d dto.SubmissionDTO) evaluator.Submission {
	return evaluator.Submission{
		OptionKey: d.OptionKey,
		Bool:      d.Bool,
		Matches:   d.Matches,
		Blanks:    d.Blanks,
	}
}

func fromSubmission(sub evaluator.Submission) dto.SubmissionDTO {
	return dto.SubmissionDTO{
		OptionKey: sub.OptionKey,
		Bool:      sub.Bool,
		Matches:   sub.Matches,
		Blanks:    sub.Blanks,
	}
}

// toPracticeQuestionDTO strips correctness data from the learner-facing view.
func toPracticeQuestionDTO(q *model.Question) dto.PracticeQuestionDTO {
	out := dto.PracticeQuestionDTO{
		ID:         q.ID,
		TopicID:    q.TopicID,
		Type:       q.Type,
		Difficulty: q.Difficulty,
		Text:       q.Text,
	}
	switch q.Type {
	case model.TypeMCQ:
		for _, opt := range q.Options {
			out.Options = append(out.Options, dto.PracticeOptionDTO{Key: opt.Key, Text: opt.Text})
		}
	case model.TypeMatching:
		for _, pair := range q.Pairs {
			out.LeftItems = append(out.LeftItems, pair.Left)
			out.RightItems = append(out.RightItems, pair.Right)
		}
	case model.TypeFillInBlank:
		out.BlankCount = len(q.Blanks)
	}
	return out
}
