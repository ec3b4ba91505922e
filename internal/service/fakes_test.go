package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/lephan/quokka/internal/evaluator"
	"github.com/lephan/quokka/internal/model"
	"github.com/lephan/quokka/internal/repository"
)

// In-memory fakes for the repository, tutor, and publisher seams.

type fakeQuestionRepo struct {
	mu           sync.Mutex
	questions    map[uint]model.Question
	similar      []model.Question
	similarErr   error
	similarCalls int
}

func newFakeQuestionRepo(questions ...model.Question) *fakeQuestionRepo {
	repo := &fakeQuestionRepo{questions: make(map[uint]model.Question)}
	for _, q := range questions {
		repo.questions[q.ID] = q
	}
	return repo
}

func (r *fakeQuestionRepo) Create(question *model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if question.ID == 0 {
		question.ID = uint(len(r.questions) + 1)
	}
	r.questions[question.ID] = *question
	return nil
}

func (r *fakeQuestionRepo) FindByID(id uint) (*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[id]
	if !ok {
		return nil, fmt.Errorf("record not found")
	}
	return &q, nil
}

func (r *fakeQuestionRepo) FindByIDs(ids []uint) ([]model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Question
	for _, id := range ids {
		if q, ok := r.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) FindByTopicID(topicID uint, limit int) ([]model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Question
	for _, q := range r.questions {
		if q.TopicID == topicID {
			out = append(out, q)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) FindRandom(limit int) ([]model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Question
	for _, q := range r.questions {
		out = append(out, q)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) FindSimilar(questionID uint, count int, excludeIDs []uint) ([]model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.similarCalls++
	if r.similarErr != nil {
		return nil, r.similarErr
	}
	return r.similar, nil
}

func (r *fakeQuestionRepo) Update(question *model.Question) error {
	return r.Create(question)
}

func (r *fakeQuestionRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.questions, id)
	return nil
}

type fakeAnswerRepo struct {
	mu       sync.Mutex
	created  []model.StudentAnswer
	accuracy []repository.TopicAccuracy
	recent   []uint
}

func (r *fakeAnswerRepo) Create(answer *model.StudentAnswer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, *answer)
	return nil
}

func (r *fakeAnswerRepo) createdCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.created)
}

func (r *fakeAnswerRepo) AccuracyByTopic(userID uint) ([]repository.TopicAccuracy, error) {
	return r.accuracy, nil
}

func (r *fakeAnswerRepo) RecentQuestionIDs(userID uint, limit int) ([]uint, error) {
	return r.recent, nil
}

type fakeChatRepo struct {
	mu      sync.Mutex
	created []model.ChatMessage
	err     error
}

func (r *fakeChatRepo) Create(message *model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, *message)
	return nil
}

func (r *fakeChatRepo) FindRecentByUser(userID uint, limit int) ([]model.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ChatMessage(nil), r.created...), nil
}

type fakeTutor struct {
	mu          sync.Mutex
	explanation string
	explainErr  error
	hint        string
	hintErr     error
	reply       string
	replyErr    error
	replyFn     func(history []model.ChatMessage, content string) (string, error)
	histories   [][]model.ChatMessage
	explainN    int
}

func (t *fakeTutor) ExplainAnswer(ctx context.Context, q *model.Question, submitted, canonical evaluator.Submission, isCorrect bool) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.explainN++
	return t.explanation, t.explainErr
}

func (t *fakeTutor) NextHint(ctx context.Context, q *model.Question, hintIndex int) (string, error) {
	return t.hint, t.hintErr
}

func (t *fakeTutor) ChatReply(ctx context.Context, history []model.ChatMessage, content string) (string, error) {
	t.mu.Lock()
	t.histories = append(t.histories, history)
	fn := t.replyFn
	reply, err := t.reply, t.replyErr
	t.mu.Unlock()
	if fn != nil {
		return fn(history, content)
	}
	return reply, err
}

func (t *fakeTutor) GenerateQuestions(ctx context.Context, topic *model.Topic, qType, difficulty string, count int) ([]model.Question, error) {
	return nil, ErrTutorUnavailable
}

type fakeRecommender struct {
	questions []model.Question
	calls     int
}

func (r *fakeRecommender) RecommendedQuestions(userID uint, limit int) ([]model.Question, error) {
	r.calls++
	return r.questions, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *fakePublisher) Publish(eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *fakePublisher) Close() {}

func (p *fakePublisher) publishedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func mcqQuestion(id, topicID uint, text string) model.Question {
	return model.Question{
		ID:         id,
		TopicID:    topicID,
		Type:       model.TypeMCQ,
		Difficulty: model.DifficultyMedium,
		Text:       text,
		Options: []model.Option{
			{Key: "a", Text: "right answer", IsCorrect: true},
			{Key: "b", Text: "wrong answer", IsCorrect: false},
			{Key: "c", Text: "also wrong", IsCorrect: false},
		},
	}
}
