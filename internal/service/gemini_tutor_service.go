package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/lephan/quokka/config"
	"github.com/lephan/quokka/internal/evaluator"
	"github.com/lephan/quokka/internal/model"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// ErrTutorUnavailable is returned when the Gemini client is not configured.
// Callers degrade to their local fallbacks.
var ErrTutorUnavailable = errors.New("AI tutor is unavailable")

// tutorCallTimeout bounds every remote call; the upstream API defines no
// timeout of its own.
const tutorCallTimeout = 30 * time.Second

// TutorService is the single gateway to the AI collaborator: explanations,
// incremental hints, chat replies, and question drafting.
type TutorService interface {
	ExplainAnswer(ctx context.Context, q *model.Question, submitted, canonical evaluator.Submission, isCorrect bool) (string, error)
	NextHint(ctx context.Context, q *model.Question, hintIndex int) (string, error)
	ChatReply(ctx context.Context, history []model.ChatMessage, content string) (string, error)
	GenerateQuestions(ctx context.Context, topic *model.Topic, qType, difficulty string, count int) ([]model.Question, error)
}

type geminiTutorService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

func NewGeminiTutorService(cfg *config.Config) (TutorService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. TutorService will serve fallbacks only.")
		return &geminiTutorService{cfg: cfg, client: nil}, nil
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel("gemini-1.5-flash")
	return &geminiTutorService{client: model, cfg: cfg}, nil
}

func (s *geminiTutorService) ExplainAnswer(ctx context.Context, q *model.Question, submitted, canonical evaluator.Submission, isCorrect bool) (string, error) {
	var b strings.Builder
	b.WriteString("You are a patient tutor on an educational practice platform.\n")
	b.WriteString("A student just answered a practice question. Explain the result in 2-4 sentences, in plain encouraging language.\n")
	if isCorrect {
		b.WriteString("The answer was CORRECT. Reinforce why it is right.\n\n")
	} else {
		b.WriteString("The answer was INCORRECT. Explain the mistake and what the correct answer is, without being discouraging.\n\n")
	}
	b.WriteString("Question:\n")
	b.WriteString(q.Text)
	b.WriteString("\n\nStudent's answer: ")
	b.WriteString(describeSubmission(q, submitted))
	b.WriteString("\nCorrect answer: ")
	b.WriteString(describeSubmission(q, canonical))
	if q.Explanation != "" {
		b.WriteString("\nAuthor's note on this question: ")
		b.WriteString(q.Explanation)
	}
	b.WriteString("\n\nRespond with the explanation text only.")

	return s.generate(ctx, genai.Text(b.String()))
}

func (s *geminiTutorService) NextHint(ctx context.Context, q *model.Question, hintIndex int) (string, error) {
	var b strings.Builder
	b.WriteString("You are a tutor giving progressive hints for a practice question. Never reveal the full answer outright.\n")
	fmt.Fprintf(&b, "The student has already received %d hint(s). Give hint number %d, more specific than the previous ones.\n\n", hintIndex, hintIndex+1)
	b.WriteString("Question:\n")
	b.WriteString(q.Text)
	b.WriteString("\n\nRespond with the hint text only, one or two sentences.")

	return s.generate(ctx, genai.Text(b.String()))
}

func (s *geminiTutorService) ChatReply(ctx context.Context, history []model.ChatMessage, content string) (string, error) {
	var b strings.Builder
	b.WriteString("You are a study assistant chatting with a student on an educational practice platform.\n")
	b.WriteString("Answer the student's latest message helpfully and concisely.\n\n")
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, msg := range history {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
		b.WriteString("\n")
	}
	b.WriteString("student: ")
	b.WriteString(content)
	b.WriteString("\n\nRespond with the assistant's reply only.")

	return s.generate(ctx, genai.Text(b.String()))
}

// generatedQuestion is the JSON contract the generation prompt demands.
type generatedQuestion struct {
	Text        string `json:"text"`
	Explanation string `json:"explanation"`
	CorrectBool *bool  `json:"correct_bool,omitempty"`
	Options     []struct {
		Key       string `json:"key"`
		Text      string `json:"text"`
		IsCorrect bool   `json:"is_correct"`
	} `json:"options,omitempty"`
	Pairs []struct {
		Left  string `json:"left"`
		Right string `json:"right"`
	} `json:"pairs,omitempty"`
	Blanks []struct {
		Answer       string   `json:"answer"`
		Alternatives []string `json:"alternatives,omitempty"`
	} `json:"blanks,omitempty"`
}

func (s *geminiTutorService) GenerateQuestions(ctx context.Context, topic *model.Topic, qType, difficulty string, count int) ([]model.Question, error) {
	prompt := buildGenerationPrompt(topic, qType, difficulty, count)

	raw, err := s.generate(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}

	var drafts []generatedQuestion
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &drafts); err != nil {
		log.Warn().Err(err).Str("raw", raw).Msg("GenerateQuestions: AI returned non-JSON content")
		return nil, fmt.Errorf("failed to parse generated questions: %w", err)
	}

	questions := make([]model.Question, 0, len(drafts))
	for i, draft := range drafts {
		q, err := draftToQuestion(topic.ID, qType, difficulty, draft)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("GenerateQuestions: dropping invalid draft")
			continue
		}
		questions = append(questions, *q)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("AI produced no usable %s questions", qType)
	}
	return questions, nil
}

func buildGenerationPrompt(topic *model.Topic, qType, difficulty string, count int) string {
	var b strings.Builder
	b.WriteString("You are a question author for an educational practice platform.\n")
	fmt.Fprintf(&b, "Write %d %s-difficulty questions of type %q about the topic %q.\n", count, difficulty, qType, topic.Name)
	if topic.Description != "" {
		fmt.Fprintf(&b, "Topic description: %s\n", topic.Description)
	}
	b.WriteString("\nRespond with ONLY a valid JSON array (no markdown, no code fences, no commentary). Each element:\n")
	switch qType {
	case model.TypeMCQ:
		b.WriteString(`{"text": "...", "explanation": "...", "options": [{"key": "a", "text": "...", "is_correct": true}, {"key": "b", "text": "...", "is_correct": false}]}` + "\n")
		b.WriteString("Rules: 3-4 options per question, keys are lowercase letters, exactly one option has is_correct true.\n")
	case model.TypeTrueFalse:
		b.WriteString(`{"text": "...", "explanation": "...", "correct_bool": true}` + "\n")
	case model.TypeMatching:
		b.WriteString(`{"text": "...", "explanation": "...", "pairs": [{"left": "...", "right": "..."}]}` + "\n")
		b.WriteString("Rules: 3-5 pairs per question, every left and right value unique within a question.\n")
	case model.TypeFillInBlank:
		b.WriteString(`{"text": "... ___ ...", "explanation": "...", "blanks": [{"answer": "...", "alternatives": ["..."]}]}` + "\n")
		b.WriteString("Rules: mark each blank in the text with ___, list blanks in the order they appear.\n")
	}
	b.WriteString("Make the questions factually accurate and unambiguous.")
	return b.String()
}

func draftToQuestion(topicID uint, qType, difficulty string, draft generatedQuestion) (*model.Question, error) {
	if strings.TrimSpace(draft.Text) == "" {
		return nil, fmt.Errorf("draft has empty text")
	}
	q := &model.Question{
		TopicID:     topicID,
		Type:        qType,
		Difficulty:  difficulty,
		Text:        draft.Text,
		Explanation: draft.Explanation,
		AIGenerated: true,
	}

	switch qType {
	case model.TypeMCQ:
		if len(draft.Options) < 2 {
			return nil, fmt.Errorf("mcq draft needs at least two options")
		}
		correct := 0
		for _, opt := range draft.Options {
			if opt.IsCorrect {
				correct++
			}
			q.Options = append(q.Options, model.Option{Key: opt.Key, Text: opt.Text, IsCorrect: opt.IsCorrect})
		}
		if correct != 1 {
			return nil, fmt.Errorf("mcq draft has %d correct options, want exactly 1", correct)
		}
	case model.TypeTrueFalse:
		if draft.CorrectBool == nil {
			return nil, fmt.Errorf("true_false draft is missing correct_bool")
		}
		q.CorrectBool = draft.CorrectBool
	case model.TypeMatching:
		if len(draft.Pairs) < 2 {
			return nil, fmt.Errorf("matching draft needs at least two pairs")
		}
		for _, pair := range draft.Pairs {
			q.Pairs = append(q.Pairs, model.MatchPair{Left: pair.Left, Right: pair.Right})
		}
	case model.TypeFillInBlank:
		if len(draft.Blanks) == 0 {
			return nil, fmt.Errorf("fill_in_blank draft has no blanks")
		}
		for i, blank := range draft.Blanks {
			b := model.Blank{Position: i, Answer: blank.Answer}
			if err := b.SetAlternatives(blank.Alternatives); err != nil {
				return nil, fmt.Errorf("failed to encode alternatives: %w", err)
			}
			q.Blanks = append(q.Blanks, b)
		}
	default:
		return nil, fmt.Errorf("cannot generate questions of type %q", qType)
	}
	return q, nil
}

// generate runs one bounded Gemini call and concatenates the text parts of
// the first candidate.
func (s *geminiTutorService) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	if s.client == nil {
		return "", ErrTutorUnavailable
	}

	callCtx, cancel := context.WithTimeout(ctx, tutorCallTimeout)
	defer cancel()

	resp, err := s.client.GenerateContent(callCtx, parts...)
	if err != nil {
		log.Error().Err(err).Msg("Gemini API call failed")
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn().Msg("Gemini returned no candidates or parts in response")
		return "", fmt.Errorf("gemini returned no content")
	}

	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text += string(txt)
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return strings.TrimSpace(text), nil
}

// describeSubmission renders an answer in prose for prompts.
func describeSubmission(q *model.Question, sub evaluator.Submission) string {
	switch q.Type {
	case model.TypeMCQ:
		for _, opt := range q.Options {
			if opt.Key == sub.OptionKey {
				return fmt.Sprintf("option %q (%s)", opt.Key, opt.Text)
			}
		}
		return fmt.Sprintf("option %q", sub.OptionKey)
	case model.TypeTrueFalse:
		if sub.Bool == nil {
			return "no answer"
		}
		return fmt.Sprintf("%t", *sub.Bool)
	case model.TypeMatching:
		lefts := make([]string, 0, len(sub.Matches))
		for left := range sub.Matches {
			lefts = append(lefts, left)
		}
		sort.Strings(lefts)
		parts := make([]string, 0, len(lefts))
		for _, left := range lefts {
			parts = append(parts, fmt.Sprintf("%s -> %s", left, sub.Matches[left]))
		}
		return strings.Join(parts, "; ")
	case model.TypeFillInBlank:
		return strings.Join(sub.Blanks, ", ")
	default:
		return "unknown"
	}
}

func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}
