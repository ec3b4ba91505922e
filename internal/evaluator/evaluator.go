// Package evaluator decides correctness for a submitted answer. It is pure:
// no logging, no persistence, no remote calls. Explanatory prose and hints
// are someone else's job.
package evaluator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lephan/quokka/internal/model"
)

var (
	// ErrUnsupportedQuestionType is returned for a type tag outside the
	// known variants. Unknown tags fail loudly instead of defaulting to
	// incorrect.
	ErrUnsupportedQuestionType = errors.New("unsupported question type")

	// ErrAnswerShape is returned when the submission shape does not match
	// the question's type tag, e.g. an option key submitted against a
	// true/false question.
	ErrAnswerShape = errors.New("answer shape does not match question type")

	// ErrMalformedQuestion is returned when the question's variant data
	// violates its own invariants, e.g. an MCQ without exactly one correct
	// option.
	ErrMalformedQuestion = errors.New("question variant data is malformed")
)

// Submission is the learner's answer in the shape the question type demands.
// Exactly one field group is consulted, selected by the question's type tag.
type Submission struct {
	OptionKey string            `json:"option_key,omitempty"` // mcq
	Bool      *bool             `json:"bool,omitempty"`       // true_false
	Matches   map[string]string `json:"matches,omitempty"`    // matching: left -> right
	Blanks    []string          `json:"blanks,omitempty"`     // fill_in_blank, positional
}

// Result carries the verdict and the canonical correct answer in the same
// shape as the submission. The canonical answer feeds feedback prompts and
// is never derived from the learner's input.
type Result struct {
	IsCorrect bool
	Canonical Submission
}

// Evaluate checks sub against q. It returns an error, never a silent false,
// when the type tag is unknown, the submission shape is wrong, or the
// question's own variant data is inconsistent.
func Evaluate(q *model.Question, sub Submission) (Result, error) {
	switch q.Type {
	case model.TypeMCQ:
		return evaluateMCQ(q, sub)
	case model.TypeTrueFalse:
		return evaluateTrueFalse(q, sub)
	case model.TypeMatching:
		return evaluateMatching(q, sub)
	case model.TypeFillInBlank:
		return evaluateFillInBlank(q, sub)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedQuestionType, q.Type)
	}
}

func evaluateMCQ(q *model.Question, sub Submission) (Result, error) {
	if sub.OptionKey == "" {
		return Result{}, fmt.Errorf("%w: mcq requires an option key", ErrAnswerShape)
	}

	correctKey := ""
	for _, opt := range q.Options {
		if !opt.IsCorrect {
			continue
		}
		if correctKey != "" {
			return Result{}, fmt.Errorf("%w: multiple options marked correct", ErrMalformedQuestion)
		}
		correctKey = opt.Key
	}
	if correctKey == "" {
		return Result{}, fmt.Errorf("%w: no option marked correct", ErrMalformedQuestion)
	}

	// Option keys are opaque tokens; comparison is exact and case-sensitive.
	return Result{
		IsCorrect: sub.OptionKey == correctKey,
		Canonical: Submission{OptionKey: correctKey},
	}, nil
}

func evaluateTrueFalse(q *model.Question, sub Submission) (Result, error) {
	if sub.Bool == nil {
		return Result{}, fmt.Errorf("%w: true_false requires a boolean answer", ErrAnswerShape)
	}
	if q.CorrectBool == nil {
		return Result{}, fmt.Errorf("%w: true_false question has no correct answer", ErrMalformedQuestion)
	}

	correct := *q.CorrectBool
	return Result{
		IsCorrect: *sub.Bool == correct,
		Canonical: Submission{Bool: &correct},
	}, nil
}

func evaluateMatching(q *model.Question, sub Submission) (Result, error) {
	if sub.Matches == nil {
		return Result{}, fmt.Errorf("%w: matching requires a left-to-right mapping", ErrAnswerShape)
	}
	if len(q.Pairs) == 0 {
		return Result{}, fmt.Errorf("%w: matching question has no pairs", ErrMalformedQuestion)
	}

	canonical := make(map[string]string, len(q.Pairs))
	correct := true
	for _, pair := range q.Pairs {
		canonical[pair.Left] = pair.Right
		mapped, ok := sub.Matches[pair.Left]
		// A missing mapping for any left key is incorrect; no partial credit.
		if !ok || mapped != pair.Right {
			correct = false
		}
	}

	return Result{
		IsCorrect: correct,
		Canonical: Submission{Matches: canonical},
	}, nil
}

func evaluateFillInBlank(q *model.Question, sub Submission) (Result, error) {
	if sub.Blanks == nil {
		return Result{}, fmt.Errorf("%w: fill_in_blank requires an ordered list of entries", ErrAnswerShape)
	}
	if len(q.Blanks) == 0 {
		return Result{}, fmt.Errorf("%w: fill_in_blank question has no blanks", ErrMalformedQuestion)
	}

	canonical := make([]string, len(q.Blanks))
	correct := len(sub.Blanks) == len(q.Blanks)
	for i, blank := range q.Blanks {
		canonical[i] = blank.Answer
		if i >= len(sub.Blanks) {
			continue
		}
		if !blankAccepts(&blank, sub.Blanks[i]) {
			correct = false
		}
	}

	return Result{
		IsCorrect: correct,
		Canonical: Submission{Blanks: canonical},
	}, nil
}

func blankAccepts(blank *model.Blank, entry string) bool {
	candidate := strings.TrimSpace(entry)
	if strings.EqualFold(candidate, blank.Answer) {
		return true
	}
	for _, alt := range blank.AlternativeList() {
		if strings.EqualFold(candidate, alt) {
			return true
		}
	}
	return false
}
