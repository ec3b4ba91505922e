package evaluator

import (
	"testing"

	"github.com/lephan/quokka/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func mcqQuestion() *model.Question {
	return &model.Question{
		ID:   1,
		Type: model.TypeMCQ,
		Options: []model.Option{
			{Key: "a", Text: "Mitochondria", IsCorrect: false},
			{Key: "b", Text: "Ribosome", IsCorrect: true},
			{Key: "c", Text: "Nucleus", IsCorrect: false},
		},
	}
}

func fillInBlankQuestion(t *testing.T) *model.Question {
	t.Helper()
	first := model.Blank{Position: 0, Answer: "photosynthesis"}
	second := model.Blank{Position: 1, Answer: "chlorophyll"}
	require.NoError(t, second.SetAlternatives([]string{"chlorophyl"}))
	return &model.Question{
		ID:     2,
		Type:   model.TypeFillInBlank,
		Blanks: []model.Blank{first, second},
	}
}

func matchingQuestion() *model.Question {
	return &model.Question{
		ID:   3,
		Type: model.TypeMatching,
		Pairs: []model.MatchPair{
			{Left: "Paris", Right: "France"},
			{Left: "Lima", Right: "Peru"},
			{Left: "Hanoi", Right: "Vietnam"},
		},
	}
}

func TestEvaluateMCQ(t *testing.T) {
	q := mcqQuestion()

	tests := []struct {
		name    string
		key     string
		correct bool
	}{
		{"correct option", "b", true},
		{"wrong option", "a", false},
		{"another wrong option", "c", false},
		{"case sensitive keys", "B", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Evaluate(q, Submission{OptionKey: tc.key})
			require.NoError(t, err)
			assert.Equal(t, tc.correct, res.IsCorrect)
			assert.Equal(t, "b", res.Canonical.OptionKey)
		})
	}
}

func TestEvaluateMCQMalformed(t *testing.T) {
	noCorrect := &model.Question{
		Type:    model.TypeMCQ,
		Options: []model.Option{{Key: "a"}, {Key: "b"}},
	}
	_, err := Evaluate(noCorrect, Submission{OptionKey: "a"})
	assert.ErrorIs(t, err, ErrMalformedQuestion)

	twoCorrect := &model.Question{
		Type: model.TypeMCQ,
		Options: []model.Option{
			{Key: "a", IsCorrect: true},
			{Key: "b", IsCorrect: true},
		},
	}
	_, err = Evaluate(twoCorrect, Submission{OptionKey: "a"})
	assert.ErrorIs(t, err, ErrMalformedQuestion)
}

func TestEvaluateTrueFalse(t *testing.T) {
	q := &model.Question{Type: model.TypeTrueFalse, CorrectBool: boolPtr(true)}

	res, err := Evaluate(q, Submission{Bool: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	require.NotNil(t, res.Canonical.Bool)
	assert.True(t, *res.Canonical.Bool)

	res, err = Evaluate(q, Submission{Bool: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
}

func TestEvaluateTrueFalseRejectsOptionKeyShape(t *testing.T) {
	// Submitting "B" for a true/false question is a contract violation,
	// not an incorrect answer.
	q := &model.Question{Type: model.TypeTrueFalse, CorrectBool: boolPtr(true)}
	_, err := Evaluate(q, Submission{OptionKey: "B"})
	assert.ErrorIs(t, err, ErrAnswerShape)
}

func TestEvaluateMatching(t *testing.T) {
	q := matchingQuestion()

	complete := map[string]string{"Paris": "France", "Lima": "Peru", "Hanoi": "Vietnam"}
	res, err := Evaluate(q, Submission{Matches: complete})
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, complete, res.Canonical.Matches)

	oneWrong := map[string]string{"Paris": "France", "Lima": "Vietnam", "Hanoi": "Peru"}
	res, err = Evaluate(q, Submission{Matches: oneWrong})
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
}

func TestEvaluateMatchingIncompleteMappingNeverCorrect(t *testing.T) {
	q := matchingQuestion()
	incomplete := map[string]string{"Paris": "France", "Lima": "Peru"}
	res, err := Evaluate(q, Submission{Matches: incomplete})
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
}

func TestEvaluateFillInBlank(t *testing.T) {
	q := fillInBlankQuestion(t)

	tests := []struct {
		name    string
		blanks  []string
		correct bool
	}{
		{"exact answers", []string{"photosynthesis", "chlorophyll"}, true},
		{"case insensitive", []string{"Photosynthesis", "CHLOROPHYLL"}, true},
		{"accepted alternative", []string{"photosynthesis", "chlorophyl"}, true},
		{"surrounding whitespace trimmed", []string{" photosynthesis ", "chlorophyll"}, true},
		{"one wrong entry", []string{"photosynthesis", "xylem"}, false},
		{"too few entries", []string{"photosynthesis"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Evaluate(q, Submission{Blanks: tc.blanks})
			require.NoError(t, err)
			assert.Equal(t, tc.correct, res.IsCorrect)
			assert.Equal(t, []string{"photosynthesis", "chlorophyll"}, res.Canonical.Blanks)
		})
	}
}

func TestEvaluateUnknownTypeFailsLoudly(t *testing.T) {
	q := &model.Question{Type: "essay"}
	_, err := Evaluate(q, Submission{OptionKey: "a"})
	assert.ErrorIs(t, err, ErrUnsupportedQuestionType)
}

func TestEvaluateShapeMismatches(t *testing.T) {
	tests := []struct {
		name string
		q    *model.Question
		sub  Submission
	}{
		{"mcq without option key", mcqQuestion(), Submission{Bool: boolPtr(true)}},
		{"matching without mapping", matchingQuestion(), Submission{OptionKey: "a"}},
		{"fill in blank without entries", fillInBlankQuestion(t), Submission{OptionKey: "a"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Evaluate(tc.q, tc.sub)
			assert.ErrorIs(t, err, ErrAnswerShape)
		})
	}
}
