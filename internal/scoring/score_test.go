package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newme-engine/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func mcQuestion(id, category string, options ...models.Option) models.Question {
	return models.Question{
		ID:         id,
		Text:       "question " + id,
		Type:       models.QuestionMultipleChoice,
		Category:   category,
		Options:    options,
		IsRequired: true,
	}
}

func fixedOption(text string, score float64) models.Option {
	return models.Option{Text: text, Score: models.FixedScore(score)}
}

func elementOption(text string, elements map[string]float64) models.Option {
	return models.Option{Text: text, Score: models.ElementScores(elements)}
}

// ==========================
// Option Score Resolution
// ==========================

func TestOptionScore_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
	}{
		{
			name:     "fixed score wins over scores map",
			raw:      `{"text":"A","score":5,"scores":{"A":1,"B":1}}`,
			expected: 5,
		},
		{
			name:     "scores map summed when no fixed score",
			raw:      `{"text":"A","scores":{"A":2,"B":3}}`,
			expected: 5,
		},
		{
			name:     "neither encoding scores zero",
			raw:      `{"text":"A"}`,
			expected: 0,
		},
		{
			name:     "fixed score zero is authoritative",
			raw:      `{"text":"A","score":0,"scores":{"fire":9}}`,
			expected: 0,
		},
		{
			name:     "non-numeric score falls back to scores map",
			raw:      `{"text":"A","score":"high","scores":{"fire":4}}`,
			expected: 4,
		},
		{
			name:     "non-numeric element values are skipped",
			raw:      `{"text":"A","scores":{"fire":4,"water":"deep"}}`,
			expected: 4,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var opt models.Option
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &opt))
			assert.Equal(t, tc.expected, opt.Score.Value())
		})
	}
}

func TestOption_JSONRoundTrip(t *testing.T) {
	// Sessions carry questions through the store as JSON; both encodings
	// must survive the trip.
	options := []models.Option{
		fixedOption("A", 10),
		elementOption("B", map[string]float64{"fire": 4, "water": 2}),
	}

	data, err := json.Marshal(options)
	require.NoError(t, err)

	var decoded []models.Option
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, float64(10), decoded[0].Score.Value())
	assert.Equal(t, float64(6), decoded[1].Score.Value())
	assert.Equal(t, map[string]float64{"fire": 4, "water": 2}, decoded[1].Score.Elements())
}

// ==========================
// Answer Reducer
// ==========================

func TestScore(t *testing.T) {
	q := mcQuestion("q1", "personality",
		fixedOption("Setuju", 10),
		fixedOption("Netral", 5),
		fixedOption("Tidak Setuju", 0),
	)

	tests := []struct {
		name     string
		answer   string
		expected float64
	}{
		{name: "matching option", answer: "Setuju", expected: 10},
		{name: "middle option", answer: "Netral", expected: 5},
		{name: "zero-score option", answer: "Tidak Setuju", expected: 0},
		{name: "unmatched answer contributes zero", answer: "setuju", expected: 0},
		{name: "empty answer contributes zero", answer: "", expected: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Score(q, tc.answer))
		})
	}
}

func TestScore_NoOptions(t *testing.T) {
	// yes_no, rating and text questions carry no scoring structure; the
	// reducer must not blow up on them.
	for _, qt := range []models.QuestionType{models.QuestionYesNo, models.QuestionRating, models.QuestionText} {
		q := models.Question{ID: "q", Type: qt, Category: "misc"}
		assert.Equal(t, float64(0), Score(q, "Ya"))
		assert.Equal(t, float64(0), QuestionMax(q))
	}
}

func TestScore_Boundedness(t *testing.T) {
	q := mcQuestion("q1", "talent",
		fixedOption("A", 3),
		elementOption("B", map[string]float64{"fire": 2, "water": 2}),
		fixedOption("C", 1),
	)
	max := QuestionMax(q)
	require.Equal(t, float64(4), max)

	for _, answer := range []string{"A", "B", "C", "D", ""} {
		s := Score(q, answer)
		assert.GreaterOrEqual(t, s, float64(0))
		assert.LessOrEqual(t, s, max)
	}
}

// ==========================
// Dominance Selector
// ==========================

func TestDominantElement(t *testing.T) {
	elements := map[string]models.ElementScore{
		"API":  {Percentage: 40, Label: "SI PERASA"},
		"AIR":  {Percentage: 80, Label: "SI ADAPTIF"},
		"KAYU": {Percentage: 80, Label: "SI KREATIF"},
	}

	t.Run("designated element is highlighted", func(t *testing.T) {
		name, score, ok := DominantElement(elements, "AIR")
		require.True(t, ok)
		assert.Equal(t, "AIR", name)
		assert.Equal(t, "SI ADAPTIF", score.Label)
	})

	t.Run("upstream designation is honored even when tied", func(t *testing.T) {
		// AIR and KAYU tie at 80; upstream said KAYU, so KAYU it is.
		name, _, ok := DominantElement(elements, "KAYU")
		require.True(t, ok)
		assert.Equal(t, "KAYU", name)
	})

	t.Run("missing designation reports no dominant element", func(t *testing.T) {
		_, _, ok := DominantElement(elements, "")
		assert.False(t, ok)
	})

	t.Run("designation absent from map reports no dominant element", func(t *testing.T) {
		_, _, ok := DominantElement(elements, "TANAH")
		assert.False(t, ok)
	})
}
