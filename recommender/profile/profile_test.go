package profile

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	raw := Raw{
		Likert: map[string]int{
			QuestionEnergy:   4,
			QuestionTempo:    0, // out of range, dropped
			QuestionOpenness: 9, // out of range, dropped
			"q99_unknown":    3, // unknown id, ignored
			QuestionCalm:     1,
		},
		Open: map[string]any{
			QuestionMood:    "  something melancholic  ",
			QuestionContext: "",
			QuestionArtists: []any{"Coldplay", "Adele"},
			QuestionGenres:  "rock, pop , ",
			"qo9_unknown":   "ignored",
		},
	}

	p := Parse(raw, zerolog.Nop())

	assert.Equal(t, map[string]int{QuestionEnergy: 4, QuestionCalm: 1}, p.Likert)
	assert.Equal(t, "something melancholic", p.Text[QuestionMood])
	_, hasContext := p.Text[QuestionContext]
	assert.False(t, hasContext, "blank answers are dropped")
	assert.Equal(t, []string{"Coldplay", "Adele"}, p.Lists[QuestionArtists])
	assert.Equal(t, []string{"rock", "pop"}, p.Lists[QuestionGenres])
}

func TestCoerceList(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{"string slice", []string{"a", " b "}, []string{"a", "b"}},
		{"any slice", []any{"a", 7, "b"}, []string{"a", "b"}},
		{"comma string", "a, b,,c", []string{"a", "b", "c"}},
		{"unsupported type", 42, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceList(tt.value))
		})
	}
}

func TestPreferences(t *testing.T) {
	p := Parse(Raw{
		Likert: map[string]int{
			QuestionEnergy:   5,
			QuestionCalm:     1,
			QuestionDance:    3,
			QuestionHappy:    2,
			QuestionAcoustic: 4,
			QuestionLoudness: 3,
			QuestionTempo:    5,
			QuestionOpenness: 4,
		},
	}, zerolog.Nop())

	prefs := p.Preferences()
	assert.InDelta(t, 1.0, prefs[DimensionEnergy], 1e-9)
	assert.InDelta(t, 0.0, prefs[DimensionCalmness], 1e-9)
	assert.InDelta(t, 0.5, prefs[DimensionDanceability], 1e-9)
	assert.InDelta(t, 0.25, prefs[DimensionValence], 1e-9)
	assert.InDelta(t, 0.75, prefs[DimensionAcousticness], 1e-9)
	assert.InDelta(t, -15.0, prefs[DimensionLoudness], 1e-9)
	assert.InDelta(t, 180.0, prefs[DimensionTempo], 1e-9)
	assert.InDelta(t, 0.8, prefs[DimensionOpenness], 1e-9)
}

func TestPreferencesLoudnessTempoEndpoints(t *testing.T) {
	low := Parse(Raw{Likert: map[string]int{QuestionLoudness: 1, QuestionTempo: 1}}, zerolog.Nop()).Preferences()
	assert.InDelta(t, -30.0, low[DimensionLoudness], 1e-9)
	assert.InDelta(t, 60.0, low[DimensionTempo], 1e-9)

	high := Parse(Raw{Likert: map[string]int{QuestionLoudness: 5, QuestionTempo: 5}}, zerolog.Nop()).Preferences()
	assert.InDelta(t, 0.0, high[DimensionLoudness], 1e-9)
	assert.InDelta(t, 180.0, high[DimensionTempo], 1e-9)
}

func TestPreferencesUnansweredAbsent(t *testing.T) {
	prefs := Parse(Raw{Likert: map[string]int{QuestionEnergy: 3}}, zerolog.Nop()).Preferences()
	require.Len(t, prefs, 1)
	_, ok := prefs[DimensionTempo]
	assert.False(t, ok)
}

func TestSemanticText(t *testing.T) {
	p := Parse(Raw{
		Open: map[string]any{
			QuestionMood:     "melancholic but hopeful",
			QuestionContext:  "late night coding",
			QuestionEmotions: "nostalgia",
			QuestionArtists:  "Radiohead, Sigur Ros",
			QuestionGenres:   "post-rock, ambient",
		},
	}, zerolog.Nop())

	text := p.SemanticText()
	assert.Equal(t,
		"melancholic but hopeful late night coding nostalgia "+
			"I like artists such as Radiohead, Sigur Ros "+
			"I mostly listen to post-rock, ambient",
		text)
}

func TestSemanticTextEmptyProfile(t *testing.T) {
	p := Parse(Raw{}, zerolog.Nop())
	assert.Empty(t, p.SemanticText())
}

func TestPreferredGenres(t *testing.T) {
	p := Parse(Raw{Open: map[string]any{QuestionGenres: "Rock, JAZZ"}}, zerolog.Nop())
	assert.Equal(t, []string{"rock", "jazz"}, p.PreferredGenres())
}

func TestOpennessLevel(t *testing.T) {
	answered := Parse(Raw{Likert: map[string]int{QuestionOpenness: 5}}, zerolog.Nop())
	assert.Equal(t, 5, answered.OpennessLevel())

	unanswered := Parse(Raw{}, zerolog.Nop())
	assert.Equal(t, 3, unanswered.OpennessLevel(), "neutral default")
}

func TestQuestionVocabulary(t *testing.T) {
	likert := LikertQuestions()
	require.Len(t, likert, 8)
	open := OpenQuestions()
	require.Len(t, open, 5)

	// Returned slices are copies.
	likert[0].Question = "mutated"
	assert.NotEqual(t, "mutated", LikertQuestions()[0].Question)

	for _, q := range likert {
		assert.NotEmpty(t, q.Dimension)
	}
	for _, q := range open {
		assert.Contains(t, []string{AnswerText, AnswerList}, q.Type)
	}
}
