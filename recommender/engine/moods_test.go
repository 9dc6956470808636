package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMoods(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single mood",
			text: "something calm to read to",
			want: []string{MoodCalm},
		},
		{
			name: "multiple moods in vocabulary order",
			text: "I want ENERGETIC yet melancholic music",
			want: []string{MoodEnergetic, MoodMelancholic},
		},
		{
			name: "case insensitive",
			text: "Happy vibes please",
			want: []string{MoodHappy},
		},
		{
			name: "substring counts",
			text: "unhappy about everything",
			want: []string{MoodHappy},
		},
		{
			name: "no mood words",
			text: "guitar driven indie from the nineties",
			want: nil,
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMoods(tt.text))
		})
	}
}

func TestIsRelatedMood(t *testing.T) {
	assert.True(t, isRelatedMood(MoodFestive, []string{MoodHappy}))
	assert.True(t, isRelatedMood(MoodRelaxing, []string{MoodCalm}))
	assert.False(t, isRelatedMood(MoodIntense, []string{MoodCalm}))
	assert.False(t, isRelatedMood(MoodHappy, nil))
}

func TestMoodCriteriaCoversVocabulary(t *testing.T) {
	for _, mood := range moodVocabulary {
		ranges, ok := MoodCriteria[mood]
		assert.True(t, ok, "missing criteria for %s", mood)
		assert.NotEmpty(t, ranges, "empty criteria for %s", mood)
		for feature, r := range ranges {
			assert.LessOrEqual(t, r.Min, r.Max, "%s/%s", mood, feature)
		}
	}
}
