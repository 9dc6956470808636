// Package profile handles the hybrid questionnaire: validation of raw user
// answers, extraction of the numeric preference vector from Likert answers,
// and assembly of the free-text answers into one semantic query string.
package profile

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Raw is the caller-facing profile shape: Likert answers keyed by question
// ID, and open answers that are either a string or a list of strings.
type Raw struct {
	Likert map[string]int `json:"likert"`
	Open   map[string]any `json:"open"`
}

// Profile is a validated user profile. Only answers belonging to the fixed
// question vocabulary survive; list answers are normalized to []string.
type Profile struct {
	Likert map[string]int
	Text   map[string]string
	Lists  map[string][]string
}

// Parse validates a raw profile against the question vocabulary. Malformed
// Likert values (outside 1-5) are dropped individually - a single bad answer
// never rejects the whole profile. Unknown question IDs are ignored.
func Parse(raw Raw, logger zerolog.Logger) Profile {
	p := Profile{
		Likert: make(map[string]int, len(raw.Likert)),
		Text:   make(map[string]string),
		Lists:  make(map[string][]string),
	}

	for id, value := range raw.Likert {
		if _, known := dimensionByQuestion[id]; !known {
			continue
		}
		if value < 1 || value > 5 {
			logger.Debug().Str("question", id).Int("value", value).Msg("dropping out-of-range likert answer")
			continue
		}
		p.Likert[id] = value
	}

	for _, q := range openQuestions {
		value, ok := raw.Open[q.ID]
		if !ok {
			continue
		}
		if listQuestions[q.ID] {
			p.Lists[q.ID] = coerceList(value)
			continue
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
			p.Text[q.ID] = strings.TrimSpace(s)
		}
	}

	return p
}

// coerceList normalizes a list answer: either a real list or a
// comma-separated string. Empty entries are discarded.
func coerceList(value any) []string {
	var items []string
	switch v := value.(type) {
	case []string:
		items = v
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok {
				items = append(items, s)
			}
		}
	case string:
		items = strings.Split(v, ",")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Preferences derives the numeric preference vector from the Likert
// answers. Each 1-5 value is rescaled to its dimension's native range:
// 0.0-1.0 for the audio features, -30..0 dB for loudness, 60-180 BPM for
// tempo, 0.2-1.0 for openness. Unanswered dimensions are simply absent.
func (p Profile) Preferences() map[string]float64 {
	prefs := make(map[string]float64, len(p.Likert))
	for id, value := range p.Likert {
		v := float64(value)
		switch dimensionByQuestion[id] {
		case DimensionEnergy:
			prefs[DimensionEnergy] = (v - 1) / 4.0
		case DimensionCalmness:
			prefs[DimensionCalmness] = (v - 1) / 4.0
		case DimensionDanceability:
			prefs[DimensionDanceability] = (v - 1) / 4.0
		case DimensionValence:
			prefs[DimensionValence] = (v - 1) / 4.0
		case DimensionAcousticness:
			prefs[DimensionAcousticness] = (v - 1) / 4.0
		case DimensionLoudness:
			prefs[DimensionLoudness] = -30 + (v-1)*7.5
		case DimensionTempo:
			prefs[DimensionTempo] = 60 + (v-1)*30
		case DimensionOpenness:
			prefs[DimensionOpenness] = v / 5.0
		}
	}
	return prefs
}

// SemanticText combines the free-text answers into the query string fed to
// the embedding index: mood, context and emotions verbatim, artists and
// genres phrased as short sentences for context.
func (p Profile) SemanticText() string {
	var parts []string

	for _, id := range []string{QuestionMood, QuestionContext, QuestionEmotions} {
		if text, ok := p.Text[id]; ok {
			parts = append(parts, text)
		}
	}

	if artists := p.Lists[QuestionArtists]; len(artists) > 0 {
		parts = append(parts, "I like artists such as "+strings.Join(artists, ", "))
	}
	if genres := p.Lists[QuestionGenres]; len(genres) > 0 {
		parts = append(parts, "I mostly listen to "+strings.Join(genres, ", "))
	}

	return strings.Join(parts, " ")
}

// PreferredGenres returns the user's declared genres, lowercased for
// matching against song genre tags.
func (p Profile) PreferredGenres() []string {
	genres := p.Lists[QuestionGenres]
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		out = append(out, strings.ToLower(g))
	}
	return out
}

// OpennessLevel returns the declared openness to new genres, defaulting to
// the neutral 3 when unanswered.
func (p Profile) OpennessLevel() int {
	if v, ok := p.Likert[QuestionOpenness]; ok {
		return v
	}
	return 3
}

// Summary renders a compact one-line description for logging.
func (p Profile) Summary() string {
	return fmt.Sprintf("likert=%d text=%d lists=%d", len(p.Likert), len(p.Text), len(p.Lists))
}
