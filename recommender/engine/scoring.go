package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/revo-off/Vibeyf-ai/recommender/corpus"
)

// Mood match outcomes.
const (
	moodMatchExact   = 1.0 // item mood detected in the user text
	moodMatchRelated = 0.6 // item mood related to a detected mood
	moodMatchFloor   = 0.3 // nothing detected, base credit
	moodMatchNeutral = 0.5 // item carries no mood information
)

// audioMatchNeutral is returned when either side of the comparison has no
// features: no evidence either way.
const audioMatchNeutral = 0.5

// Closeness denominators for features that are not on the 0-1 scale.
const (
	loudnessSpanDB     = 30.0     // typical loudness window, dB
	tempoSpanBPM       = 40.0     // acceptable tempo difference, BPM
	durationSpanMillis = 120000.0 // acceptable duration difference, 2 minutes
)

// genreBoostByOpenness maps the declared openness-to-new-genres level (1-5)
// to the multiplicative boost applied to preferred-genre songs. Closed users
// get a strong boost toward their genres; open users barely any, leaving
// room for discovery.
var genreBoostByOpenness = map[int]float64{
	1: 0.80,
	2: 0.60,
	3: 0.40,
	4: 0.25,
	5: 0.15,
}

// defaultGenreBoost is used when the openness level is out of range.
const defaultGenreBoost = 0.40

// BoostForOpenness returns the genre boost fraction for an openness level.
func BoostForOpenness(level int) float64 {
	if boost, ok := genreBoostByOpenness[level]; ok {
		return boost
	}
	return defaultGenreBoost
}

// Weights holds the fixed linear-combination weights of the global score.
type Weights struct {
	SemanticSimilarity float64
	MoodMatch          float64
	PreferenceMatch    float64
	AudioMatch         float64
}

// DefaultWeights returns the standard weighting: semantic similarity
// dominates, mood and declared preferences contribute equally, raw audio
// closeness least.
func DefaultWeights() Weights {
	return Weights{
		SemanticSimilarity: 0.5,
		MoodMatch:          0.2,
		PreferenceMatch:    0.2,
		AudioMatch:         0.1,
	}
}

// Validate checks that the weights sum to 1.0.
func (w Weights) Validate() error {
	sum := w.SemanticSimilarity + w.MoodMatch + w.PreferenceMatch + w.AudioMatch
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("score weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// ScoreVector holds every sub-score computed for one item. All values lie in
// [0,1] except GenreBoost, which is the multiplicative fraction applied to
// Global (0 when no boost applied). Global is the weighted combination of
// the four sub-scores, clamped to at most 1.0 after boosting.
type ScoreVector struct {
	SemanticSimilarity float64 `json:"semanticSimilarity"`
	MoodMatch          float64 `json:"moodMatch"`
	PreferenceMatch    float64 `json:"preferenceMatch"`
	AudioMatch         float64 `json:"audioMatch"`
	GenreBoost         float64 `json:"genreBoost"`
	Global             float64 `json:"global"`
}

// Scored is a corpus item annotated with its full score vector.
type Scored struct {
	Item   corpus.Item `json:"item"`
	Scores ScoreVector `json:"scores"`
}

// AudioMatch computes the closeness between the user's preference vector and
// an item's audio features. Only features present on both sides count; each
// contributes a normalized closeness in [0,1] and the result is their mean.
// If either side is empty the score is a neutral 0.5.
func AudioMatch(prefs, features map[string]float64) float64 {
	if len(prefs) == 0 || len(features) == 0 {
		return audioMatchNeutral
	}

	var sum float64
	var count int
	for name, prefVal := range prefs {
		itemVal, ok := features[name]
		if !ok {
			continue
		}
		sum += featureCloseness(name, prefVal, itemVal)
		count++
	}
	if count == 0 {
		return audioMatchNeutral
	}
	return sum / float64(count)
}

// featureCloseness normalizes the absolute difference of one feature to a
// [0,1] closeness, using the feature's native scale.
func featureCloseness(name string, a, b float64) float64 {
	diff := math.Abs(a - b)
	switch name {
	case corpus.FeatureLoudness:
		return 1.0 - math.Min(diff/loudnessSpanDB, 1.0)
	case corpus.FeatureTempo:
		return 1.0 - math.Min(diff/tempoSpanBPM, 1.0)
	case corpus.FeatureDurationMS:
		return 1.0 - math.Min(diff/durationSpanMillis, 1.0)
	default:
		// 0-1 scale features
		return 1.0 - diff
	}
}

// PreferenceMatch scores the user's declared Likert preferences against an
// item's features. It is numerically the same computation as AudioMatch,
// kept as a separate named sub-score so the two signals stay independently
// weightable.
func PreferenceMatch(prefs, features map[string]float64) float64 {
	return AudioMatch(prefs, features)
}

// MoodMatch scores how well an item's mood fits the user. When detected is
// nil the user text is scanned for literal mood names first. An exact match
// scores 1.0, a related mood 0.6, anything else the 0.3 floor.
func MoodMatch(userText, itemMood string, detected []string) float64 {
	if detected == nil {
		detected = DetectMoods(userText)
	}
	for _, d := range detected {
		if d == itemMood {
			return moodMatchExact
		}
	}
	if isRelatedMood(itemMood, detected) {
		return moodMatchRelated
	}
	return moodMatchFloor
}

// ScoreInput carries the per-request user signals consumed by the scorer.
type ScoreInput struct {
	Preferences     map[string]float64 // declared numeric preferences, feature name -> value
	UserText        string             // raw or enriched free text
	DetectedMoods   []string           // optional pre-detected moods; nil means detect from UserText
	PreferredGenres []string           // lowercased preferred genre tags
	OpennessLevel   int                // 1-5 openness to new genres
}

// Scorer combines semantic similarity with mood, preference and audio
// signals into a global score per item.
type Scorer struct {
	weights Weights
	logger  zerolog.Logger
}

// NewScorer creates a Scorer. Invalid weights are rejected so a bad
// configuration fails at construction, not per request.
func NewScorer(weights Weights, logger zerolog.Logger) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{
		weights: weights,
		logger:  logger.With().Str("component", "scorer").Logger(),
	}, nil
}

// ScoreAll computes the full score vector for every ranked item and returns
// the list sorted by global score descending. Each item is scored
// independently - no cross-item normalization - so scores are stable under
// corpus subsetting.
func (s *Scorer) ScoreAll(ranked []Ranked, in ScoreInput) []Scored {
	detected := in.DetectedMoods
	if detected == nil {
		detected = DetectMoods(in.UserText)
	}

	scored := make([]Scored, len(ranked))
	for i, r := range ranked {
		scored[i] = s.scoreItem(r, in, detected)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Scores.Global > scored[j].Scores.Global
	})

	return scored
}

// scoreItem computes one item's score vector.
func (s *Scorer) scoreItem(r Ranked, in ScoreInput, detected []string) Scored {
	item := r.Item

	moodScore := moodMatchNeutral
	switch {
	case item.Kind == corpus.KindMood:
		moodScore = MoodMatch(in.UserText, item.ID, detected)
	case len(item.Payload.AssociatedMoods) > 0:
		// Composite items (ambiances, mood playlists) take their best
		// associated mood.
		moodScore = 0
		for _, mood := range item.Payload.AssociatedMoods {
			if ms := MoodMatch(in.UserText, mood, detected); ms > moodScore {
				moodScore = ms
			}
		}
	}

	audioScore := audioMatchNeutral
	if len(item.Payload.Features) > 0 {
		audioScore = AudioMatch(in.Preferences, item.Payload.Features)
	}
	prefScore := PreferenceMatch(in.Preferences, item.Payload.Features)

	global := s.weights.SemanticSimilarity*r.Similarity +
		s.weights.MoodMatch*moodScore +
		s.weights.PreferenceMatch*prefScore +
		s.weights.AudioMatch*audioScore

	boost := 0.0
	if item.Kind == corpus.KindSong && len(in.PreferredGenres) > 0 {
		if genreMatches(item.Payload.Genre, in.PreferredGenres) {
			boost = BoostForOpenness(in.OpennessLevel)
			global = math.Min(global*(1+boost), 1.0)
		}
	}

	return Scored{
		Item: item,
		Scores: ScoreVector{
			SemanticSimilarity: r.Similarity,
			MoodMatch:          moodScore,
			PreferenceMatch:    prefScore,
			AudioMatch:         audioScore,
			GenreBoost:         boost,
			Global:             global,
		},
	}
}

// genreMatches reports whether the case-folded genre tag appears in the
// user's preferred genre list.
func genreMatches(genre string, preferred []string) bool {
	if genre == "" {
		return false
	}
	folded := strings.ToLower(genre)
	for _, p := range preferred {
		if folded == p {
			return true
		}
	}
	return false
}
