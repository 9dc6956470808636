package engine

import (
	"strings"

	"github.com/revo-off/Vibeyf-ai/recommender/corpus"
)

// The mood vocabulary. Mood corpus items use these names as IDs, and mood
// detection scans user text for them literally.
const (
	MoodHappy       = "happy"
	MoodSad         = "sad"
	MoodEnergetic   = "energetic"
	MoodCalm        = "calm"
	MoodMelancholic = "melancholic"
	MoodMotivating  = "motivating"
	MoodRomantic    = "romantic"
	MoodFestive     = "festive"
	MoodRelaxing    = "relaxing"
	MoodIntense     = "intense"
)

// moodVocabulary lists every known mood in a fixed order so detection is
// deterministic.
var moodVocabulary = []string{
	MoodHappy,
	MoodSad,
	MoodEnergetic,
	MoodCalm,
	MoodMelancholic,
	MoodMotivating,
	MoodRomantic,
	MoodFestive,
	MoodRelaxing,
	MoodIntense,
}

// relatedMoods is the fixed adjacency table used for partial-credit mood
// matching: an item whose mood is related to a detected mood scores 0.6
// instead of the full 1.0.
var relatedMoods = map[string][]string{
	MoodHappy:       {MoodFestive, MoodMotivating},
	MoodSad:         {MoodMelancholic},
	MoodEnergetic:   {MoodMotivating, MoodIntense, MoodFestive},
	MoodCalm:        {MoodRelaxing},
	MoodMelancholic: {MoodSad, MoodRomantic},
	MoodMotivating:  {MoodEnergetic, MoodIntense},
	MoodRomantic:    {MoodCalm, MoodMelancholic},
	MoodFestive:     {MoodHappy, MoodEnergetic},
	MoodRelaxing:    {MoodCalm},
	MoodIntense:     {MoodEnergetic, MoodMotivating},
}

// FeatureRange is an inclusive [Min,Max] constraint on one audio feature.
type FeatureRange struct {
	Min float64
	Max float64
}

// MoodCriteria maps each mood to the audio-feature ranges that characterize
// it. Values follow the feature scales: 0.0-1.0 except tempo (BPM) and
// loudness (dB). The table is used by the offline corpus builder and kept
// here as the single authority on what each mood means numerically.
var MoodCriteria = map[string]map[string]FeatureRange{
	MoodHappy: {
		corpus.FeatureValence:      {Min: 0.6, Max: 1.0},
		corpus.FeatureEnergy:       {Min: 0.6, Max: 1.0},
		corpus.FeatureDanceability: {Min: 0.6, Max: 1.0},
	},
	MoodSad: {
		corpus.FeatureValence:      {Min: 0.0, Max: 0.4},
		corpus.FeatureEnergy:       {Min: 0.0, Max: 0.5},
		corpus.FeatureAcousticness: {Min: 0.4, Max: 1.0},
	},
	MoodEnergetic: {
		corpus.FeatureEnergy:       {Min: 0.7, Max: 1.0},
		corpus.FeatureTempo:        {Min: 120, Max: 200},
		corpus.FeatureDanceability: {Min: 0.6, Max: 1.0},
	},
	MoodCalm: {
		corpus.FeatureEnergy:       {Min: 0.0, Max: 0.4},
		corpus.FeatureTempo:        {Min: 60, Max: 100},
		corpus.FeatureAcousticness: {Min: 0.5, Max: 1.0},
	},
	MoodMelancholic: {
		corpus.FeatureValence:      {Min: 0.0, Max: 0.45},
		corpus.FeatureEnergy:       {Min: 0.2, Max: 0.6},
		corpus.FeatureAcousticness: {Min: 0.4, Max: 1.0},
	},
	MoodMotivating: {
		corpus.FeatureEnergy:  {Min: 0.7, Max: 1.0},
		corpus.FeatureValence: {Min: 0.6, Max: 1.0},
		corpus.FeatureTempo:   {Min: 110, Max: 180},
	},
	MoodRomantic: {
		corpus.FeatureValence:      {Min: 0.4, Max: 0.8},
		corpus.FeatureEnergy:       {Min: 0.2, Max: 0.6},
		corpus.FeatureAcousticness: {Min: 0.3, Max: 0.9},
	},
	MoodFestive: {
		corpus.FeatureValence:      {Min: 0.7, Max: 1.0},
		corpus.FeatureEnergy:       {Min: 0.7, Max: 1.0},
		corpus.FeatureDanceability: {Min: 0.7, Max: 1.0},
	},
	MoodRelaxing: {
		corpus.FeatureEnergy:       {Min: 0.0, Max: 0.35},
		corpus.FeatureValence:      {Min: 0.4, Max: 0.8},
		corpus.FeatureAcousticness: {Min: 0.6, Max: 1.0},
	},
	MoodIntense: {
		corpus.FeatureEnergy:   {Min: 0.8, Max: 1.0},
		corpus.FeatureLoudness: {Min: -10, Max: 0},
		corpus.FeatureTempo:    {Min: 130, Max: 200},
	},
}

// DetectMoods scans text for literal mood names, case-insensitively, and
// returns the detected moods in vocabulary order.
func DetectMoods(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)

	var detected []string
	for _, mood := range moodVocabulary {
		if strings.Contains(lower, mood) {
			detected = append(detected, mood)
		}
	}
	return detected
}

// isRelatedMood reports whether mood appears in the related-moods table of
// any detected mood.
func isRelatedMood(mood string, detected []string) bool {
	for _, d := range detected {
		for _, related := range relatedMoods[d] {
			if related == mood {
				return true
			}
		}
	}
	return false
}
