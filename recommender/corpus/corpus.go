// Package corpus defines the reference corpus of musical entities that the
// recommender scores against: songs, genres, moods, ambiances and playlists.
// The corpus is built offline and consumed read-only for the process lifetime.
package corpus

import (
	"fmt"
	"strings"
)

// Kind identifies the category of a corpus item.
type Kind string

// Supported item kinds.
const (
	KindSong     Kind = "song"
	KindGenre    Kind = "genre"
	KindMood     Kind = "mood"
	KindAmbiance Kind = "ambiance"
	KindPlaylist Kind = "playlist"
)

// Kinds lists every supported kind in ranking output order.
func Kinds() []Kind {
	return []Kind{KindSong, KindGenre, KindMood, KindAmbiance, KindPlaylist}
}

// Audio feature names. Values are on a 0.0-1.0 scale except tempo
// (beats per minute), loudness (decibels) and duration_ms (milliseconds).
const (
	FeatureEnergy           = "energy"
	FeatureDanceability     = "danceability"
	FeatureValence          = "valence"
	FeatureAcousticness     = "acousticness"
	FeatureTempo            = "tempo"
	FeatureLoudness         = "loudness"
	FeatureSpeechiness      = "speechiness"
	FeatureInstrumentalness = "instrumentalness"
	FeatureLiveness         = "liveness"
	FeatureDurationMS       = "duration_ms"
)

// featureVocabulary is the closed set of payload audio-feature keys.
var featureVocabulary = map[string]struct{}{
	FeatureEnergy:           {},
	FeatureDanceability:     {},
	FeatureValence:          {},
	FeatureAcousticness:     {},
	FeatureTempo:            {},
	FeatureLoudness:         {},
	FeatureSpeechiness:      {},
	FeatureInstrumentalness: {},
	FeatureLiveness:         {},
	FeatureDurationMS:       {},
}

// IsFeature reports whether name belongs to the audio-feature vocabulary.
func IsFeature(name string) bool {
	_, ok := featureVocabulary[name]
	return ok
}

// Payload holds the kind-specific attributes of an item.
type Payload struct {
	Name            string             `json:"name,omitempty"`
	Artist          string             `json:"artist,omitempty"`
	Genre           string             `json:"genre,omitempty"`
	Popularity      float64            `json:"popularity,omitempty"`
	Description     string             `json:"description,omitempty"`
	TrackCount      int                `json:"trackCount,omitempty"`
	AssociatedMoods []string           `json:"associatedMoods,omitempty"`
	Features        map[string]float64 `json:"features,omitempty"`
}

// Item is one entry of the reference corpus. Items are immutable once the
// corpus is loaded; the embedding index keeps its item and vector slices
// index-aligned and never reorders them independently.
type Item struct {
	Kind         Kind    `json:"kind"`
	ID           string  `json:"id"`
	SemanticText string  `json:"semanticText"`
	Payload      Payload `json:"payload"`
}

// Validate checks the item invariants: a non-empty semantic text and payload
// feature keys restricted to the fixed vocabulary. Unknown feature keys are
// rejected at load time so that typos cannot pass as "key absent" later.
func (it Item) Validate() error {
	if it.Kind == "" {
		return fmt.Errorf("item %q: empty kind", it.ID)
	}
	if strings.TrimSpace(it.SemanticText) == "" {
		return fmt.Errorf("item %s/%s: empty semantic text", it.Kind, it.ID)
	}
	for name := range it.Payload.Features {
		if !IsFeature(name) {
			return fmt.Errorf("item %s/%s: unknown audio feature %q", it.Kind, it.ID, name)
		}
	}
	return nil
}

// DedupKey returns the deduplication key for the item. Songs collapse on
// lowercased name+artist so the same track surfaced through different corpus
// entries counts once; every other kind is unique per kind+id.
func (it Item) DedupKey() string {
	if it.Kind == KindSong {
		return strings.ToLower(it.Payload.Name) + "_" + strings.ToLower(it.Payload.Artist)
	}
	return string(it.Kind) + "_" + it.ID
}
