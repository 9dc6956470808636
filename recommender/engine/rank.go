package engine

import (
	"fmt"
	"sort"

	"github.com/revo-off/Vibeyf-ai/recommender/corpus"
)

// Default sizes for the recommendation bundle.
const (
	DefaultTopN      = 10
	topPerKind       = 3
	defaultWeakSpots = 5
)

// Statistics aggregates the global scores of the full (non-deduplicated)
// scored set.
type Statistics struct {
	MeanScore  float64 `json:"meanScore"`
	MaxScore   float64 `json:"maxScore"`
	MinScore   float64 `json:"minScore"`
	ItemsCount int     `json:"itemsCount"`
}

// Bundle is the final recommendation artifact: the only structure consumed
// by downstream report generation.
type Bundle struct {
	TopRecommendations []Scored                 `json:"topRecommendations"`
	TopByKind          map[corpus.Kind][]Scored `json:"topByKind"`
	WeakSpots          []Scored                 `json:"weakSpots"`
	Statistics         Statistics               `json:"statistics"`
}

// Deduplicate removes duplicate items from a list already sorted by global
// score descending. The first occurrence of each key wins, so the
// highest-scoring duplicate survives. Songs collapse on name+artist, other
// kinds on kind+id.
func Deduplicate(scored []Scored) []Scored {
	seen := make(map[string]struct{}, len(scored))
	unique := make([]Scored, 0, len(scored))
	for _, s := range scored {
		key := s.Item.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, s)
	}
	return unique
}

// TopN returns the first n deduplicated items.
func TopN(scored []Scored, n int) []Scored {
	unique := Deduplicate(scored)
	if n > len(unique) {
		n = len(unique)
	}
	return unique[:n]
}

// TopByKind groups deduplicated items by kind, keeping the best three of
// each and preserving the global ranking within every kind. Kinds with no
// items are simply absent.
func TopByKind(deduplicated []Scored) map[corpus.Kind][]Scored {
	result := make(map[corpus.Kind][]Scored)
	for _, s := range deduplicated {
		if len(result[s.Item.Kind]) >= topPerKind {
			continue
		}
		result[s.Item.Kind] = append(result[s.Item.Kind], s)
	}
	return result
}

// WeakSpots returns the n lowest-scoring items from the non-deduplicated
// set, ascending. These are exploration candidates, deliberately computed
// on a different path than the deduplicated top recommendations.
func WeakSpots(scored []Scored, n int) []Scored {
	if n <= 0 {
		n = defaultWeakSpots
	}
	ascending := make([]Scored, len(scored))
	copy(ascending, scored)
	sort.SliceStable(ascending, func(i, j int) bool {
		return ascending[i].Scores.Global < ascending[j].Scores.Global
	})
	if n > len(ascending) {
		n = len(ascending)
	}
	return ascending[:n]
}

// Stats computes mean/max/min of the global score over the full scored set.
// The corpus must be non-empty before scoring; an empty set here is a
// programming error and panics.
func Stats(scored []Scored) Statistics {
	if len(scored) == 0 {
		panic("engine: statistics over empty scored set")
	}

	stats := Statistics{
		MaxScore:   scored[0].Scores.Global,
		MinScore:   scored[0].Scores.Global,
		ItemsCount: len(scored),
	}
	var sum float64
	for _, s := range scored {
		g := s.Scores.Global
		sum += g
		if g > stats.MaxScore {
			stats.MaxScore = g
		}
		if g < stats.MinScore {
			stats.MinScore = g
		}
	}
	stats.MeanScore = sum / float64(len(scored))
	return stats
}

// BuildBundle assembles the final recommendation bundle from the scored
// corpus (sorted by global score descending).
func BuildBundle(scored []Scored, topN int) Bundle {
	if topN <= 0 {
		topN = DefaultTopN
	}
	unique := Deduplicate(scored)
	if topN > len(unique) {
		topN = len(unique)
	}
	return Bundle{
		TopRecommendations: unique[:topN],
		TopByKind:          TopByKind(unique),
		WeakSpots:          WeakSpots(scored, defaultWeakSpots),
		Statistics:         Stats(scored),
	}
}

// FormatItem renders one recommendation as a single human-readable line.
func FormatItem(s Scored) string {
	item := s.Item
	p := item.Payload
	switch item.Kind {
	case corpus.KindSong:
		return fmt.Sprintf("Song: %s by %s (%s)", p.Name, p.Artist, p.Genre)
	case corpus.KindGenre:
		return fmt.Sprintf("Genre: %s - %s", orID(p.Name, item.ID), p.Description)
	case corpus.KindMood:
		return fmt.Sprintf("Mood: %s - %s", orID(p.Name, item.ID), p.Description)
	case corpus.KindAmbiance:
		return fmt.Sprintf("Ambiance: %s - %s", orID(p.Name, item.ID), p.Description)
	case corpus.KindPlaylist:
		return fmt.Sprintf("Playlist: %s (%d tracks) - %s", orID(p.Name, item.ID), p.TrackCount, p.Description)
	default:
		return fmt.Sprintf("%s: %s", item.Kind, item.ID)
	}
}

func orID(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
