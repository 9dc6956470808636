package corpus

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Provider supplies the reference corpus at index-build time.
type Provider interface {
	Load(ctx context.Context) ([]Item, error)
}

// FileProvider loads the corpus from a JSON file produced by the offline
// corpus builder. The file holds a flat array of items.
type FileProvider struct {
	path   string
	logger zerolog.Logger
}

// NewFileProvider creates a FileProvider reading from path.
func NewFileProvider(path string, logger zerolog.Logger) *FileProvider {
	return &FileProvider{
		path:   path,
		logger: logger.With().Str("component", "corpus").Logger(),
	}
}

// Load reads and validates every corpus item. A single invalid item fails the
// whole load: the corpus is a build artifact and must be fixed upstream.
func (p *FileProvider) Load(ctx context.Context) ([]Item, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", p.path, err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode corpus %s: %w", p.path, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("corpus %s is empty", p.path)
	}

	for i, it := range items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("corpus item %d: %w", i, err)
		}
	}

	counts := make(map[Kind]int, 5)
	for _, it := range items {
		counts[it.Kind]++
	}
	p.logger.Info().
		Int("items", len(items)).
		Int("songs", counts[KindSong]).
		Int("genres", counts[KindGenre]).
		Int("moods", counts[KindMood]).
		Int("ambiances", counts[KindAmbiance]).
		Int("playlists", counts[KindPlaylist]).
		Msg("corpus loaded")

	return items, nil
}
