// Package recommender wires the recommendation pipeline together: corpus
// loading, the embedding index with its snapshot cache, semantic ranking,
// multi-factor scoring, and the optional generative enrichment, report and
// archival steps.
package recommender

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/revo-off/Vibeyf-ai/recommender/archive"
	"github.com/revo-off/Vibeyf-ai/recommender/corpus"
	"github.com/revo-off/Vibeyf-ai/recommender/engine"
	"github.com/revo-off/Vibeyf-ai/recommender/genai"
	"github.com/revo-off/Vibeyf-ai/recommender/index"
	"github.com/revo-off/Vibeyf-ai/recommender/profile"
)

// ErrEmptyProfile is returned when a profile carries no usable free-text
// answers: without any text there is nothing to rank against.
var ErrEmptyProfile = errors.New("profile has no free-text answers to rank against")

// Generator is the optional generative-model collaborator. Both methods are
// best-effort: the pipeline degrades gracefully when they fail.
type Generator interface {
	// Enrich expands a terse user text; on failure it returns the original
	// text along with the error.
	Enrich(ctx context.Context, text string) (string, error)

	// Report writes the narrative companion to a bundle. Sections that fail
	// come back empty.
	Report(ctx context.Context, userText string, bundle engine.Bundle) (genai.Report, error)
}

// Archiver persists completed responses.
type Archiver interface {
	Save(record archive.Record) (string, error)
}

// Options configures a Service. Provider and Index are required; Generator
// and Archiver are optional and nil disables the corresponding step.
type Options struct {
	Provider  corpus.Provider
	Index     *index.Index
	Weights   engine.Weights // zero value means DefaultWeights
	TopN      int            // 0 means engine.DefaultTopN
	Generator Generator
	Archiver  Archiver
	Logger    zerolog.Logger
}

// Service runs the full recommendation pipeline.
type Service struct {
	provider corpus.Provider
	index    *index.Index
	ranker   *engine.Ranker
	scorer   *engine.Scorer
	gen      Generator
	arch     Archiver
	topN     int
	logger   zerolog.Logger
}

// Result is the complete outcome of one recommendation request.
type Result struct {
	UserText      string        `json:"userText"`
	EnrichedText  string        `json:"enrichedText"`
	DetectedMoods []string      `json:"detectedMoods"`
	Bundle        engine.Bundle `json:"bundle"`
	Report        genai.Report  `json:"report"`
	ArchiveID     string        `json:"archiveId,omitempty"`
}

// NewService creates a Service from Options.
func NewService(opts Options) (*Service, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("recommender: corpus provider is required")
	}
	if opts.Index == nil {
		return nil, fmt.Errorf("recommender: embedding index is required")
	}

	weights := opts.Weights
	if weights == (engine.Weights{}) {
		weights = engine.DefaultWeights()
	}
	scorer, err := engine.NewScorer(weights, opts.Logger)
	if err != nil {
		return nil, err
	}

	topN := opts.TopN
	if topN <= 0 {
		topN = engine.DefaultTopN
	}

	return &Service{
		provider: opts.Provider,
		index:    opts.Index,
		ranker:   engine.NewRanker(opts.Index, opts.Logger),
		scorer:   scorer,
		gen:      opts.Generator,
		arch:     opts.Archiver,
		topN:     topN,
		logger:   opts.Logger.With().Str("component", "recommender").Logger(),
	}, nil
}

// Start makes the index ready: it restores the cached snapshot when one is
// valid, otherwise loads the corpus and builds from scratch.
func (s *Service) Start(ctx context.Context) error {
	if s.index.LoadCache(ctx) {
		return nil
	}
	return s.Rebuild(ctx)
}

// Rebuild reloads the corpus and re-encodes it, replacing any cached
// snapshot. Use it after the corpus file changes.
func (s *Service) Rebuild(ctx context.Context) error {
	items, err := s.provider.Load(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	if err := s.index.Build(ctx, items); err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	return nil
}

// Recommend runs the pipeline for one raw questionnaire profile: validate,
// enrich, rank, score, bundle, report, archive. Enrichment, report and
// archival are best-effort and never fail the request.
func (s *Service) Recommend(ctx context.Context, raw profile.Raw) (*Result, error) {
	p := profile.Parse(raw, s.logger)
	s.logger.Debug().Str("profile", p.Summary()).Msg("profile parsed")

	userText := p.SemanticText()
	if userText == "" {
		return nil, ErrEmptyProfile
	}

	enriched := userText
	if s.gen != nil {
		// Enrich returns the original text on failure, so the error only
		// needs logging.
		if text, err := s.gen.Enrich(ctx, userText); err == nil {
			enriched = text
		}
	}

	detected := engine.DetectMoods(enriched)

	ranked, err := s.ranker.RankAll(ctx, enriched)
	if err != nil {
		return nil, fmt.Errorf("rank corpus: %w", err)
	}

	scored := s.scorer.ScoreAll(ranked, engine.ScoreInput{
		Preferences:     p.Preferences(),
		UserText:        enriched,
		DetectedMoods:   detected,
		PreferredGenres: p.PreferredGenres(),
		OpennessLevel:   p.OpennessLevel(),
	})

	result := &Result{
		UserText:      userText,
		EnrichedText:  enriched,
		DetectedMoods: detected,
		Bundle:        engine.BuildBundle(scored, s.topN),
	}

	if s.gen != nil {
		report, err := s.gen.Report(ctx, enriched, result.Bundle)
		if err != nil {
			s.logger.Warn().Err(err).Msg("report generation incomplete")
		}
		result.Report = report
	}

	if s.arch != nil {
		id, err := s.arch.Save(archive.Record{
			UserText: userText,
			Profile:  raw,
			Bundle:   result.Bundle,
			Report:   result.Report,
		})
		if err != nil {
			s.logger.Warn().Err(err).Msg("response archival failed")
		} else {
			result.ArchiveID = id
		}
	}

	s.logger.Info().
		Int("items", result.Bundle.Statistics.ItemsCount).
		Float64("maxScore", result.Bundle.Statistics.MaxScore).
		Msg("recommendation complete")
	return result, nil
}
