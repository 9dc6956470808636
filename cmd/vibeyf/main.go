// Command vibeyf runs the music recommendation engine from the command line.
//
// Subcommands:
//
//	questions   print the questionnaire as JSON
//	recommend   run the pipeline for a profile (default)
//	rebuild     re-encode the corpus, replacing the cached snapshot
//	archive     list archived responses
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/revo-off/Vibeyf-ai/conf"
	"github.com/revo-off/Vibeyf-ai/recommender"
	"github.com/revo-off/Vibeyf-ai/recommender/archive"
	"github.com/revo-off/Vibeyf-ai/recommender/corpus"
	"github.com/revo-off/Vibeyf-ai/recommender/engine"
	"github.com/revo-off/Vibeyf-ai/recommender/genai"
	"github.com/revo-off/Vibeyf-ai/recommender/index"
	"github.com/revo-off/Vibeyf-ai/recommender/llamacpp"
	"github.com/revo-off/Vibeyf-ai/recommender/profile"
)

func main() {
	cfg, err := conf.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.Logging)

	cmd := "recommend"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case "questions":
		err = printQuestions()
	case "recommend":
		err = runRecommend(ctx, cfg, logger, args)
	case "rebuild":
		err = runRebuild(ctx, cfg, logger)
	case "archive":
		err = runArchiveList(cfg, logger)
	default:
		err = fmt.Errorf("unknown subcommand %q (want questions, recommend, rebuild or archive)", cmd)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("subcommand", cmd).Msg("command failed")
	}
}

func newLogger(cfg conf.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func printQuestions() error {
	payload := struct {
		Likert []profile.LikertQuestion `json:"likert"`
		Open   []profile.OpenQuestion   `json:"open"`
	}{
		Likert: profile.LikertQuestions(),
		Open:   profile.OpenQuestions(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// buildService assembles the pipeline from configuration. The returned
// cleanup closes the stores and must run before exit.
func buildService(cfg *conf.Config, logger zerolog.Logger) (*recommender.Service, func(), error) {
	cache, err := index.OpenCache(cfg.Embedding.CachePath, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := cache.Close(); err != nil {
			logger.Error().Err(err).Msg("closing embedding cache")
		}
	}

	encoder := llamacpp.NewClient(llamacpp.Config{
		EmbedURL:     cfg.Embedding.URL,
		ModelID:      cfg.Embedding.Model,
		Timeout:      cfg.Embedding.Timeout,
		MaxRetries:   cfg.Embedding.MaxRetries,
		RetryBackoff: cfg.Embedding.RetryBackoff,
	}, logger)

	opts := recommender.Options{
		Provider: corpus.NewFileProvider(cfg.Corpus.Path, logger),
		Index:    index.New(encoder, cache, logger),
		Weights: engine.Weights{
			SemanticSimilarity: cfg.Engine.SemanticWeight,
			MoodMatch:          cfg.Engine.MoodWeight,
			PreferenceMatch:    cfg.Engine.PreferenceWeight,
			AudioMatch:         cfg.Engine.AudioWeight,
		},
		TopN:   cfg.Engine.TopN,
		Logger: logger,
	}

	if cfg.GenAI.Enabled {
		opts.Generator = genai.NewClient(genai.Config{
			BaseURL:               cfg.GenAI.URL,
			Model:                 cfg.GenAI.Model,
			MinWordsForEnrichment: cfg.GenAI.MinWords,
			Timeout:               cfg.GenAI.Timeout,
		}, logger)
	}

	if cfg.Archive.Enabled {
		store, err := archive.Open(cfg.Archive.Path, logger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts.Archiver = store
		inner := cleanup
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Error().Err(err).Msg("closing archive")
			}
			inner()
		}
	}

	svc, err := recommender.NewService(opts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

func runRecommend(ctx context.Context, cfg *conf.Config, logger zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	profilePath := fs.String("profile", "-", "profile JSON file, or - for stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	raw, err := readProfile(*profilePath)
	if err != nil {
		return err
	}

	svc, cleanup, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.Start(ctx); err != nil {
		return err
	}

	result, err := svc.Recommend(ctx, raw)
	if err != nil {
		return err
	}
	return printResult(result)
}

func runRebuild(ctx context.Context, cfg *conf.Config, logger zerolog.Logger) error {
	svc, cleanup, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	return svc.Rebuild(ctx)
}

func runArchiveList(cfg *conf.Config, logger zerolog.Logger) error {
	store, err := archive.Open(cfg.Archive.Path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List()
	if err != nil {
		return err
	}
	for _, r := range records {
		fmt.Printf("%s  %s  %q\n", r.CreatedAt.Format(time.RFC3339), r.ID, r.UserText)
	}
	return nil
}

func readProfile(path string) (profile.Raw, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return profile.Raw{}, fmt.Errorf("read profile: %w", err)
	}

	var raw profile.Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return profile.Raw{}, fmt.Errorf("decode profile: %w", err)
	}
	return raw, nil
}

func printResult(result *recommender.Result) error {
	fmt.Printf("Query: %s\n", result.EnrichedText)
	if len(result.DetectedMoods) > 0 {
		fmt.Printf("Detected moods: %v\n", result.DetectedMoods)
	}

	fmt.Println("\nTop recommendations:")
	for i, s := range result.Bundle.TopRecommendations {
		fmt.Printf("%2d. %s  [%.3f]\n", i+1, engine.FormatItem(s), s.Scores.Global)
	}

	fmt.Println("\nWorth exploring:")
	for _, s := range result.Bundle.WeakSpots {
		fmt.Printf("  - %s  [%.3f]\n", engine.FormatItem(s), s.Scores.Global)
	}

	stats := result.Bundle.Statistics
	fmt.Printf("\nScored %d items, mean %.3f, range %.3f-%.3f\n",
		stats.ItemsCount, stats.MeanScore, stats.MinScore, stats.MaxScore)

	if result.Report.Summary != "" {
		fmt.Printf("\n%s\n", result.Report.Summary)
	}
	if result.Report.ProgressionPlan != "" {
		fmt.Printf("\nListening plan:\n%s\n", result.Report.ProgressionPlan)
	}
	if result.ArchiveID != "" {
		fmt.Printf("\nArchived as %s\n", result.ArchiveID)
	}
	return nil
}
