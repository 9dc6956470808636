package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/revo-off/Vibeyf-ai/recommender/corpus"
	"github.com/revo-off/Vibeyf-ai/recommender/engine"
)

// Report is the narrative companion to a recommendation bundle.
type Report struct {
	Summary         string `json:"summary"`
	ProgressionPlan string `json:"progressionPlan"`
}

const summarySystemPrompt = `You are a music advisor. Given a listener's request and their top ` +
	`recommendations, write a warm, concise summary (at most four sentences) of why ` +
	`these picks fit. Plain text only.`

const planSystemPrompt = `You are a music advisor. Given a listener's request, their top ` +
	`recommendations and a few less obvious picks, propose a short listening ` +
	`progression: where to start, what to move to next, and one discovery to try. ` +
	`Plain text, at most five sentences.`

// Report generates the narrative report for a bundle. Each section is
// attempted independently; a section that fails comes back empty and the
// first error is reported, leaving the other section usable.
func (c *Client) Report(ctx context.Context, userText string, bundle engine.Bundle) (Report, error) {
	var report Report
	var firstErr error

	summary, err := c.complete(ctx, summarySystemPrompt, summaryPrompt(userText, bundle))
	if err != nil {
		c.logger.Warn().Err(err).Msg("report summary failed")
		firstErr = err
	} else {
		report.Summary = summary
	}

	plan, err := c.complete(ctx, planSystemPrompt, planPrompt(userText, bundle))
	if err != nil {
		c.logger.Warn().Err(err).Msg("report progression plan failed")
		if firstErr == nil {
			firstErr = err
		}
	} else {
		report.ProgressionPlan = plan
	}

	return report, firstErr
}

func summaryPrompt(userText string, bundle engine.Bundle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Listener request: %s\n\nTop recommendations:\n", userText)
	writeItems(&b, bundle.TopRecommendations, 5)
	fmt.Fprintf(&b, "\nScores range from %.2f to %.2f over %d items.",
		bundle.Statistics.MinScore, bundle.Statistics.MaxScore, bundle.Statistics.ItemsCount)
	return b.String()
}

func planPrompt(userText string, bundle engine.Bundle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Listener request: %s\n\nTop recommendations:\n", userText)
	writeItems(&b, bundle.TopRecommendations, 5)
	if songs := bundle.TopByKind[corpus.KindSong]; len(songs) > 0 {
		b.WriteString("\nBest matching songs:\n")
		writeItems(&b, songs, 3)
	}
	if len(bundle.WeakSpots) > 0 {
		b.WriteString("\nLess obvious picks for discovery:\n")
		writeItems(&b, bundle.WeakSpots, 3)
	}
	return b.String()
}

func writeItems(b *strings.Builder, items []engine.Scored, max int) {
	for i, s := range items {
		if i >= max {
			break
		}
		fmt.Fprintf(b, "- %s (score %.2f)\n", engine.FormatItem(s), s.Scores.Global)
	}
}
