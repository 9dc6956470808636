package genai

import (
	"context"
	"fmt"
	"strings"
)

const enrichSystemPrompt = `You expand terse music-related phrases into short, evocative descriptions ` +
	`suitable for semantic search over a music catalog. Answer with the expanded ` +
	`description only, one or two sentences, no preamble.`

// Enrich expands a terse user text into a richer description for semantic
// search. Texts already at or above the configured word count pass through
// unchanged. On any failure the original text is returned along with the
// error, so callers can always use the result.
func (c *Client) Enrich(ctx context.Context, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return text, nil
	}
	if len(strings.Fields(trimmed)) >= c.config.MinWordsForEnrichment {
		return trimmed, nil
	}

	prompt := fmt.Sprintf("Expand this music request: %q", trimmed)
	enriched, err := c.complete(ctx, enrichSystemPrompt, prompt)
	if err != nil {
		c.logger.Warn().Err(err).Msg("enrichment failed, keeping original text")
		return trimmed, err
	}

	c.logger.Debug().Str("original", trimmed).Str("enriched", enriched).Msg("user text enriched")
	return enriched, nil
}
