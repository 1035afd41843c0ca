package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/cartfill/cartfill/internal/llm"
	"github.com/cartfill/cartfill/internal/types"
)

// Ranker asks the model to pick and rank final candidates per grocery line,
// with confidence scores, via a schema-validated request. Each line's
// suggestions are capped at maxSuggestions regardless of what the model
// returns.
type Ranker struct {
	gateway        llm.Gateway
	maxSuggestions int
}

// NewRanker creates a ranking stage backed by the given gateway.
func NewRanker(gateway llm.Gateway, maxSuggestions int) *Ranker {
	if maxSuggestions <= 0 {
		maxSuggestions = 3
	}
	return &Ranker{gateway: gateway, maxSuggestions: maxSuggestions}
}

// Rank returns ranked recommendations for the pruned catalog, or nil when
// ranking failed for any reason. Failures are logged here and never
// propagate; the caller treats nil as "no recommendations".
func (r *Ranker) Rank(ctx context.Context, pruned types.PrunedCatalogList) *types.RecommendationList {
	payload, err := json.Marshal(pruned)
	if err != nil {
		slog.Warn("pruned catalog serialization failed",
			"error", err,
			"component", "pipeline",
			"stage", "rank",
		)
		return nil
	}

	var ranked types.RecommendationList
	err = r.gateway.Structured(ctx, rankerSystemPrompt, string(payload), recommendationListSchema, &ranked)
	if err != nil {
		slog.Warn("recommendation ranking failed",
			"error", err,
			"component", "pipeline",
			"stage", "rank",
		)
		return nil
	}

	for i, line := range ranked.Recommendations {
		if len(line.Suggestions) > r.maxSuggestions {
			ranked.Recommendations[i].Suggestions = line.Suggestions[:r.maxSuggestions]
		}
	}

	slog.Debug("recommendations ranked",
		"lines", len(ranked.Recommendations),
		"component", "pipeline",
		"stage", "rank",
	)
	return &ranked
}
