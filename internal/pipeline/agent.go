// Package pipeline implements the four-stage recommendation pipeline:
// parse raw grocery text, narrow the catalog to per-line candidates, rank
// candidates with a generative model, and enrich the result with live
// inventory data. Every stage degrades to an empty result on failure, so a
// well-formed response is always returned.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/cartfill/cartfill/internal/types"
)

// GroceryParser is the parsing stage seen by the orchestrator: a structured
// grocery list, or nil when nothing could be parsed.
type GroceryParser interface {
	Parse(ctx context.Context, groceryText string) *types.ParsedGroceryList
}

// Recommender is the ranking stage seen by the orchestrator: ranked
// recommendations, or nil when ranking failed.
type Recommender interface {
	Rank(ctx context.Context, pruned types.PrunedCatalogList) *types.RecommendationList
}

// CatalogSource provides the read-only catalog snapshot for a run.
type CatalogSource interface {
	Catalog() types.ProductCatalog
}

// Agent orchestrates one pipeline run per request. When mocked is set (no
// model credential configured) parsing and ranking are answered from
// recorded fixtures and narrowing is skipped.
type Agent struct {
	parser   GroceryParser
	narrower *Narrower
	ranker   Recommender
	enricher *Enricher
	catalog  CatalogSource

	mocked         bool
	parseFixtures  *FixtureSource[types.ParsedGroceryList]
	rankedFixtures *FixtureSource[types.RecommendationList]
}

// NewAgent creates a live-mode agent.
func NewAgent(parser GroceryParser, narrower *Narrower, ranker Recommender, enricher *Enricher, catalog CatalogSource) *Agent {
	return &Agent{
		parser:   parser,
		narrower: narrower,
		ranker:   ranker,
		enricher: enricher,
		catalog:  catalog,
	}
}

// NewMockedAgent creates an agent that answers parsing and ranking from
// recorded fixtures keyed by the request's filename.
func NewMockedAgent(parseFixtures *FixtureSource[types.ParsedGroceryList], rankedFixtures *FixtureSource[types.RecommendationList], enricher *Enricher, catalog CatalogSource) *Agent {
	return &Agent{
		enricher:       enricher,
		catalog:        catalog,
		mocked:         true,
		parseFixtures:  parseFixtures,
		rankedFixtures: rankedFixtures,
	}
}

// Process runs the full pipeline over one grocery list. It never fails: any
// stage failure collapses to an empty, structurally valid result. The
// filename keys the fixture lookup in mocked mode.
func (a *Agent) Process(ctx context.Context, filename, groceryText string) types.AgentRecommendationList {
	runID := ulid.Make().String()
	log := slog.With("run_id", runID, "component", "pipeline")

	catalog := a.catalog.Catalog()
	if len(catalog.Catalog) == 0 {
		log.Warn("catalog is empty, returning empty recommendations")
		return types.EmptyRecommendations()
	}

	var ranked *types.RecommendationList
	if a.mocked {
		ranked = a.mockedRun(log, filename)
	} else {
		ranked = a.liveRun(ctx, log, groceryText, catalog)
	}
	if ranked == nil {
		return types.EmptyRecommendations()
	}

	result := a.enricher.Enrich(ctx, *ranked)
	log.Info("pipeline run complete",
		"lines", len(result.Recommendations),
		"mocked", a.mocked,
	)
	return result
}

// liveRun executes parse → narrow → rank against the model.
func (a *Agent) liveRun(ctx context.Context, log *slog.Logger, groceryText string, catalog types.ProductCatalog) *types.RecommendationList {
	parsed := a.parser.Parse(ctx, groceryText)
	if parsed == nil {
		log.Warn("parsing produced nothing, short-circuiting")
		return nil
	}

	pruned := a.narrower.Narrow(*parsed, catalog)

	ranked := a.ranker.Rank(ctx, pruned)
	if ranked == nil {
		log.Warn("ranking produced nothing, short-circuiting")
		return nil
	}
	return ranked
}

// mockedRun replays recorded parse and rank responses. The parse fixture is
// required even though its content is unused downstream: a missing recording
// means the scenario was never captured.
func (a *Agent) mockedRun(log *slog.Logger, filename string) *types.RecommendationList {
	if _, ok := a.parseFixtures.Fetch(filename); !ok {
		log.Warn("no recorded parse response, short-circuiting", "filename", filename)
		return nil
	}

	ranked, ok := a.rankedFixtures.Fetch(filename)
	if !ok {
		log.Warn("no recorded ranking response, short-circuiting", "filename", filename)
		return nil
	}
	return ranked
}
