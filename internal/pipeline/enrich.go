package pipeline

import (
	"context"
	"sync"

	"github.com/cartfill/cartfill/internal/types"
)

// ProductFetcher provides authoritative product details. Implementations
// must return the sentinel record instead of failing.
type ProductFetcher interface {
	Product(ctx context.Context, sku int) types.ProductDetails
}

// Enricher merges live stock and pricing into ranked recommendations. It is
// the pipeline's last line of defense: it cannot fail, it only sentinels
// fields for products it could not find.
type Enricher struct {
	products ProductFetcher
	workers  int
}

// NewEnricher creates an enrichment stage fetching product details over at
// most workers concurrent lookups.
func NewEnricher(products ProductFetcher, workers int) *Enricher {
	if workers <= 0 {
		workers = 1
	}
	return &Enricher{products: products, workers: workers}
}

// Enrich fetches details for every suggestion in every line. Lookups fan out
// across the worker pool; results are written by index, so line order and
// suggestion order are preserved exactly. Model-provided fields (sku,
// full_name, confidence) are never altered.
func (e *Enricher) Enrich(ctx context.Context, ranked types.RecommendationList) types.AgentRecommendationList {
	lines := make([]types.EnrichedLine, len(ranked.Recommendations))
	for i, line := range ranked.Recommendations {
		lines[i] = types.EnrichedLine{
			Query:       line.Query,
			Suggestions: make([]types.EnrichedSuggestion, len(line.Suggestions)),
		}
	}

	type job struct {
		line, pos int
		rec       types.Recommendation
	}

	jobs := make(chan job)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				details := e.products.Product(ctx, j.rec.SKU)
				enriched := types.EnrichedSuggestion{
					Recommendation: j.rec,
					QtyInStock:     -1,
					UnitPrice:      -1,
				}
				if !details.IsSentinel() {
					enriched.QtyInStock = details.QtyInStock
					enriched.UnitPrice = details.UnitPrice
				}
				lines[j.line].Suggestions[j.pos] = enriched
			}
		}()
	}

	for i, line := range ranked.Recommendations {
		for pos, rec := range line.Suggestions {
			jobs <- job{line: i, pos: pos, rec: rec}
		}
	}
	close(jobs)
	wg.Wait()

	return types.AgentRecommendationList{Recommendations: lines}
}
