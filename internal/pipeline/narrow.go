package pipeline

import (
	"sort"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/cartfill/cartfill/internal/types"
)

// Narrower prunes the catalog down to a small candidate set per grocery
// line using weighted-ratio string similarity. Pure computation: it performs
// no I/O and is total over its inputs.
type Narrower struct {
	topN     int
	minScore int
}

// NewNarrower creates a narrowing stage keeping at most topN candidates per
// line, each scoring at least minScore (0-100).
func NewNarrower(topN, minScore int) *Narrower {
	return &Narrower{topN: topN, minScore: minScore}
}

// Narrow produces exactly one output line per parsed line, in input order.
// Lines whose product could not be parsed get an empty candidate list.
func (n *Narrower) Narrow(parsed types.ParsedGroceryList, catalog types.ProductCatalog) types.PrunedCatalogList {
	lines := make([]types.PrunedLine, 0, len(parsed.GroceryList))
	for _, item := range parsed.GroceryList {
		lines = append(lines, types.PrunedLine{
			ParsedLineItem: item,
			Candidates:     n.candidates(item.Product, catalog),
		})
	}
	return types.PrunedCatalogList{GroceryList: lines}
}

// candidates scores the product name against every catalog entry and keeps
// the best topN at or above minScore. The sort is stable over a pass in
// catalog order, so equal scores keep catalog order.
func (n *Narrower) candidates(product string, catalog types.ProductCatalog) []types.ProductLineItem {
	if product == "" {
		return []types.ProductLineItem{}
	}

	type scored struct {
		item  types.ProductLineItem
		score int
	}

	var matches []scored
	for _, entry := range catalog.Catalog {
		score := fuzzy.WRatio(product, entry.FullName)
		if score >= n.minScore {
			matches = append(matches, scored{item: entry, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > n.topN {
		matches = matches[:n.topN]
	}

	result := make([]types.ProductLineItem, len(matches))
	for i, m := range matches {
		result[i] = m.item
	}
	return result
}
