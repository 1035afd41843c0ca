package pipeline

import (
	"context"
	"log/slog"

	"github.com/cartfill/cartfill/internal/llm"
	"github.com/cartfill/cartfill/internal/types"
)

// Parser turns raw grocery-list text into an ordered sequence of structured
// line items using a schema-validated model request.
type Parser struct {
	gateway llm.Gateway
}

// NewParser creates a parsing stage backed by the given gateway.
func NewParser(gateway llm.Gateway) *Parser {
	return &Parser{gateway: gateway}
}

// Parse returns the structured grocery list, or nil when parsing failed for
// any reason. Failures are logged here and never propagate; the caller
// treats nil as "nothing could be parsed".
func (p *Parser) Parse(ctx context.Context, groceryText string) *types.ParsedGroceryList {
	var parsed types.ParsedGroceryList
	err := p.gateway.Structured(ctx, parserSystemPrompt, groceryText, parsedGroceryListSchema, &parsed)
	if err != nil {
		slog.Warn("grocery list parsing failed",
			"error", err,
			"component", "pipeline",
			"stage", "parse",
		)
		return nil
	}

	slog.Debug("grocery list parsed",
		"lines", len(parsed.GroceryList),
		"component", "pipeline",
		"stage", "parse",
	)
	return &parsed
}
