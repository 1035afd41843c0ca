package pipeline

import "github.com/cartfill/cartfill/internal/llm"

// parserSystemPrompt instructs the model to split raw grocery text into
// structured line items. The response must follow parsedGroceryListSchema.
const parserSystemPrompt = `You are a grocery list parser. The user message contains the raw text of a
shopping list. Split it into individual line items, in the order they appear.

For each line item return:
- "query": the original sub-phrase, verbatim.
- "product": the normalized product name (lowercase, no quantities or
  packaging words). Omit it when no product name can be extracted.
- "quantity": the numeric amount, when one is present.
- "unit": the unit of measure (e.g. "l", "kg", "pack"), when one is present.

Do not invent line items, do not merge lines, and do not reorder them.`

// rankerSystemPrompt instructs the model to pick and rank final candidates
// per grocery line. The user message carries the pruned catalog as JSON.
const rankerSystemPrompt = `You are a grocery shopping assistant. The user message contains a JSON
document with one entry per grocery line: the shopper's original query, the
parsed product name, and a short list of candidate store products
("candidates", each with "sku" and "full_name").

For every grocery line, in the same order, choose the candidates that best
satisfy the shopper's request and rank them best first. For each suggestion
return its "sku" and "full_name" unchanged from the candidate list, plus a
"confidence" score from 0 to 100 for how well it matches the request.

Never suggest a product that is not in that line's candidate list. A line
with no usable candidates gets an empty suggestions array. Return exactly one
entry per grocery line.`

// parsedGroceryListSchema is the strict response schema for the parsing
// stage.
var parsedGroceryListSchema = llm.Schema{
	Name: "parsed_grocery_list",
	Definition: map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"grocery_list"},
		"properties": map[string]interface{}{
			"grocery_list": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"query"},
					"properties": map[string]interface{}{
						"query":    map[string]interface{}{"type": "string"},
						"product":  map[string]interface{}{"type": "string"},
						"quantity": map[string]interface{}{"type": "number"},
						"unit":     map[string]interface{}{"type": "string"},
					},
				},
			},
		},
	},
}

// recommendationListSchema is the strict response schema for the ranking
// stage.
var recommendationListSchema = llm.Schema{
	Name: "recommendation_list",
	Definition: map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"recommendations"},
		"properties": map[string]interface{}{
			"recommendations": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"query", "suggestions"},
					"properties": map[string]interface{}{
						"query": map[string]interface{}{"type": "string"},
						"suggestions": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type":                 "object",
								"additionalProperties": false,
								"required":             []string{"sku", "full_name", "confidence"},
								"properties": map[string]interface{}{
									"sku":        map[string]interface{}{"type": "integer"},
									"full_name":  map[string]interface{}{"type": "string"},
									"confidence": map[string]interface{}{"type": "number"},
								},
							},
						},
					},
				},
			},
		},
	},
}
