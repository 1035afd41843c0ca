package types

import "strings"

// SentinelSKU marks a product that could not be retrieved from the catalog
// service. Sentinel records keep response shapes uniform instead of using
// nulls.
const SentinelSKU = -1

// ProductLineItem is a single catalog entry: the unit the narrowing stage
// matches against.
type ProductLineItem struct {
	SKU      int    `json:"sku"`
	FullName string `json:"full_name"`
}

// ProductCatalog is the immutable catalog snapshot shared by all pipeline
// runs. It is replaced wholesale on reload, never mutated in place.
type ProductCatalog struct {
	Catalog []ProductLineItem `json:"catalog"`
}

// ProductDetails is the authoritative per-product record served by the
// product API.
type ProductDetails struct {
	SKU         int     `json:"sku"`
	Brand       string  `json:"brand,omitempty"`
	Description string  `json:"description,omitempty"`
	UnitPrice   float64 `json:"unit_price,omitempty"`
	QtyInStock  int     `json:"qty_in_stock,omitempty"`
}

// IsSentinel reports whether the record stands in for a product that could
// not be found.
func (p ProductDetails) IsSentinel() bool {
	return p.SKU == SentinelSKU
}

// FullName joins brand and description into the display name used in
// listings and candidate matching.
func (p ProductDetails) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.Brand) + " " + strings.TrimSpace(p.Description))
}

// SentinelProduct returns the placeholder record for an unavailable product.
func SentinelProduct() ProductDetails {
	return ProductDetails{SKU: SentinelSKU}
}

// ParsedLineItem is one structured line extracted from the raw grocery text.
// Product is empty when the model could not extract a product name; an empty
// Product means "no candidates possible", not an error.
type ParsedLineItem struct {
	Query    string   `json:"query"`
	Product  string   `json:"product,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     *string  `json:"unit,omitempty"`
}

// ParsedGroceryList is the ordered output of the parsing stage. Order is
// preserved end-to-end so final output lines correspond 1:1 to input order.
type ParsedGroceryList struct {
	GroceryList []ParsedLineItem `json:"grocery_list"`
}

// PrunedLine is a parsed line plus its narrowed catalog candidates.
type PrunedLine struct {
	ParsedLineItem
	Candidates []ProductLineItem `json:"candidates"`
}

// PrunedCatalogList is the ordered output of the narrowing stage, one line
// per parsed line.
type PrunedCatalogList struct {
	GroceryList []PrunedLine `json:"grocery_list"`
}

// Recommendation is one ranked product suggestion from the model. Confidence
// is the provider's raw score; bucketing is display-layer concern.
type Recommendation struct {
	SKU        int     `json:"sku"`
	FullName   string  `json:"full_name"`
	Confidence float64 `json:"confidence"`
}

// RecommendationLine groups the ranked suggestions for one grocery line.
type RecommendationLine struct {
	Query       string           `json:"query"`
	Suggestions []Recommendation `json:"suggestions"`
}

// RecommendationList is the ordered output of the ranking stage.
type RecommendationList struct {
	Recommendations []RecommendationLine `json:"recommendations"`
}

// EnrichedSuggestion is a ranked suggestion with live stock and pricing
// merged in. QtyInStock and UnitPrice are -1 when the product could not be
// found during enrichment.
type EnrichedSuggestion struct {
	Recommendation
	QtyInStock int     `json:"qty_in_stock"`
	UnitPrice  float64 `json:"unit_price"`
}

// EnrichedLine is the final per-line result.
type EnrichedLine struct {
	Query       string               `json:"query"`
	Suggestions []EnrichedSuggestion `json:"suggestions"`
}

// AgentRecommendationList is the pipeline's final output. It is always
// well-formed; a failed run yields an empty Recommendations slice, never an
// error.
type AgentRecommendationList struct {
	Recommendations []EnrichedLine `json:"recommendations"`
}

// EmptyRecommendations returns the degraded-but-valid result every failure
// mode collapses to.
func EmptyRecommendations() AgentRecommendationList {
	return AgentRecommendationList{Recommendations: []EnrichedLine{}}
}

// ProductListingResponse is one page of the product API listing.
type ProductListingResponse struct {
	Data     []ProductLineItem `json:"data"`
	Count    int               `json:"count"`
	Previous *string           `json:"previous"`
	Next     *string           `json:"next"`
}

// ProductDetailsResponse wraps a single product detail record.
type ProductDetailsResponse struct {
	Data ProductDetails `json:"data"`
}

// RecommendationRequest is the agent API request body. Filename keys the
// recorded-response lookup when no model credential is configured.
type RecommendationRequest struct {
	Filename    string `json:"filename,omitempty"`
	GroceryText string `json:"grocery_text"`
}
