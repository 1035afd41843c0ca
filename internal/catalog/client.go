package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/cartfill/cartfill/internal/types"
)

// ErrProductNotFound is returned when the product API answers 404 for a sku.
// Not retried.
var ErrProductNotFound = errors.New("product not found")

// ErrRetriesExhausted is returned when every attempt against the product API
// failed. It wraps the last underlying error.
var ErrRetriesExhausted = errors.New("product API retries exhausted")

// RetryPolicy is the backoff budget applied to each product API call.
type RetryPolicy struct {
	MaxAttempts int
	MinWait     time.Duration
	MaxWait     time.Duration
}

// Client is an HTTP client for the product API: paginated listings and
// per-sku detail lookups.
type Client struct {
	baseURL string
	http    *http.Client
	policy  RetryPolicy
}

// NewClient creates a product API client for the given base URL.
func NewClient(baseURL string, policy RetryPolicy) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		policy:  policy,
	}
}

// Listing fetches one page of the product listing. Any failure is retried
// with exponential backoff until the attempt budget runs out.
func (c *Client) Listing(ctx context.Context, page, perPage int) (*types.ProductListingResponse, error) {
	url := fmt.Sprintf("%s/api/v1/products?page=%d&products_per_page=%d", c.baseURL, page, perPage)

	var listing types.ProductListingResponse
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		if err := c.getJSON(ctx, url, &listing); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetriesExhausted, err)
	}

	return &listing, nil
}

// Product fetches one product's detail record. A 404 yields
// ErrProductNotFound immediately; everything else is retried.
func (c *Client) Product(ctx context.Context, sku int) (*types.ProductDetailsResponse, error) {
	url := c.baseURL + "/api/v1/products/" + strconv.Itoa(sku)

	var details types.ProductDetailsResponse
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		if err := c.getJSON(ctx, url, &details); err != nil {
			if errors.Is(err, ErrProductNotFound) {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRetriesExhausted, err)
	}

	return &details, nil
}

// getJSON performs a single GET and decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("product API request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode product API response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrProductNotFound
	default:
		return fmt.Errorf("product API status %d", resp.StatusCode)
	}
}

func (c *Client) backoff() retry.Backoff {
	b := retry.NewExponential(c.policy.MinWait)
	b = retry.WithCappedDuration(c.policy.MaxWait, b)
	b = retry.WithMaxRetries(uint64(c.policy.MaxAttempts-1), b)
	return b
}
