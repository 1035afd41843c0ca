// Package catalog holds the in-memory product catalog for an agent session
// and the client for its backing product API. The catalog is loaded once at
// startup and read-only afterwards; reloads install a fresh snapshot
// atomically so concurrent readers never observe a partial catalog.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/cartfill/cartfill/internal/types"
)

// SourceLive loads the catalog from the paginated product API;
// SourceSnapshot loads it from a local JSON dump.
const (
	SourceLive     = "live"
	SourceSnapshot = "snapshot"
)

// Store owns the catalog snapshot for one agent session.
type Store struct {
	client       *Client
	perPage      int
	snapshotPath string
	catalog      atomic.Pointer[types.ProductCatalog]
}

// NewStore creates a Store starting with an empty catalog.
func NewStore(client *Client, perPage int, snapshotPath string) *Store {
	s := &Store{
		client:       client,
		perPage:      perPage,
		snapshotPath: snapshotPath,
	}
	s.install(nil)
	return s
}

// Catalog returns the current immutable catalog snapshot.
func (s *Store) Catalog() types.ProductCatalog {
	return *s.catalog.Load()
}

// Load populates the catalog from the given source. Loading never fails:
// any error forces an empty catalog and is logged, so startup always
// proceeds.
func (s *Store) Load(ctx context.Context, source string) {
	switch source {
	case SourceSnapshot:
		s.loadSnapshot()
	default:
		s.loadLive(ctx)
	}
}

// loadLive pages through the product API until no next page remains. On any
// failure the entire catalog is dropped; no partial catalog is kept.
func (s *Store) loadLive(ctx context.Context) {
	var items []types.ProductLineItem

	for page := 1; ; page++ {
		listing, err := s.client.Listing(ctx, page, s.perPage)
		if err != nil {
			slog.Error("catalog load failed, setting catalog to empty",
				"error", err,
				"page", page,
				"component", "catalog",
			)
			s.install(nil)
			return
		}
		items = append(items, listing.Data...)
		if listing.Next == nil {
			break
		}
	}

	s.install(items)
	slog.Info("catalog loaded",
		"source", SourceLive,
		"products", len(items),
		"component", "catalog",
	)
}

// loadSnapshot reads a local catalog dump of the form {"catalog": [...]}.
func (s *Store) loadSnapshot() {
	data, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		slog.Error("catalog snapshot read failed, setting catalog to empty",
			"error", err,
			"path", s.snapshotPath,
			"component", "catalog",
		)
		s.install(nil)
		return
	}

	var snapshot types.ProductCatalog
	if err := json.Unmarshal(data, &snapshot); err != nil {
		slog.Error("catalog snapshot parse failed, setting catalog to empty",
			"error", err,
			"path", s.snapshotPath,
			"component", "catalog",
		)
		s.install(nil)
		return
	}

	s.install(snapshot.Catalog)
	slog.Info("catalog loaded",
		"source", SourceSnapshot,
		"products", len(snapshot.Catalog),
		"component", "catalog",
	)
}

// install atomically swaps in a new catalog snapshot.
func (s *Store) install(items []types.ProductLineItem) {
	if items == nil {
		items = []types.ProductLineItem{}
	}
	s.catalog.Store(&types.ProductCatalog{Catalog: items})
}

// Product fetches one product's authoritative detail record. Lookup never
// fails: a missing product or an exhausted retry budget both yield the
// sentinel record, which callers must treat as "unavailable".
func (s *Store) Product(ctx context.Context, sku int) types.ProductDetails {
	resp, err := s.client.Product(ctx, sku)
	if err != nil {
		switch {
		case errors.Is(err, ErrProductNotFound):
			slog.Warn("product not found",
				"sku", sku,
				"component", "catalog",
			)
		default:
			slog.Error("product lookup failed after retries",
				"sku", sku,
				"error", err,
				"component", "catalog",
			)
		}
		return types.SentinelProduct()
	}
	return resp.Data
}
