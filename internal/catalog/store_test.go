package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/cartfill/cartfill/internal/types"
)

func testRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		MinWait:     time.Millisecond,
		MaxWait:     5 * time.Millisecond,
	}
}

// listingServer serves pages of 3 products each; the last page has a null
// next token.
func listingServer(t *testing.T, pages int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 || page > pages {
			http.Error(w, "no such page", http.StatusBadRequest)
			return
		}

		var data []types.ProductLineItem
		for i := 0; i < 3; i++ {
			sku := (page-1)*3 + i + 1
			data = append(data, types.ProductLineItem{
				SKU:      sku,
				FullName: fmt.Sprintf("Product %d", sku),
			})
		}

		var next *string
		if page < pages {
			token := strconv.Itoa(page + 1)
			next = &token
		}

		json.NewEncoder(w).Encode(types.ProductListingResponse{
			Data:  data,
			Count: len(data),
			Next:  next,
		})
	}))
}

func TestLoadLivePaginatesInOrder(t *testing.T) {
	srv := listingServer(t, 3)
	defer srv.Close()

	store := NewStore(NewClient(srv.URL, testRetryPolicy()), 3, "")
	store.Load(context.Background(), SourceLive)

	catalog := store.Catalog()
	if len(catalog.Catalog) != 9 {
		t.Fatalf("expected 9 products, got %d", len(catalog.Catalog))
	}
	for i, item := range catalog.Catalog {
		if item.SKU != i+1 {
			t.Errorf("catalog[%d].SKU = %d, want %d", i, item.SKU, i+1)
		}
	}
}

func TestLoadLiveFailureDropsEntireCatalog(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 1 {
			next := "2"
			json.NewEncoder(w).Encode(types.ProductListingResponse{
				Data: []types.ProductLineItem{{SKU: 1, FullName: "Whole Milk 1L"}},
				Next: &next,
			})
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewStore(NewClient(srv.URL, testRetryPolicy()), 1, "")
	store.Load(context.Background(), SourceLive)

	if got := store.Catalog(); len(got.Catalog) != 0 {
		t.Errorf("partial catalog must be dropped, got %d products", len(got.Catalog))
	}
}

func TestLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	snapshot := types.ProductCatalog{
		Catalog: []types.ProductLineItem{
			{SKU: 1, FullName: "Whole Milk 1L"},
			{SKU: 2, FullName: "Almond Milk"},
		},
	}
	data, _ := json.Marshal(snapshot)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(nil, 50, path)
	store.Load(context.Background(), SourceSnapshot)

	if got := store.Catalog(); len(got.Catalog) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got.Catalog))
	}
}

func TestLoadSnapshotMissingFileYieldsEmptyCatalog(t *testing.T) {
	store := NewStore(nil, 50, filepath.Join(t.TempDir(), "nope.json"))
	store.Load(context.Background(), SourceSnapshot)

	if got := store.Catalog(); len(got.Catalog) != 0 {
		t.Errorf("expected empty catalog, got %d products", len(got.Catalog))
	}
}

func TestProductNotFoundReturnsSentinel(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	store := NewStore(NewClient(srv.URL, testRetryPolicy()), 50, "")
	got := store.Product(context.Background(), 99000)

	if !got.IsSentinel() {
		t.Fatalf("expected sentinel, got %+v", got)
	}
	if calls != 1 {
		t.Errorf("not-found must not be retried, got %d calls", calls)
	}
}

func TestProductRetryExhaustionReturnsSentinel(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewStore(NewClient(srv.URL, testRetryPolicy()), 50, "")
	got := store.Product(context.Background(), 100)

	if !got.IsSentinel() {
		t.Fatalf("expected sentinel, got %+v", got)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestProductSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.ProductDetailsResponse{
			Data: types.ProductDetails{
				SKU:         100,
				Brand:       "Hilltop",
				Description: "Whole Milk 1L",
				UnitPrice:   2.49,
				QtyInStock:  12,
			},
		})
	}))
	defer srv.Close()

	store := NewStore(NewClient(srv.URL, testRetryPolicy()), 50, "")
	got := store.Product(context.Background(), 100)

	if got.IsSentinel() {
		t.Fatal("expected real product, got sentinel")
	}
	if got.UnitPrice != 2.49 || got.QtyInStock != 12 {
		t.Errorf("unexpected details: %+v", got)
	}
}

func TestClientProductRetriesServerErrorThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(types.ProductDetailsResponse{
			Data: types.ProductDetails{SKU: 7, Description: "Brown Eggs"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testRetryPolicy())
	resp, err := client.Product(context.Background(), 7)
	if err != nil {
		t.Fatalf("Product() error = %v", err)
	}
	if resp.Data.SKU != 7 {
		t.Errorf("Product() = %+v", resp.Data)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestClientListingExhaustionWrapsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testRetryPolicy())
	_, err := client.Listing(context.Background(), 1, 50)
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("Listing() error = %v, want ErrRetriesExhausted", err)
	}
}
