// Package store persists the product catalog served by the product API.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/cartfill/cartfill/internal/types"
)

// ErrNotFound is returned when no product exists for a sku.
var ErrNotFound = errors.New("product not found")

// ProductStore is the SQLite-backed product database.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore opens (creating if needed) the product database at dbPath,
// applies pragmas and runs migrations.
func NewProductStore(dbPath string) (*ProductStore, error) {
	// Ensure parent directory exists
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &ProductStore{db: db}, nil
}

// enablePragmas sets SQLite pragmas for optimal performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *ProductStore) Close() error {
	return s.db.Close()
}

// List returns one page of products ordered by sku and whether another page
// follows. It fetches one extra row beyond limit to detect the next page.
func (s *ProductStore) List(ctx context.Context, offset, limit int) ([]types.ProductDetails, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sku, brand, description, unit_price, qty_in_stock
		 FROM products ORDER BY sku LIMIT ? OFFSET ?`,
		limit+1, offset,
	)
	if err != nil {
		return nil, false, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []types.ProductDetails
	for rows.Next() {
		var p types.ProductDetails
		if err := rows.Scan(&p.SKU, &p.Brand, &p.Description, &p.UnitPrice, &p.QtyInStock); err != nil {
			return nil, false, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("list products: %w", err)
	}

	hasNext := len(products) > limit
	if hasNext {
		products = products[:limit]
	}
	return products, hasNext, nil
}

// Get returns one product's detail record, or ErrNotFound.
func (s *ProductStore) Get(ctx context.Context, sku int) (*types.ProductDetails, error) {
	var p types.ProductDetails
	err := s.db.QueryRowContext(ctx,
		`SELECT sku, brand, description, unit_price, qty_in_stock
		 FROM products WHERE sku = ?`,
		sku,
	).Scan(&p.SKU, &p.Brand, &p.Description, &p.UnitPrice, &p.QtyInStock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", sku, err)
	}
	return &p, nil
}

// Seed upserts the given products in one transaction.
func (s *ProductStore) Seed(ctx context.Context, products []types.ProductDetails) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO products (sku, brand, description, unit_price, qty_in_stock)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(sku) DO UPDATE SET
		   brand = excluded.brand,
		   description = excluded.description,
		   unit_price = excluded.unit_price,
		   qty_in_stock = excluded.qty_in_stock`,
	)
	if err != nil {
		return fmt.Errorf("prepare seed statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.ExecContext(ctx, p.SKU, p.Brand, p.Description, p.UnitPrice, p.QtyInStock); err != nil {
			return fmt.Errorf("seed product %d: %w", p.SKU, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}
	return nil
}

// Count returns the number of products in the catalog.
func (s *ProductStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}
