// Package store provides the authoritative in-memory product table and its
// delimited-file persistence.
package store

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProductPatch describes a partial update. A nil field is left unchanged.
// Stock is deliberately absent; it only moves through AdjustStock.
type ProductPatch struct {
	Name         *string
	SKU          *string
	Price        *decimal.Decimal
	ReorderLevel *int
	Supplier     *string
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations
// (e.g., in-memory, file-backed).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindAll returns all products sorted by name, case-insensitively.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// FindLowStock returns the products at or below their reorder level,
	// in the same order as FindAll.
	FindLowStock(ctx context.Context) ([]Product, error)

	// Create adds a new product, assigns it the next identifier and persists
	// the table. Returns ErrInvalidSKU, ErrInvalidQuantity or ErrDuplicateSKU.
	Create(ctx context.Context, name, skuCode string, price decimal.Decimal, stock, reorderLevel int, supplier string) (*Product, error)

	// Update applies a patch to an existing product and persists the table.
	// Returns ErrProductNotFound, ErrInvalidSKU, ErrDuplicateSKU or
	// ErrInvalidQuantity. Fields not present in the patch are left unchanged.
	Update(ctx context.Context, id int64, patch ProductPatch) (*Product, error)

	// DeleteByID removes a product by its ID and persists the table.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error

	// AdjustStock applies a signed delta to a product's stock and persists the
	// table. Returns ErrNegativeStock if the result would be negative, leaving
	// the stored stock unchanged.
	AdjustStock(ctx context.Context, id int64, delta int) (*Product, error)

	// Load replaces the in-memory table with the contents of the delimited
	// file at path. An empty path clears the table and resets the id counter.
	Load(ctx context.Context, path string) error

	// Save persists the table atomically. An empty path targets the active
	// path, falling back to the default file name.
	Save(ctx context.Context, path string) error

	// Export writes a full snapshot of the table to path.
	Export(ctx context.Context, path string) error

	// Import merges rows from the delimited file at path into the table by
	// SKU and persists the result. Returns the number of rows applied.
	Import(ctx context.Context, path string) (int, error)

	// Path returns the active file path used by Save with no argument.
	Path() string
}
