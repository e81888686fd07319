// Package service provides the implementation of inventory business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Johnnyadee/group15-simple-inventory-system/internal/store"
	"github.com/Johnnyadee/group15-simple-inventory-system/pkg/messaging"
	"github.com/Johnnyadee/group15-simple-inventory-system/pkg/messaging/events"
	"github.com/shopspring/decimal"
)

// InventoryService defines the methods for managing the product catalog.
// It abstracts the underlying business logic and data access.
type InventoryService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// FindAll returns all products sorted by name, case-insensitively.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// FindLowStock returns the products at or below their reorder level.
	FindLowStock(ctx context.Context) ([]ProductDto, error)

	// Create adds a new product to the catalog.
	// Returns ErrInvalidSKU, ErrInvalidQuantity or ErrDuplicateSKU.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update applies a partial update; absent fields are left unchanged.
	// Returns ErrProductNotFound, ErrInvalidSKU, ErrDuplicateSKU or ErrInvalidQuantity.
	Update(ctx context.Context, id int64, patch ProductUpdateDto) (*ProductDto, error)

	// AdjustStock applies a signed delta to a product's stock.
	// Returns ErrNegativeStock if the result would drop below zero.
	AdjustStock(ctx context.Context, id int64, delta int) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error

	// Load replaces the catalog with the contents of the file at path;
	// an empty path clears the catalog.
	Load(ctx context.Context, path string) error

	// Save persists the catalog, to the active path when path is empty.
	Save(ctx context.Context, path string) error

	// Export writes a full snapshot of the catalog to path.
	Export(ctx context.Context, path string) error

	// Import merges rows from the file at path into the catalog by SKU
	// and returns the number of rows applied.
	Import(ctx context.Context, path string) (int, error)

	// ActivePath returns the file path targeted by Save with no argument.
	ActivePath() string
}

// Service implements InventoryService over a ProductStore.
type Service struct {
	repository store.ProductStore
	publisher  messaging.Publisher
	logger     *slog.Logger
}

// NewService creates a new InventoryService with the provided repository and
// event publisher.
func NewService(repo store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repository: repo,
		publisher:  publisher,
		logger:     logger.With("component", "service"),
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name         string          `json:"name"          validate:"required,max=100"`
	SKU          string          `json:"sku"           validate:"required,max=20"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"         validate:"gte=0"`
	ReorderLevel int             `json:"reorder_level" validate:"gte=0"`
	Supplier     string          `json:"supplier"      validate:"omitempty,max=100"`
}

// ProductUpdateDto represents a partial update. A nil field means
// "leave unchanged"; stock is adjusted only through AdjustStock.
type ProductUpdateDto struct {
	Name         *string          `json:"name"          validate:"omitempty,max=100"`
	SKU          *string          `json:"sku"           validate:"omitempty,max=20"`
	Price        *decimal.Decimal `json:"price"`
	ReorderLevel *int             `json:"reorder_level" validate:"omitempty,gte=0"`
	Supplier     *string          `json:"supplier"      validate:"omitempty,max=100"`
}

// StockAdjustDto represents the data transfer object for a stock adjustment.
// Delta is a pointer so that an explicit zero stays distinguishable from an
// absent field; zero is a valid no-op adjustment.
type StockAdjustDto struct {
	Delta *int `json:"delta" validate:"required"`
}

// ProductDto is the collaborator-facing product view: price formatted to two
// decimals, supplier placeholder when absent, plus the derived stock flags.
type ProductDto struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	Supplier     string `json:"supplier"`
	Price        string `json:"price"`
	Stock        int    `json:"stock"`
	ReorderLevel int    `json:"reorder_level"`
	LowStock     bool   `json:"low_stock"`
	OutOfStock   bool   `json:"out_of_stock"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return toDto(product), nil
}

// FindAll retrieves the full catalog as ProductDtos, name-sorted.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return toDtos(products), nil
}

// FindLowStock retrieves the low-stock subset as ProductDtos, name-sorted.
func (s *Service) FindLowStock(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch low stock products: %w", err)
	}
	return toDtos(products), nil
}

// Create creates a new product and returns it as a ProductDto.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	p, err := s.repository.Create(ctx, product.Name, product.SKU, product.Price, product.Stock, product.ReorderLevel, product.Supplier)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.notifyIfLow(ctx, p)
	return toDto(p), nil
}

// Update applies a patch to an existing product and returns the result.
func (s *Service) Update(ctx context.Context, id int64, patch ProductUpdateDto) (*ProductDto, error) {
	p, err := s.repository.Update(ctx, id, store.ProductPatch{
		Name:         patch.Name,
		SKU:          patch.SKU,
		Price:        patch.Price,
		ReorderLevel: patch.ReorderLevel,
		Supplier:     patch.Supplier,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}
	s.notifyIfLow(ctx, p)
	return toDto(p), nil
}

// AdjustStock applies a signed delta and returns the updated product.
func (s *Service) AdjustStock(ctx context.Context, id int64, delta int) (*ProductDto, error) {
	p, err := s.repository.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock for product with ID %d: %w", id, err)
	}
	s.notifyIfLow(ctx, p)
	return toDto(p), nil
}

// DeleteByID deletes a product by its ID.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	return s.repository.DeleteByID(ctx, id)
}

// Load replaces the catalog with the contents of the file at path.
func (s *Service) Load(ctx context.Context, path string) error {
	if err := s.repository.Load(ctx, path); err != nil {
		return fmt.Errorf("failed to load catalog from %q: %w", path, err)
	}
	return nil
}

// Save persists the catalog.
func (s *Service) Save(ctx context.Context, path string) error {
	if err := s.repository.Save(ctx, path); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

// Export writes a full snapshot of the catalog to path.
func (s *Service) Export(ctx context.Context, path string) error {
	if err := s.repository.Export(ctx, path); err != nil {
		return fmt.Errorf("failed to export catalog to %q: %w", path, err)
	}
	return nil
}

// Import merges rows from the file at path into the catalog by SKU.
func (s *Service) Import(ctx context.Context, path string) (int, error) {
	applied, err := s.repository.Import(ctx, path)
	if err != nil {
		return applied, fmt.Errorf("failed to import catalog from %q: %w", path, err)
	}
	return applied, nil
}

// ActivePath returns the file path targeted by Save with no argument.
func (s *Service) ActivePath() string {
	return s.repository.Path()
}

// notifyIfLow publishes a StockLowEvent when the product sits at or below
// its reorder level. Publishing is best-effort: a failure is logged and
// never fails the operation that triggered it.
func (s *Service) notifyIfLow(ctx context.Context, p *store.Product) {
	if !p.IsLowStock() {
		return
	}
	event := events.StockLowEvent{
		ProductID:    p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Stock:        p.Stock,
		ReorderLevel: p.ReorderLevel,
		OccurredAt:   time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish stock low event", "sku", p.SKU, "error", err)
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(p *store.Product) *ProductDto {
	supplier := p.Supplier
	if supplier == "" {
		supplier = "-"
	}
	return &ProductDto{
		ID:           p.ID,
		Name:         p.Name,
		SKU:          p.SKU,
		Supplier:     supplier,
		Price:        p.Price.StringFixed(2),
		Stock:        p.Stock,
		ReorderLevel: p.ReorderLevel,
		LowStock:     p.IsLowStock(),
		OutOfStock:   p.IsOutOfStock(),
	}
}

func toDtos(products []store.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i, item := range products {
		dtos[i] = *toDto(&item)
	}
	return dtos
}
