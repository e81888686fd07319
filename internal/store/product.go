package store

import "github.com/shopspring/decimal"

// Product represents a stocked catalog entry.
// IDs are assigned by the store and stay stable for the record's lifetime.
type Product struct {
	ID           int64
	Name         string
	SKU          string
	Price        decimal.Decimal
	Stock        int
	ReorderLevel int
	Supplier     string // empty means absent
}

// IsLowStock reports whether stock is at or below the reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.ReorderLevel
}

// IsOutOfStock reports whether there is no stock left at all.
func (p *Product) IsOutOfStock() bool {
	return p.Stock == 0
}
