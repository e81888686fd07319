// Package errors provides custom error types for inventory operations.
package errors

import "errors"

var (
	// ErrProductNotFound is returned when no product exists with the given ID.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidSKU is returned when a SKU does not match the catalog format.
	ErrInvalidSKU = errors.New("sku must be 4-20 chars (A-Z, 0-9, -)")
	// ErrDuplicateSKU is returned when another product already uses the SKU.
	ErrDuplicateSKU = errors.New("sku already exists")
	// ErrInvalidQuantity is returned when a negative stock or reorder level is supplied.
	ErrInvalidQuantity = errors.New("stock and reorder level must be >= 0")
	// ErrNegativeStock is returned when an adjustment would drive stock below zero.
	ErrNegativeStock = errors.New("stock cannot be negative")
)
