// Package sku validates and normalizes stock keeping unit codes.
package sku

import (
	"regexp"
	"strings"
)

// pattern accepts 4-20 characters: uppercase letters, digits, hyphen.
var pattern = regexp.MustCompile(`^[A-Z0-9-]{4,20}$`)

// Normalize trims surrounding whitespace and upper-cases the code.
// The same normalization is applied everywhere a SKU is accepted, so
// persisted and freshly entered SKUs compare equal.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether the normalized code is a well-formed SKU.
// An empty code is never valid.
func Valid(code string) bool {
	return pattern.MatchString(Normalize(code))
}
