package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	ierrors "github.com/Johnnyadee/group15-simple-inventory-system/internal/errors"
	"github.com/Johnnyadee/group15-simple-inventory-system/internal/sku"
	"github.com/shopspring/decimal"
)

// DefaultFileName is the fallback target for Save when no active path was ever set.
const DefaultFileName = "products.csv"

var fileHeader = []string{"id", "name", "sku", "price", "stock", "reorder_level", "supplier"}

// CsvStore implements ProductStore with an in-memory table persisted
// write-through to a comma-separated file. Every mutating operation runs
// under a single lock covering validate, mutate and persist, so callers
// never observe a half-applied mutation.
type CsvStore struct {
	mu       sync.Mutex
	products map[int64]*Product
	nextID   int64
	path     string
}

// NewCsvStore creates an empty store with no active path.
func NewCsvStore() *CsvStore {
	return &CsvStore{
		products: make(map[int64]*Product),
		nextID:   1,
	}
}

// Open establishes the active path and loads the file if it exists.
// A missing file is not an error; the store simply starts empty.
func (s *CsvStore) Open(ctx context.Context, path string) error {
	if path == "" {
		return s.Load(ctx, "")
	}
	if _, err := os.Stat(path); err == nil {
		return s.Load(ctx, path)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.path = path
	return nil
}

// Close flushes the table to the active path.
func (s *CsvStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return nil
	}
	return s.save("")
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *CsvStore) FindByID(_ context.Context, id int64) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ierrors.ErrProductNotFound
	}
	out := *p
	return &out, nil
}

// FindAll retrieves all products sorted by name, case-insensitively.
func (s *CsvStore) FindAll(_ context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(), nil
}

// FindLowStock retrieves the products at or below their reorder level.
func (s *CsvStore) FindLowStock(_ context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]Product, 0)
	for _, p := range s.sorted() {
		if p.IsLowStock() {
			list = append(list, p)
		}
	}
	return list, nil
}

// Create adds a new product and persists the table.
func (s *CsvStore) Create(_ context.Context, name, skuCode string, price decimal.Decimal, stock, reorderLevel int, supplier string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := sku.Normalize(skuCode)
	if !sku.Valid(code) {
		return nil, ierrors.ErrInvalidSKU
	}
	if stock < 0 || reorderLevel < 0 || price.IsNegative() {
		return nil, ierrors.ErrInvalidQuantity
	}
	if s.findBySKU(code) != nil {
		return nil, ierrors.ErrDuplicateSKU
	}

	p := &Product{
		ID:           s.nextID,
		Name:         strings.TrimSpace(name),
		SKU:          code,
		Price:        price,
		Stock:        stock,
		ReorderLevel: reorderLevel,
		Supplier:     strings.TrimSpace(supplier),
	}
	s.products[p.ID] = p
	s.nextID++

	if err := s.save(""); err != nil {
		delete(s.products, p.ID)
		s.nextID--
		return nil, fmt.Errorf("persist after create: %w", err)
	}
	out := *p
	return &out, nil
}

// Update applies a patch to an existing product and persists the table.
// All validations run before any field is touched, so a failed update
// leaves the product exactly as it was.
func (s *CsvStore) Update(_ context.Context, id int64, patch ProductPatch) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ierrors.ErrProductNotFound
	}

	var code string
	if patch.SKU != nil {
		code = sku.Normalize(*patch.SKU)
		if !sku.Valid(code) {
			return nil, ierrors.ErrInvalidSKU
		}
		if other := s.findBySKU(code); other != nil && other.ID != id {
			return nil, ierrors.ErrDuplicateSKU
		}
	}
	if patch.ReorderLevel != nil && *patch.ReorderLevel < 0 {
		return nil, ierrors.ErrInvalidQuantity
	}

	prev := *p
	if patch.SKU != nil {
		p.SKU = code
	}
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.ReorderLevel != nil {
		p.ReorderLevel = *patch.ReorderLevel
	}
	if patch.Supplier != nil {
		p.Supplier = strings.TrimSpace(*patch.Supplier)
	}

	if err := s.save(""); err != nil {
		*p = prev
		return nil, fmt.Errorf("persist after update: %w", err)
	}
	out := *p
	return &out, nil
}

// DeleteByID removes a product by its unique identifier and persists the table.
func (s *CsvStore) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return ierrors.ErrProductNotFound
	}
	delete(s.products, id)

	if err := s.save(""); err != nil {
		s.products[id] = p
		return fmt.Errorf("persist after delete: %w", err)
	}
	return nil
}

// AdjustStock applies a signed delta to a product's stock and persists the table.
func (s *CsvStore) AdjustStock(_ context.Context, id int64, delta int) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ierrors.ErrProductNotFound
	}
	newStock := p.Stock + delta
	if newStock < 0 {
		return nil, ierrors.ErrNegativeStock
	}

	prevStock := p.Stock
	p.Stock = newStock

	if err := s.save(""); err != nil {
		p.Stock = prevStock
		return nil, fmt.Errorf("persist after stock adjustment: %w", err)
	}
	out := *p
	return &out, nil
}

// Load replaces the in-memory table with the contents of the file at path.
// An empty path clears the table and resets the id counter to 1. An
// unreadable file behaves the same, except the active path still moves to
// the given path. Malformed rows are skipped, never fatal.
func (s *CsvStore) Load(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path == "" {
		s.reset()
		return nil
	}

	rows, err := readRows(path)
	if err != nil {
		s.reset()
		s.path = path
		return nil
	}

	s.reset()
	seen := make(map[string]struct{})
	used := make(map[int64]struct{})
	fresh := int64(1)
	var maxID int64
	for _, row := range rows {
		if row.skipped || row.badID {
			continue
		}
		p := row.product
		if _, dup := seen[p.SKU]; dup {
			continue
		}
		seen[p.SKU] = struct{}{}

		if _, taken := used[p.ID]; p.ID <= 0 || taken {
			for {
				if _, t := used[fresh]; !t {
					break
				}
				fresh++
			}
			p.ID = fresh
			fresh++
		}
		used[p.ID] = struct{}{}
		if p.ID > maxID {
			maxID = p.ID
		}
		cp := p
		s.products[cp.ID] = &cp
	}
	s.nextID = maxID + 1
	s.path = path
	return nil
}

// Save persists the table atomically: the full content goes to a temporary
// file in the target's directory, which then replaces the target in one
// rename. The target is always either the old complete content or the new
// complete content.
func (s *CsvStore) Save(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(path)
}

// Export writes a full snapshot of the table to path.
func (s *CsvStore) Export(ctx context.Context, path string) error {
	return s.Save(ctx, path)
}

// Import merges rows from the file at path into the table by SKU,
// case-insensitively: a matching row overwrites the product's fields in
// place (identifier untouched), an unknown SKU becomes a new product.
// The whole source is parsed before anything is applied, so an unreadable
// file leaves the table unchanged and reports zero applied rows. A failed
// persist restores the pre-import table the same way.
func (s *CsvStore) Import(_ context.Context, path string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readRows(path)
	if err != nil {
		return 0, fmt.Errorf("read import file: %w", err)
	}

	prev := make(map[int64]*Product, len(s.products))
	for id, p := range s.products {
		cp := *p
		prev[id] = &cp
	}
	prevNextID := s.nextID

	applied := 0
	for _, row := range rows {
		if row.skipped {
			continue
		}
		src := row.product
		if existing := s.findBySKU(src.SKU); existing != nil {
			existing.Name = src.Name
			existing.Price = src.Price
			existing.Stock = src.Stock
			existing.ReorderLevel = src.ReorderLevel
			existing.Supplier = src.Supplier
		} else {
			p := src
			p.ID = s.nextID
			s.nextID++
			s.products[p.ID] = &p
		}
		applied++
	}

	if err := s.save(""); err != nil {
		s.products = prev
		s.nextID = prevNextID
		return 0, fmt.Errorf("persist after import: %w", err)
	}
	return applied, nil
}

// Path returns the active file path.
func (s *CsvStore) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// reset clears the table and the id counter. Caller must hold the lock.
func (s *CsvStore) reset() {
	s.products = make(map[int64]*Product)
	s.nextID = 1
}

// findBySKU returns the product owning the normalized SKU, or nil.
// Caller must hold the lock.
func (s *CsvStore) findBySKU(code string) *Product {
	for _, p := range s.products {
		if p.SKU == code {
			return p
		}
	}
	return nil
}

// sorted returns a copy of the table sorted by name, case-insensitively.
// Caller must hold the lock.
func (s *CsvStore) sorted() []Product {
	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, *p)
	}
	slices.SortFunc(list, func(a, b Product) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	return list
}

// save serializes the table to the given path, falling back to the active
// path and then DefaultFileName. Caller must hold the lock.
func (s *CsvStore) save(path string) error {
	target := path
	if target == "" {
		target = s.path
	}
	if target == "" {
		target = DefaultFileName
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create target directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".products-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	if err := writeTable(tmp, s.sorted()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", target, err)
	}

	s.path = target
	return nil
}

// writeTable writes the header and one record per product.
func writeTable(w io.Writer, products []Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fileHeader); err != nil {
		return err
	}
	for _, p := range products {
		record := []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.SKU,
			p.Price.StringFixed(2),
			strconv.Itoa(p.Stock),
			strconv.Itoa(p.ReorderLevel),
			p.Supplier,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// rowResult records the fate of a single data row. Rows are never parsed
// fatally; a bad row is marked skipped with a reason so the drop stays
// debuggable without changing the external contract.
type rowResult struct {
	product Product
	skipped bool
	badID   bool
	reason  string
}

// readRows reads the delimited file header-first; the header declares
// which fields are present. Only a file that cannot be opened yields an
// error; malformed content degrades to skipped rows.
func readRows(path string) ([]rowResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	head, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	index := make(map[string]int, len(head))
	for i, col := range head {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var rows []rowResult
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rows = append(rows, rowResult{skipped: true, reason: "unparsable line"})
			continue
		}
		rows = append(rows, parseRow(record, index))
	}
	return rows, nil
}

// parseRow converts one record into a rowResult, applying the same SKU
// normalization used everywhere else. Missing numeric fields default to
// zero; unparsable or negative ones mark the row skipped.
func parseRow(record []string, index map[string]int) rowResult {
	field := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	name := field("name")
	if name == "" {
		return rowResult{skipped: true, reason: "missing name"}
	}
	code := sku.Normalize(field("sku"))
	if !sku.Valid(code) {
		return rowResult{skipped: true, reason: "invalid sku"}
	}

	price := decimal.Zero
	if raw := field("price"); raw != "" {
		p, err := decimal.NewFromString(raw)
		if err != nil || p.IsNegative() {
			return rowResult{skipped: true, reason: "bad price"}
		}
		price = p
	}

	stock, ok := parseQuantity(field("stock"))
	if !ok {
		return rowResult{skipped: true, reason: "bad stock"}
	}
	reorder, ok := parseQuantity(field("reorder_level"))
	if !ok {
		return rowResult{skipped: true, reason: "bad reorder level"}
	}

	var id int64
	badID := false
	if raw := field("id"); raw != "" {
		id, ok = parseID(raw)
		badID = !ok
	}

	return rowResult{
		product: Product{
			ID:           id,
			Name:         name,
			SKU:          code,
			Price:        price,
			Stock:        stock,
			ReorderLevel: reorder,
			Supplier:     field("supplier"),
		},
		badID: badID,
	}
}

// parseQuantity parses a non-negative integer, with "" meaning zero.
func parseQuantity(raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func parseID(raw string) (int64, bool) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
