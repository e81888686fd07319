package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	ierrors "github.com/Johnnyadee/group15-simple-inventory-system/internal/errors"
	"github.com/Johnnyadee/group15-simple-inventory-system/internal/store"
	"github.com/Johnnyadee/group15-simple-inventory-system/pkg/messaging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductStore is a mock implementation of the ProductStore interface
type mockProductStore struct {
	product  store.Product
	products []store.Product
	applied  int
	path     string
	error    error
}

func (m *mockProductStore) FindByID(_ context.Context, _ int64) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	p := m.product
	return &p, nil
}

func (m *mockProductStore) FindAll(_ context.Context) ([]store.Product, error) {
	return m.products, m.error
}

func (m *mockProductStore) FindLowStock(_ context.Context) ([]store.Product, error) {
	return m.products, m.error
}

func (m *mockProductStore) Create(_ context.Context, _, _ string, _ decimal.Decimal, _, _ int, _ string) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	p := m.product
	return &p, nil
}

func (m *mockProductStore) Update(_ context.Context, _ int64, _ store.ProductPatch) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	p := m.product
	return &p, nil
}

func (m *mockProductStore) DeleteByID(_ context.Context, _ int64) error {
	return m.error
}

func (m *mockProductStore) AdjustStock(_ context.Context, _ int64, _ int) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	p := m.product
	return &p, nil
}

func (m *mockProductStore) Load(_ context.Context, _ string) error   { return m.error }
func (m *mockProductStore) Save(_ context.Context, _ string) error   { return m.error }
func (m *mockProductStore) Export(_ context.Context, _ string) error { return m.error }
func (m *mockProductStore) Import(_ context.Context, _ string) (int, error) {
	return m.applied, m.error
}
func (m *mockProductStore) Path() string { return m.path }

// capturingPublisher records every published event.
type capturingPublisher struct {
	events []messaging.Event
	error  error
}

func (p *capturingPublisher) Publish(_ context.Context, event messaging.Event) error {
	p.events = append(p.events, event)
	return p.error
}

func newTestService(repo store.ProductStore, pub messaging.Publisher) *Service {
	return NewService(repo, pub, slog.Default())
}

func Test_Service_FindByID(t *testing.T) {
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expected    *ProductDto
		expectError error
	}{
		{
			name: "Success - product found, dto carries view formatting",
			mockStore: &mockProductStore{
				product: store.Product{ID: 1, Name: "Widget", SKU: "WID-1000", Price: decimal.RequireFromString("9.9"), Stock: 1, ReorderLevel: 5},
			},
			expected: &ProductDto{
				ID: 1, Name: "Widget", SKU: "WID-1000", Supplier: "-",
				Price: "9.90", Stock: 1, ReorderLevel: 5, LowStock: true, OutOfStock: false,
			},
		},
		{
			name:        "Error - product not found",
			mockStore:   &mockProductStore{error: ierrors.ErrProductNotFound},
			expected:    nil,
			expectError: ierrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := newTestService(tc.mockStore, &capturingPublisher{})
			// when
			found, err := service.FindByID(context.Background(), 1)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, found)
		})
	}
}

func Test_Service_FindAll(t *testing.T) {
	ErrStoreError := errors.New("store error")
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expectedLen int
		expectError error
	}{
		{
			name: "Success - products found",
			mockStore: &mockProductStore{
				products: []store.Product{{ID: 1, Name: "Widget", SKU: "WID-1000"}},
			},
			expectedLen: 1,
		},
		{
			name:        "Success - no products",
			mockStore:   &mockProductStore{products: []store.Product{}},
			expectedLen: 0,
		},
		{
			name:        "Error - store error",
			mockStore:   &mockProductStore{error: ErrStoreError},
			expectError: ErrStoreError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := newTestService(tc.mockStore, &capturingPublisher{})
			// when
			found, err := service.FindAll(context.Background())
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Len(t, found, tc.expectedLen)
		})
	}
}

func Test_Service_Create_PublishesStockLowEvent(t *testing.T) {
	// given: the created product sits at its reorder level
	mockStore := &mockProductStore{
		product: store.Product{ID: 1, Name: "Widget", SKU: "WID-1000", Stock: 1, ReorderLevel: 5},
	}
	publisher := &capturingPublisher{}
	service := newTestService(mockStore, publisher)
	// when
	created, err := service.Create(context.Background(), ProductCreateDto{Name: "Widget", SKU: "WID-1000", Stock: 1, ReorderLevel: 5})
	// then
	require.NoError(t, err)
	assert.True(t, created.LowStock)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, messaging.StockLowSubject, publisher.events[0].Subject())
}

func Test_Service_Create_NoEventWhenStockIsHealthy(t *testing.T) {
	mockStore := &mockProductStore{
		product: store.Product{ID: 1, Name: "Widget", SKU: "WID-1000", Stock: 10, ReorderLevel: 5},
	}
	publisher := &capturingPublisher{}
	service := newTestService(mockStore, publisher)

	_, err := service.Create(context.Background(), ProductCreateDto{Name: "Widget", SKU: "WID-1000", Stock: 10, ReorderLevel: 5})
	require.NoError(t, err)
	assert.Empty(t, publisher.events)
}

func Test_Service_Create_PublishFailureDoesNotFailOperation(t *testing.T) {
	mockStore := &mockProductStore{
		product: store.Product{ID: 1, Name: "Widget", SKU: "WID-1000", Stock: 0, ReorderLevel: 5},
	}
	publisher := &capturingPublisher{error: errors.New("broker down")}
	service := newTestService(mockStore, publisher)

	created, err := service.Create(context.Background(), ProductCreateDto{Name: "Widget", SKU: "WID-1000"})
	require.NoError(t, err)
	assert.True(t, created.OutOfStock)
}

func Test_Service_AdjustStock(t *testing.T) {
	testCases := []struct {
		name         string
		mockStore    *mockProductStore
		expectEvents int
		expectError  error
	}{
		{
			name: "Success - adjustment leaves stock low, event published",
			mockStore: &mockProductStore{
				product: store.Product{ID: 1, SKU: "WID-1000", Stock: 2, ReorderLevel: 5},
			},
			expectEvents: 1,
		},
		{
			name: "Success - healthy stock, no event",
			mockStore: &mockProductStore{
				product: store.Product{ID: 1, SKU: "WID-1000", Stock: 11, ReorderLevel: 5},
			},
			expectEvents: 0,
		},
		{
			name:        "Error - negative stock rejected",
			mockStore:   &mockProductStore{error: ierrors.ErrNegativeStock},
			expectError: ierrors.ErrNegativeStock,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			publisher := &capturingPublisher{}
			service := newTestService(tc.mockStore, publisher)
			// when
			_, err := service.AdjustStock(context.Background(), 1, 1)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Len(t, publisher.events, tc.expectEvents)
		})
	}
}

func Test_Service_Import(t *testing.T) {
	mockStore := &mockProductStore{applied: 3}
	service := newTestService(mockStore, &capturingPublisher{})

	applied, err := service.Import(context.Background(), "somewhere.csv")
	require.NoError(t, err)
	assert.Equal(t, 3, applied)
}

func Test_Service_ActivePath(t *testing.T) {
	mockStore := &mockProductStore{path: "warehouse.csv"}
	service := newTestService(mockStore, &capturingPublisher{})
	assert.Equal(t, "warehouse.csv", service.ActivePath())
}

func Test_Service_DeleteByID(t *testing.T) {
	mockStore := &mockProductStore{error: ierrors.ErrProductNotFound}
	service := newTestService(mockStore, &capturingPublisher{})
	assert.ErrorIs(t, service.DeleteByID(context.Background(), 42), ierrors.ErrProductNotFound)
}
