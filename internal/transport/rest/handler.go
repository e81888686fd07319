// Package rest provides HTTP handlers for inventory operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	ierrors "github.com/Johnnyadee/group15-simple-inventory-system/internal/errors"
	"github.com/Johnnyadee/group15-simple-inventory-system/internal/service"
	"github.com/Johnnyadee/group15-simple-inventory-system/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	service  service.InventoryService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new inventory API with the provided service.
func NewHandler(service service.InventoryService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the inventory service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)
		r.Get("/low-stock", h.FindLowStock)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Patch("/", h.Update)
			r.Delete("/", h.DeleteByID)
			r.Post("/stock", h.AdjustStock)
		})
	})

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/", h.ActivePath)
		r.Post("/load", h.Load)
		r.Post("/save", h.Save)
		r.Post("/export", h.Export)
		r.Post("/import", h.Import)
	})

	r.Get("/healthz", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
}

// fileDto carries a file path for catalog operations. Load and Save accept
// an absent path; Export and Import are validated separately.
type fileDto struct {
	Path string `json:"path"`
}

type filePathRequiredDto struct {
	Path string `json:"path" validate:"required"`
}

type importResultDto struct {
	Applied int `json:"applied"`
}

type activePathDto struct {
	Path string `json:"path"`
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ierrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAll retrieves the catalog, name-sorted.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindLowStock retrieves the products at or below their reorder level.
func (h *Handler) FindLowStock(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.service.FindLowStock(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving low stock list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch low stock products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var createDto service.ProductCreateDto
	if !h.decodeAndValidate(w, r, mLogger, &createDto) {
		return
	}

	newProduct, err := h.service.Create(r.Context(), createDto)
	if err != nil {
		h.respondDomainError(w, r, mLogger, err, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "SKU", newProduct.SKU)
	web.RespondJSON(w, mLogger, http.StatusCreated, newProduct)
}

// Update applies a partial update to an existing product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var patch service.ProductUpdateDto
	if !h.decodeAndValidate(w, r, mLogger, &patch) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.respondDomainError(w, r, mLogger, err, fmt.Sprintf("Failed to update product with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "SKU", updated.SKU)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// AdjustStock applies a signed stock delta to a product.
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var adjustDto service.StockAdjustDto
	if !h.decodeAndValidate(w, r, mLogger, &adjustDto) {
		return
	}

	updated, err := h.service.AdjustStock(r.Context(), id, *adjustDto.Delta)
	if err != nil {
		h.respondDomainError(w, r, mLogger, err, fmt.Sprintf("Failed to adjust stock for product with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Stock adjusted successfully", "ID", updated.ID, "NewStock", updated.Stock)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		h.respondDomainError(w, r, mLogger, err, fmt.Sprintf("Failed to delete product with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// ActivePath reports the file path targeted by a save with no argument.
func (h *Handler) ActivePath(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, activePathDto{Path: h.service.ActivePath()})
}

// Load replaces the catalog with the contents of the given file.
// An absent path clears the catalog.
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req fileDto
	if !h.decodeAndValidate(w, r, mLogger, &req) {
		return
	}
	if err := h.service.Load(r.Context(), req.Path); err != nil {
		mLogger.ErrorContext(r.Context(), "Error loading catalog", "path", req.Path, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to load catalog")
		return
	}
	mLogger.InfoContext(r.Context(), "Catalog loaded", "path", req.Path)
	web.RespondJSON(w, mLogger, http.StatusOK, activePathDto{Path: h.service.ActivePath()})
}

// Save persists the catalog, to the active path when no path is given.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req fileDto
	if !h.decodeAndValidate(w, r, mLogger, &req) {
		return
	}
	if err := h.service.Save(r.Context(), req.Path); err != nil {
		mLogger.ErrorContext(r.Context(), "Error saving catalog", "path", req.Path, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to save catalog")
		return
	}
	mLogger.InfoContext(r.Context(), "Catalog saved", "path", h.service.ActivePath())
	web.RespondJSON(w, mLogger, http.StatusOK, activePathDto{Path: h.service.ActivePath()})
}

// Export writes a full snapshot of the catalog to the given path.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req filePathRequiredDto
	if !h.decodeAndValidate(w, r, mLogger, &req) {
		return
	}
	if err := h.service.Export(r.Context(), req.Path); err != nil {
		mLogger.ErrorContext(r.Context(), "Error exporting catalog", "path", req.Path, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to export catalog")
		return
	}
	mLogger.InfoContext(r.Context(), "Catalog exported", "path", req.Path)
	w.WriteHeader(http.StatusNoContent)
}

// Import merges rows from the given file into the catalog by SKU.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req filePathRequiredDto
	if !h.decodeAndValidate(w, r, mLogger, &req) {
		return
	}
	applied, err := h.service.Import(r.Context(), req.Path)
	if err != nil {
		mLogger.WarnContext(r.Context(), "Catalog import failed", "path", req.Path, "error", err)
		web.RespondError(w, mLogger, http.StatusUnprocessableEntity, "Failed to import catalog")
		return
	}
	mLogger.InfoContext(r.Context(), "Catalog imported", "path", req.Path, "applied", applied)
	web.RespondJSON(w, mLogger, http.StatusOK, importResultDto{Applied: applied})
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeAndValidate decodes the request body into dst and runs struct
// validation, responding with field-specific errors on failure.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondDomainError maps store sentinels to HTTP statuses: missing products
// to 404, SKU conflicts and negative-stock rejections to 409, invalid input
// to 400; anything else is a 500.
func (h *Handler) respondDomainError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, ierrors.ErrProductNotFound):
		mLogger.WarnContext(r.Context(), "Product not found", "error", err)
		web.RespondError(w, mLogger, http.StatusNotFound, "Product not found")
	case errors.Is(err, ierrors.ErrDuplicateSKU):
		mLogger.WarnContext(r.Context(), "Duplicate SKU", "error", err)
		web.RespondError(w, mLogger, http.StatusConflict, "Another product already uses this SKU")
	case errors.Is(err, ierrors.ErrNegativeStock):
		mLogger.WarnContext(r.Context(), "Stock adjustment rejected", "error", err)
		web.RespondError(w, mLogger, http.StatusConflict, "Adjustment would make stock negative")
	case errors.Is(err, ierrors.ErrInvalidSKU):
		mLogger.WarnContext(r.Context(), "Invalid SKU", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "SKU must be 4-20 chars (A-Z, 0-9, -)")
	case errors.Is(err, ierrors.ErrInvalidQuantity):
		mLogger.WarnContext(r.Context(), "Invalid quantity", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Stock and reorder level must be >= 0")
	default:
		mLogger.ErrorContext(r.Context(), fallback, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fallback)
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
