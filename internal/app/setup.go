// Package app contains the application setup for the inventory service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/Johnnyadee/group15-simple-inventory-system/internal/config"
	"github.com/Johnnyadee/group15-simple-inventory-system/internal/service"
	"github.com/Johnnyadee/group15-simple-inventory-system/internal/store"
	"github.com/Johnnyadee/group15-simple-inventory-system/internal/transport/rest"
	"github.com/Johnnyadee/group15-simple-inventory-system/pkg/messaging"
	"github.com/Johnnyadee/group15-simple-inventory-system/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	InventoryService service.InventoryService
	Logger           *slog.Logger
}

func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	iService := service.NewService(productStore, publisher, logger)

	return &Dependencies{
		InventoryService: iService,
		Logger:           logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the inventory service.
// Used by handler tests to exercise the full middleware chain.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the inventory service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	inventoryHandler := rest.NewHandler(deps.InventoryService, deps.Logger)
	inventoryHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the inventory service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
