package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Watchlist-Monitor-Backend/internal/api/middleware"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/config"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/service"
)

// Services groups the services the HTTP layer delegates to.
type Services struct {
	System *service.SystemService
	Report *service.ReportService
	Stock  *service.StockService
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(services.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
			r.Get("/jobs", systemHandler.Jobs)
		})

		r.Route("/report", func(r chi.Router) {
			reportHandler := handlers.NewReportHandler(services.Report)
			r.Group(func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Post("/generate/{uuid}", reportHandler.GenerateReport)
				r.Get("/watchlist/{uuid}", reportHandler.WatchlistReports)
				r.Get("/{uuid}", reportHandler.GetReport)
			})
		})

		r.Route("/stock", func(r chi.Router) {
			stockHandler := handlers.NewStockHandler(services.Stock)
			r.Group(func(r chi.Router) {
				r.Use(custommiddleware.ValidateTickerMiddleware)
				r.Get("/quote/{ticker}", stockHandler.Quote)
				r.Get("/history/{ticker}", stockHandler.History)
				r.Get("/performance/{ticker}", stockHandler.Performance)
			})
		})
	})

	return r
}
