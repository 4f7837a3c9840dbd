/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. Zap logger: Structured request logging
  4. CORS:       Cross-origin requests for the mobile/web frontend

ROUTE GROUPS:
  /api/{ledger}                Data entry + per-ledger listing reports
  /api/customers|suppliers|... Reference data
  /api/reports/*               Cross-ledger aggregation + reconciliation
  /api/admin/*                 Seed/reset (dev only)

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/flocio/agrisale/report"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Ledger data entry + per-ledger screens
		r.Route("/sales", func(r chi.Router) {
			r.Post("/", h.RecordSale)
			r.Get("/", h.Listing("sales"))
		})
		r.Route("/returns", func(r chi.Router) {
			r.Post("/", h.RecordReturn)
			r.Get("/", h.Listing("returns"))
		})
		r.Route("/purchases", func(r chi.Router) {
			r.Post("/", h.RecordPurchase)
			r.Get("/", h.Listing("purchases"))
		})
		r.Route("/incomes", func(r chi.Router) {
			r.Post("/", h.RecordIncome)
			r.Get("/", h.Listing("incomes"))
		})
		r.Route("/remittances", func(r chi.Router) {
			r.Post("/", h.RecordRemittance)
			r.Get("/", h.Listing("remittances"))
		})

		// Reference data
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Post("/", h.CreateCustomer)
		})
		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", h.ListSuppliers)
			r.Post("/", h.CreateSupplier)
		})
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
		})

		// Cross-ledger reports
		r.Route("/reports", func(r chi.Router) {
			r.Get("/stock-movement", h.AggregatedReport(report.StockMovement))
			r.Get("/sales-value", h.AggregatedReport(report.SalesValue))
			r.Get("/purchase-value", h.AggregatedReport(report.PurchaseValue))
			r.Get("/reconciliation/customers", h.CustomerReconciliation)
			r.Get("/reconciliation/suppliers", h.SupplierReconciliation)
		})

		// Admin (dev only)
		r.Route("/admin", func(r chi.Router) {
			r.Post("/seed", h.LoadSeed)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// requestLogger logs HTTP requests with zap.
// Warn for 4xx, Error for 5xx, Info otherwise.
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", status),
					zap.Duration("latency", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				}
				switch {
				case status >= 500:
					logger.Error("http request", fields...)
				case status >= 400:
					logger.Warn("http request", fields...)
				default:
					logger.Info("http request", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// NewLogger creates a structured zap logger. debug level gets a
// colorized console encoder; anything else gets compact JSON.
func NewLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if level == "debug" {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.Encoding = "console"
	}
	logger, err := cfg.Build()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	return logger
}
