package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"tavola-rest-api/internal/handler"
	"tavola-rest-api/internal/middleware"
)

// Config holds the configuration for creating a router.
type Config struct {
	Logger           *zap.Logger
	HealthHandler    *handler.HealthHandler
	BusinessHandler  *handler.BusinessHandler
	ProductHandler   *handler.ProductHandler
	CouponHandler    *handler.CouponHandler
	OrderHandler     *handler.OrderHandler
	CustomerHandler  *handler.CustomerHandler
	DashboardHandler *handler.DashboardHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/status", func(w http.ResponseWriter, req *http.Request) {
		cfg.HealthHandler.Health(w, req)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", cfg.HealthHandler.Health)
		r.Get("/ready", cfg.HealthHandler.Ready)

		r.Route("/business", func(r chi.Router) {
			r.Get("/", cfg.BusinessHandler.Get)
			r.Put("/", cfg.BusinessHandler.Update)
			r.Post("/status", cfg.BusinessHandler.SetOpen)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", cfg.ProductHandler.List)
			r.Post("/", cfg.ProductHandler.Create)
			r.Get("/{id}", cfg.ProductHandler.Get)
			r.Put("/{id}", cfg.ProductHandler.Update)
			r.Delete("/{id}", cfg.ProductHandler.Delete)
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", cfg.CouponHandler.List)
			r.Post("/", cfg.CouponHandler.Create)
			r.Post("/validate", cfg.CouponHandler.Validate)
			r.Get("/{code}", cfg.CouponHandler.Get)
			r.Put("/{code}", cfg.CouponHandler.Update)
			r.Delete("/{code}", cfg.CouponHandler.Delete)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", cfg.OrderHandler.List)
			r.Post("/", cfg.OrderHandler.Create)
			r.Get("/{id}", cfg.OrderHandler.Get)
			r.Patch("/{id}/status", cfg.OrderHandler.UpdateStatus)
			r.Post("/{id}/pay", cfg.OrderHandler.Pay)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", cfg.CustomerHandler.Create)
			r.Get("/{id}", cfg.CustomerHandler.Get)
			r.Get("/{id}/behavior", cfg.CustomerHandler.Behavior)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", cfg.DashboardHandler.Overview)
			r.Get("/today", cfg.DashboardHandler.Today)
			r.Get("/revenue/weekly", cfg.DashboardHandler.WeeklyRevenue)
			r.Get("/sales/hourly", cfg.DashboardHandler.HourlySales)
			r.Get("/products/top", cfg.DashboardHandler.TopProducts)
			r.Get("/activity", cfg.DashboardHandler.Activity)
		})
	})

	return r
}
