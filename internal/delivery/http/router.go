package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/RaulAJaimes/eccomerce/internal/config"
	"github.com/RaulAJaimes/eccomerce/internal/delivery/http/handler"
	"github.com/RaulAJaimes/eccomerce/internal/delivery/http/middleware"
	"github.com/RaulAJaimes/eccomerce/internal/delivery/http/response"
	"github.com/RaulAJaimes/eccomerce/internal/pkg/logger"
)

// Router holds HTTP handlers and router configuration
type Router struct {
	productHandler *handler.ProductHandler
	logger         *logger.Logger
	cfg            *config.Config
}

// NewRouter creates a new HTTP router
func NewRouter(
	productHandler *handler.ProductHandler,
	cfg *config.Config,
	log *logger.Logger,
) *Router {
	return &Router{
		productHandler: productHandler,
		logger:         log,
		cfg:            cfg,
	}
}

// Setup configures and returns the HTTP router
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logger(rt.logger))
	r.Use(chimiddleware.Timeout(rt.cfg.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", rt.healthCheck)
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Post("/", rt.productHandler.Create)
			r.Get("/", rt.productHandler.List)
			r.Get("/search", rt.productHandler.Search)
			r.Get("/categories", rt.productHandler.Categories)
			r.Get("/low-stock", rt.productHandler.LowStock)
			r.Get("/top-selling", rt.productHandler.TopSelling)
			r.Get("/recent", rt.productHandler.RecentlyAdded)
			r.Get("/stats", rt.productHandler.Stats)
			r.Post("/import", rt.productHandler.Import)
			r.Get("/sku/{sku}", rt.productHandler.GetBySKU)

			r.Route("/category/{category}", func(r chi.Router) {
				r.Get("/", rt.productHandler.GetByCategory)
				r.Post("/discount", rt.productHandler.CategoryDiscount)
			})

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", rt.productHandler.GetByID)
				r.Put("/", rt.productHandler.Update)
				r.Delete("/", rt.productHandler.Delete)
				r.Put("/price", rt.productHandler.UpdatePrice)
				r.Put("/stock", rt.productHandler.SetStock)
				r.Post("/stock/reduce", rt.productHandler.ReduceStock)
				r.Post("/stock/restock", rt.productHandler.Restock)
				r.Get("/availability", rt.productHandler.Availability)
				r.Post("/activate", rt.productHandler.Activate)
				r.Post("/deactivate", rt.productHandler.Deactivate)
				r.Post("/images", rt.productHandler.AddImages)
				r.Delete("/images", rt.productHandler.RemoveImage)
			})
		})
	})

	return r
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
