package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Menu           MenuService
	Orders         OrderService
	Logger         *slog.Logger
	RequestTimeout time.Duration
	MaxBodySize    int64
}

// NewRouter wires every route behind the shared middleware stack and OpenTelemetry
// instrumentation.
func NewRouter(cfg RouterConfig) http.Handler {
	menu := NewMenuHandler(cfg.Menu, cfg.Logger, cfg.RequestTimeout, cfg.MaxBodySize)
	orders := NewOrderHandler(cfg.Orders, cfg.Logger, cfg.RequestTimeout, cfg.MaxBodySize)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(EchoRequestID)
	r.Use(AccessLog(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"message": "Restaurant API is running"})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/menu", func(r chi.Router) {
		r.Post("/", menu.Create)
		r.Get("/", menu.List)
		r.Get("/{item_id}", menu.Get)
		r.Put("/{item_id}", menu.Replace)
		r.Patch("/{item_id}", menu.Patch)
		r.Delete("/{item_id}", menu.Delete)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orders.Create)
		r.Get("/", orders.List)
		r.Get("/{order_id}", orders.Get)
		r.Put("/{order_id}", orders.Replace)
		r.Patch("/{order_id}", orders.Patch)
		r.Delete("/{order_id}", orders.Delete)
	})

	return otelhttp.NewHandler(r, "restaurant-api")
}
