package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcoguerrero/cartkeeper/api/controllers"
	"github.com/marcoguerrero/cartkeeper/api/middleware"
	"github.com/marcoguerrero/cartkeeper/api/responses"
	cartsvc "github.com/marcoguerrero/cartkeeper/internal/cart"
	"github.com/marcoguerrero/cartkeeper/pkg/config"
	pkgerrors "github.com/marcoguerrero/cartkeeper/pkg/errors"
	"github.com/marcoguerrero/cartkeeper/pkg/logger"
	"github.com/marcoguerrero/cartkeeper/pkg/redis"
)

// Pinger is the readiness surface of an external dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter wires the published HTTP surface of the cart service.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	catalogueDB Pinger,
	cartService cartsvc.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w,
			pkgerrors.New(pkgerrors.CodeRouteNotFound, "no route for "+req.URL.Path))
	})

	var storePinger Pinger
	if redisClient != nil {
		storePinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/", controllers.Health(cfg))
		r.Get("/live", controllers.Health(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, storePinger, catalogueDB))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Get("/cart/{cartID}", controllers.CartFetch(cartService, logg))
	r.Delete("/cart/{cartID}", controllers.CartDelete(cartService, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit, redisClient, logg))

		r.Get("/rename/{fromID}/{toID}", controllers.CartRename(cartService, logg))
		r.Get("/add/{cartID}/{sku}/{qty}", controllers.CartAddItem(cartService, logg))
		r.Get("/update/{cartID}/{sku}/{qty}", controllers.CartUpdateItem(cartService, logg))
		r.Post("/shipping/{cartID}", controllers.CartShipping(cartService, logg))
	})

	return r
}
