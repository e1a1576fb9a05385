package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pizzeria/api/controllers"
	ordercontrollers "github.com/angelmondragon/pizzeria/api/controllers/orders"
	storefrontcontrollers "github.com/angelmondragon/pizzeria/api/controllers/storefront"
	"github.com/angelmondragon/pizzeria/api/middleware"
	"github.com/angelmondragon/pizzeria/api/responses"
	"github.com/angelmondragon/pizzeria/internal/catalog"
	"github.com/angelmondragon/pizzeria/internal/orders"
	"github.com/angelmondragon/pizzeria/internal/storefront"
	"github.com/angelmondragon/pizzeria/pkg/config"
	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
	"github.com/angelmondragon/pizzeria/pkg/logger"
	"github.com/angelmondragon/pizzeria/pkg/redis"
)

// Deps are the collaborators the router wires into handlers. Redis, Orders
// and Metrics are optional.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *redis.Client
	Catalog  catalog.Source
	Orders   *orders.Service
	Sessions *storefront.Registry
	Metrics  http.Handler
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins...),
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})

	var (
		idempotency = middleware.Idempotency(nil, 0, logg)
		orderLimit  = middleware.RateLimit(middleware.RateLimitPolicy{}, nil, logg)
		readiness   = map[string]controllers.Pinger{"db": d.DB, "redis": nil}
	)
	if d.Redis != nil {
		idempotency = middleware.Idempotency(d.Redis, cfg.Orders.IdempotencyTTL, logg)
		orderLimit = middleware.RateLimit(
			middleware.NewRateLimitPolicy("orders", cfg.Orders.RateLimitWindow, cfg.Orders.RateLimitPerIP),
			d.Redis,
			logg,
		)
		readiness["redis"] = d.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, readiness))
	})

	r.Get("/api/public/ping", controllers.PublicPing())

	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	r.Get("/product", controllers.ListProducts(d.Catalog, logg))
	r.Get("/product/{productId}", controllers.GetProduct(d.Catalog, logg))

	// the order endpoints only exist when this process is the backend
	if d.Orders != nil {
		r.With(orderLimit, idempotency).Post("/order", ordercontrollers.Place(d.Orders, logg))
		r.Get("/order/{orderId}", ordercontrollers.Detail(d.Orders, logg))
	}

	r.Route("/api/v1/storefront", func(r chi.Router) {
		r.Use(middleware.Session(d.Sessions, logg))

		r.Get("/menu", storefrontcontrollers.Menu(logg))
		r.Route("/menu/{productId}", func(r chi.Router) {
			r.Get("/", storefrontcontrollers.Item(logg))
			r.Put("/options", storefrontcontrollers.SetOptions(logg))
			r.Put("/amount", storefrontcontrollers.SetAmount(logg))
			r.Post("/cart", storefrontcontrollers.AddToCart(logg))
			r.Post("/toggle", storefrontcontrollers.Toggle(logg))
		})

		r.Get("/cart", storefrontcontrollers.Cart(logg))
		r.Put("/cart/lines/{lineId}/amount", storefrontcontrollers.SetLineAmount(logg))
		r.Delete("/cart/lines/{lineId}", storefrontcontrollers.RemoveLine(logg))
		r.With(orderLimit, idempotency).Post("/cart/order", storefrontcontrollers.PlaceOrder(logg))
	})

	return r
}
