package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/storefront-backend/api/controllers/orders"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	products "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// redisStore is the slice of the redis client the HTTP layer touches.
type redisStore interface {
	redis.Pinger
	redis.IdempotencyStore
	redis.RateLimiter
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient redisStore,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	sessionManager sessionManager,
	authService auth.Service,
	productService products.Service,
	cartService cart.Service,
	ordersService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Logging(logg, httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    dbP,
			"redis": redisClient,
		}))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	authMW := middleware.Auth(cfg.JWT, sessionManager, logg)
	idempotency := middleware.Idempotency(redisClient, logg)

	r.Route("/api/v1/users", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit), redisClient, logg), idempotency).
			Post("/register", controllers.UsersRegister(authService, logg))
		r.With(middleware.AuthRateLimit(middleware.LoginRateLimitPolicy(cfg.AuthRateLimit), redisClient, logg)).
			Post("/login", controllers.UsersLogin(authService, logg))
		r.Post("/refresh", controllers.UsersRefresh(sessionManager, cfg.JWT, logg))
		r.Post("/logout", controllers.UsersLogout(sessionManager, cfg.JWT, logg))
		r.With(authMW).Get("/profile", controllers.UsersProfile(authService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(productService, logg))
		r.Get("/{productId}", controllers.ProductGet(productService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authMW, idempotency)
			r.Post("/", controllers.ProductCreate(productService, logg))
			r.Put("/{productId}", controllers.ProductUpdate(productService, logg))
			r.Delete("/{productId}", controllers.ProductDelete(productService, logg))
		})
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(authMW, idempotency)
		r.Get("/", cartcontrollers.CartFetch(cartService, logg))
		r.Delete("/", cartcontrollers.CartClear(cartService, logg))
		r.Post("/add", cartcontrollers.CartAddItem(cartService, logg))
		r.Put("/update", cartcontrollers.CartUpdateItem(cartService, logg))
		r.Delete("/remove", cartcontrollers.CartRemoveItem(cartService, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(authMW, idempotency)
		r.Post("/", ordercontrollers.Place(ordersService, logg))
		r.Get("/mine", ordercontrollers.ListMine(ordersService, logg))
		r.Get("/{orderId}", ordercontrollers.Detail(ordersService, logg))
	})

	return r
}
