package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkitchen/catering-backend/api/controllers"
	"github.com/mkitchen/catering-backend/api/middleware"
	"github.com/mkitchen/catering-backend/internal/cart"
	"github.com/mkitchen/catering-backend/internal/catalog"
	"github.com/mkitchen/catering-backend/internal/checkout"
	"github.com/mkitchen/catering-backend/internal/orders"
	"github.com/mkitchen/catering-backend/pkg/config"
	"github.com/mkitchen/catering-backend/pkg/db"
	"github.com/mkitchen/catering-backend/pkg/logger"
	"github.com/mkitchen/catering-backend/pkg/redis"
)

const placeOrderPath = "/place-order"

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	metricsHandler http.Handler,
	menuService catalog.Service,
	cartService cart.Service,
	checkoutService checkout.Service,
	ordersRepo *orders.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	// Typed nils would defeat the nil checks inside the middleware.
	var (
		idempotencyStore redis.IdempotencyStore
		rateStore        middleware.RateLimitStore
		readiness        = map[string]controllers.Pinger{}
	)
	if redisClient != nil {
		idempotencyStore = redisClient
		rateStore = redisClient
		readiness["redis"] = redisClient
	}
	if dbClient != nil {
		readiness["db"] = dbClient
	}

	placePolicy := middleware.NewRateLimitPolicy(
		"place-order",
		cfg.RateLimit.PlaceOrderWindow,
		cfg.RateLimit.PlaceOrderLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/menu", controllers.MenuList(menuService, logg))
		r.Get("/orders/{orderId}", controllers.OrderFetch(ordersRepo, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(cfg.Session, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(cartService, logg))
				r.Delete("/", controllers.CartClear(cartService, logg))
				r.Post("/items", controllers.CartAddItem(cartService, logg))
				r.Patch("/items/{itemId}", controllers.CartSetQuantity(cartService, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(cartService, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", controllers.CheckoutFetch(checkoutService, logg))
				r.Delete("/", controllers.CheckoutReset(checkoutService, logg))
				r.Put("/shipping", controllers.CheckoutSubmitShipping(checkoutService, logg))
				r.Put("/payment", controllers.CheckoutSubmitPayment(checkoutService, logg))
				r.Post("/back", controllers.CheckoutBack(checkoutService, logg))
				r.With(
					middleware.RateLimit(placePolicy, rateStore, logg),
					middleware.Idempotency(middleware.PlaceOrderReplayTTL, idempotencyStore, logg),
				).Post(placeOrderPath, controllers.CheckoutPlaceOrder(checkoutService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(cfg.Admin.Token, logg))
		r.Get("/orders", controllers.AdminOrdersList(ordersRepo, logg))
	})

	return r
}
