package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dexxrat/gamestore-backend/api/controllers"
	"github.com/dexxrat/gamestore-backend/api/middleware"
	authsvc "github.com/dexxrat/gamestore-backend/internal/auth"
	cartsvc "github.com/dexxrat/gamestore-backend/internal/cart"
	"github.com/dexxrat/gamestore-backend/internal/games"
	"github.com/dexxrat/gamestore-backend/internal/orders"
	userssvc "github.com/dexxrat/gamestore-backend/internal/users"
	"github.com/dexxrat/gamestore-backend/pkg/auth/session"
	"github.com/dexxrat/gamestore-backend/pkg/config"
	"github.com/dexxrat/gamestore-backend/pkg/db"
	"github.com/dexxrat/gamestore-backend/pkg/enums"
	"github.com/dexxrat/gamestore-backend/pkg/logger"
	"github.com/dexxrat/gamestore-backend/pkg/metrics"
	"github.com/dexxrat/gamestore-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Metrics  *metrics.HTTPMetrics
	Registry *prometheus.Registry

	Auth   authsvc.Service
	Games  games.Service
	Cart   cartsvc.Service
	Orders orders.Service
	Users  userssvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUserLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	requireAdmin := middleware.RequireRole(string(enums.RoleAdmin), logg)

	var cache interface{ Ping(ctx context.Context) error }
	if deps.Redis != nil {
		cache = deps.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, cache))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.With(requireAuth).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		r.Get("/check-username/{username}", controllers.AuthCheckUsername(deps.Auth, logg))
		r.Get("/check-email/{email}", controllers.AuthCheckEmail(deps.Auth, logg))
	})

	r.Route("/api/games", func(r chi.Router) {
		r.Get("/", controllers.GamesList(deps.Games, logg))
		r.Get("/search", controllers.GamesSearch(deps.Games, logg))
		r.Get("/genre/{genre}", controllers.GamesByGenre(deps.Games, logg))
		r.Get("/platform/{platform}", controllers.GamesByPlatform(deps.Games, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Post("/", controllers.AdminGameCreate(deps.Games, logg))
			r.Put("/{id}", controllers.AdminGameUpdate(deps.Games, logg))
			r.Delete("/{id}", controllers.AdminGameDelete(deps.Games, logg))
		})

		r.Get("/{id}", controllers.GameDetail(deps.Games, logg))
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", controllers.CartFetch(deps.Cart, logg))
		r.Delete("/", controllers.CartClear(deps.Cart, logg))
		r.Get("/count", controllers.CartCount(deps.Cart, logg))
		r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
		r.Put("/items/{itemId}", controllers.CartUpdateItem(deps.Cart, logg))
		r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.Cart, logg))
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", controllers.OrdersCheckout(deps.Orders, logg))
		r.Get("/", controllers.OrdersList(deps.Orders, logg))
		r.With(requireAdmin).Get("/admin/all", controllers.AdminOrdersAll(deps.Orders, logg))
		r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
		r.With(requireAdmin).Put("/{orderId}/status", controllers.AdminOrderStatusUpdate(deps.Orders, logg))
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(requireAuth)
		r.With(requireAdmin).Get("/", controllers.UsersList(deps.Users, logg))
		r.With(requireAdmin).Get("/username/{username}", controllers.UserByUsername(deps.Users, logg))
		r.With(requireAdmin).Get("/{id}", controllers.UserDetail(deps.Users, logg))
		r.Put("/{id}", controllers.UserUpdate(deps.Users, logg))
		r.With(requireAdmin).Delete("/{id}", controllers.UserDelete(deps.Users, logg))
	})

	return r
}
