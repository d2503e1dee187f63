package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/boltapp/marketplace-api/internal/api/handler"
	"github.com/boltapp/marketplace-api/internal/api/middleware"
	"github.com/boltapp/marketplace-api/internal/core/domain"
	"github.com/boltapp/marketplace-api/internal/core/ports"
	"github.com/boltapp/marketplace-api/internal/core/service"
	"github.com/boltapp/marketplace-api/internal/infrastructure/config"
	mongostore "github.com/boltapp/marketplace-api/internal/infrastructure/db/mongo"
	redisstore "github.com/boltapp/marketplace-api/internal/infrastructure/db/redis"
	"github.com/boltapp/marketplace-api/internal/token"
)

// NewRouter builds the Echo instance with every route registered. Repos and
// services are wired here; the caller owns the external connections and the
// notification dispatcher.
func NewRouter(
	cfg *config.Config,
	db *mongo.Database,
	rdb *redis.Client,
	codec *token.Codec,
	notifier ports.Notifier,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log, cfg.Env == "development")

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("marketplace"))

	// --- Dependencies ---
	userRepo := redisstore.NewCachedUserRepository(mongostore.NewUserRepository(db), rdb)
	listingRepo := mongostore.NewListingRepository(db)
	requestRepo := mongostore.NewRequestRepository(db)
	bookingRepo := mongostore.NewBookingRepository(db)

	hasher := service.NewPasswordHasher(cfg.Auth.BcryptCost)
	authService := service.NewAuthService(userRepo, codec, hasher, notifier, log)
	listingService := service.NewListingService(listingRepo, log)
	requestService := service.NewRequestService(requestRepo, log)
	bookingService := service.NewBookingService(bookingRepo, requestRepo, userRepo, notifier, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)
	listingHandler := handler.NewListingHandler(listingService)
	requestHandler := handler.NewRequestHandler(requestService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	healthHandler := handler.NewHealthHandler(db, rdb)

	authn := middleware.Authenticate(codec, authService, log)
	optionalAuthn := middleware.OptionalAuthenticate(codec, authService)

	// --- Operational routes ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/api-docs/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	// --- Auth ---
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/verify-email", authHandler.VerifyEmail)
	auth.POST("/password-reset/request", authHandler.RequestPasswordReset)
	auth.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)

	// --- Users ---
	users := v1.Group("/users", authn)
	users.GET("/me", userHandler.Me)
	users.PUT("/me/password", userHandler.ChangePassword)
	users.GET("/:id", userHandler.Get, middleware.RequireOwnership(log, "id"))
	users.PUT("/:id", userHandler.Update, middleware.RequireOwnership(log, "id"))

	// --- Listings (browse is public) ---
	v1.GET("/listings", listingHandler.List, optionalAuthn)
	v1.GET("/listings/:id", listingHandler.Get, optionalAuthn)
	v1.POST("/listings", listingHandler.Create, authn,
		middleware.RequireRoles(log, domain.RoleProfessional, domain.RoleAdmin),
		middleware.RequireVerifiedEmail(log))
	v1.PUT("/listings/:id", listingHandler.Update, authn)
	v1.DELETE("/listings/:id", listingHandler.Delete, authn)

	// --- Service requests & proposals ---
	v1.GET("/requests", requestHandler.List, authn)
	v1.GET("/requests/:id", requestHandler.Get, authn)
	v1.POST("/requests", requestHandler.Create, authn,
		middleware.RequireRoles(log, domain.RoleClient, domain.RoleAdmin),
		middleware.RequireVerifiedEmail(log))
	v1.POST("/requests/:id/proposals", requestHandler.SubmitProposal, authn,
		middleware.RequireRoles(log, domain.RoleProfessional),
		middleware.RequireVerifiedEmail(log))
	v1.GET("/requests/:id/proposals", requestHandler.ListProposals, authn)

	// --- Bookings ---
	v1.POST("/proposals/:id/accept", bookingHandler.AcceptProposal, authn,
		middleware.RequireRoles(log, domain.RoleClient, domain.RoleAdmin))
	v1.GET("/bookings", bookingHandler.List, authn)
	v1.GET("/bookings/:id", bookingHandler.Get, authn)
	v1.PUT("/bookings/:id/status", bookingHandler.UpdateStatus, authn)

	return e
}
