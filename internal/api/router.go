package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/authcore/account-service/internal/api/handler"
	"github.com/authcore/account-service/internal/api/middleware"
	"github.com/authcore/account-service/internal/core/service"
	"github.com/authcore/account-service/internal/infrastructure/config"
	mongostore "github.com/authcore/account-service/internal/infrastructure/db/mongo"
	redisstore "github.com/authcore/account-service/internal/infrastructure/db/redis"
	"github.com/authcore/account-service/internal/pkg/password"
	"github.com/authcore/account-service/internal/pkg/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("accounts"))

	// --- Dependencies ---
	users := mongostore.NewUserRepository(db)
	activity := redisstore.NewActivityTracker(rdb)
	hasher := password.NewHasher(cfg.BcryptCost)
	tokens := token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	accounts := service.NewAccountService(users, hasher, tokens, activity, log)

	userHandler := handler.NewUserHandler(accounts)
	authRequired := middleware.Auth(tokens)
	adminRequired := middleware.RequireAdmin(users)

	// --- Public routes ---
	e.POST("/register", userHandler.Register)
	e.POST("/login", userHandler.Login)

	// --- Self-service routes (token required) ---
	me := e.Group("/me", authRequired)
	me.GET("", userHandler.Me)
	me.PATCH("", userHandler.UpdateMe)
	me.DELETE("", userHandler.DeleteMe)

	// --- Admin routes (token + fresh role check) ---
	admin := e.Group("/admin", authRequired, adminRequired)
	admin.GET("/users", userHandler.AdminListUsers)
	admin.DELETE("/users/:id", userHandler.AdminDeleteUser)

	// --- Observability (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandler())

	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	return e
}
