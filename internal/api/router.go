package api

import (
	"context"
	"database/sql"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/citylibrary/library-service/internal/api/handler"
	"github.com/citylibrary/library-service/internal/api/middleware"
	"github.com/citylibrary/library-service/internal/core/domain"
	"github.com/citylibrary/library-service/internal/core/service"
	"github.com/citylibrary/library-service/internal/infrastructure/config"
	mongodb "github.com/citylibrary/library-service/internal/infrastructure/db/mongo"
	"github.com/citylibrary/library-service/internal/infrastructure/db/postgres"
	redisdb "github.com/citylibrary/library-service/internal/infrastructure/db/redis"
	"github.com/citylibrary/library-service/internal/infrastructure/http/handlers"
	"github.com/citylibrary/library-service/internal/infrastructure/queue"
)

// NewRouter builds the Echo instance with all routes registered and starts
// the audit writer pool. Workers stop when ctx is cancelled.
func NewRouter(ctx context.Context, cfg *config.Config, db *sql.DB, mdb *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("library"))

	// --- Repositories ---
	userRepo := postgres.NewUserRepository(db)
	bookRepo := postgres.NewBookRepository(db)
	borrowRepo := postgres.NewBorrowRepository(db)
	auditRepo := mongodb.NewAuditRepository(mdb)

	// --- Audit writer pool (best-effort, decoupled from request transactions) ---
	audit := queue.NewAuditDispatcher(cfg.AuditWorkers, auditRepo, log)
	audit.Start(ctx)

	// --- Services ---
	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authService := service.NewAuthService(userRepo, tokens, audit)
	catalogService := service.NewCatalogService(bookRepo, redisdb.NewCatalogCache(rdb), audit, log)
	borrowService := service.NewBorrowService(borrowRepo, audit, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	bookHandler := handler.NewBookHandler(catalogService)
	borrowHandler := handler.NewBorrowHandler(borrowService)
	auditHandler := handler.NewAuditHandler(auditRepo)

	authRequired := middleware.Auth(tokens, userRepo)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Catalog routes (reads open to anonymous callers) ---
	v1 := e.Group("/v1")
	v1.GET("/books", bookHandler.List)
	v1.GET("/books/:id", bookHandler.Get)
	v1.POST("/books", bookHandler.Create, authRequired, adminOnly)
	v1.POST("/books/bulk", bookHandler.BulkCreate, authRequired, adminOnly)
	v1.PATCH("/books/:id", bookHandler.Update, authRequired, adminOnly)
	v1.DELETE("/books/:id", bookHandler.Delete, authRequired, adminOnly)

	// --- Borrow workflow ---
	v1.POST("/books/:id/borrow", borrowHandler.Borrow, authRequired)
	v1.POST("/books/:id/return", borrowHandler.Return, authRequired)
	v1.GET("/borrows", borrowHandler.History, authRequired)

	// --- Audit trail ---
	v1.GET("/audit", auditHandler.List, authRequired, adminOnly)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, mdb, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
