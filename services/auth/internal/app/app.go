package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postfeed/pkg/cache"
	"postfeed/pkg/config"
	"postfeed/pkg/database"
	"postfeed/pkg/jwt"
	"postfeed/pkg/logger"
	"postfeed/pkg/mailer"
	"postfeed/pkg/middleware"
	"postfeed/pkg/queue"
	"postfeed/pkg/telemetry"
	"postfeed/pkg/validation"
	authHTTP "postfeed/services/auth/internal/controller/http"
	"postfeed/services/auth/internal/repo/persistent"
	"postfeed/services/auth/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "postfeed/services/auth/docs" // Swagger docs
)

const serviceName = "auth-service"

type App struct {
	cfg            *config.Config
	log            *logger.Logger
	db             *gorm.DB
	redisClient    *redis.Client
	queueClient    *queue.Client
	jwtService     *jwt.Service
	tracerShutdown telemetry.Shutdown
	httpServer     *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()
	if cfg.Development() {
		log = logger.NewDevelopment()
	}
	log = log.With("service", serviceName)

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		// Redis only backs the shared rate limiter here
		log.Warn("Failed to connect to redis: %v (using local rate limits)", err)
		redisClient = nil
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Warn("Failed to connect to RabbitMQ: %v (reset emails will be sent directly)", err)
		queueClient = nil
	}

	tracerShutdown, err := telemetry.InitTracer(context.Background(), cfg, serviceName)
	if err != nil {
		log.Warn("Failed to init tracing: %v", err)
		tracerShutdown = func(context.Context) error { return nil }
	}

	return &App{
		cfg:            cfg,
		log:            log,
		db:             db,
		redisClient:    redisClient,
		queueClient:    queueClient,
		jwtService:     jwt.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.ResetTokenTTL),
		tracerShutdown: tracerShutdown,
	}, nil
}

func (a *App) Run() error {
	// Initialize repositories
	userRepo := persistent.NewUserRepository(a.db)

	// A nil *queue.Client must not become a non-nil interface
	var publisher usecase.TaskPublisher
	if a.queueClient != nil {
		publisher = a.queueClient
	}

	// Initialize use cases
	authUseCase := usecase.NewAuthUseCase(userRepo, a.jwtService, publisher, mailer.NewSMTPMailer(a.cfg), a.cfg.BaseURL, a.log)

	// Initialize HTTP handlers
	authHandler := authHTTP.NewAuthHandler(authUseCase, a.cfg.AccessTokenTTL, !a.cfg.Development(), a.log)

	r := NewRouter(a.cfg, a.redisClient, authHandler)

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	go func() {
		a.log.Info("Auth service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

// NewRouter wires middleware and routes. The user endpoints are public but rate limited.
func NewRouter(cfg *config.Config, redisClient *redis.Client, authHandler *authHTTP.AuthHandler) *gin.Engine {
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	validation.Register()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	users := r.Group("/api/v1/users")
	users.Use(middleware.RateLimitMiddleware(redisClient, cfg.RateLimit, cfg.RateLimitWindow))
	{
		users.POST("/register", authHandler.Register)
		users.POST("/login", authHandler.Login)
		users.POST("/forget-password", authHandler.ForgotPassword)
		users.POST("/reset-password/:id/:token", authHandler.ResetPassword)
	}

	return r
}

func (a *App) Wait() {
	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down auth service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	if err := a.tracerShutdown(ctx); err != nil {
		a.log.Error("Error flushing traces: %v", err)
	}

	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	a.log.Info("Auth service exited")
	_ = a.log.Sync()
	return nil
}
