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
	"postfeed/pkg/middleware"
	"postfeed/pkg/s3"
	"postfeed/pkg/telemetry"
	"postfeed/pkg/validation"
	postHTTP "postfeed/services/post/internal/controller/http"
	"postfeed/services/post/internal/repo/persistent"
	"postfeed/services/post/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "postfeed/services/post/docs" // Swagger docs
)

const serviceName = "post-service"

type App struct {
	cfg            *config.Config
	log            *logger.Logger
	db             *gorm.DB
	redisClient    *redis.Client
	s3Client       *s3.Client
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
		log.Warn("Failed to connect to redis: %v (feed cache and shared rate limits disabled)", err)
		redisClient = nil
	}

	s3Client, err := s3.NewClient(cfg, log)
	if err != nil {
		log.Error("Failed to create S3 client: %v (image uploads will fail)", err)
		s3Client = nil
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
		s3Client:       s3Client,
		jwtService:     jwt.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.ResetTokenTTL),
		tracerShutdown: tracerShutdown,
	}, nil
}

func (a *App) Run() error {
	// Initialize repositories
	postRepo := persistent.NewPostRepository(a.db)

	// A nil *s3.Client must not become a non-nil interface
	var uploader usecase.Uploader
	if a.s3Client != nil {
		uploader = a.s3Client
	}

	// Initialize use cases
	postUseCase := usecase.NewPostUseCase(postRepo, uploader, a.redisClient, a.cfg.FeedCacheTTL, a.log)

	// Initialize HTTP handlers
	postHandler := postHTTP.NewPostHandler(postUseCase, a.log)

	r := NewRouter(a.cfg, a.jwtService, a.redisClient, postHandler)

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	go func() {
		a.log.Info("Post service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

// NewRouter wires middleware and routes. Reading the feed is public; every
// mutation requires a valid access token and is rate limited per caller.
func NewRouter(cfg *config.Config, jwtService *jwt.Service, redisClient *redis.Client, postHandler *postHTTP.PostHandler) *gin.Engine {
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
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
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

	api := r.Group("/api/v1")
	{
		api.GET("/posts", postHandler.ListFeed)
		api.GET("/posts/:id", postHandler.GetPost)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(jwtService))
		protected.Use(middleware.RateLimitMiddleware(redisClient, cfg.RateLimit, cfg.RateLimitWindow))
		{
			protected.POST("/posts", postHandler.CreatePost)
			protected.PATCH("/posts/:id", postHandler.UpdatePost)
			protected.DELETE("/posts/:id", postHandler.DeletePost)
		}
	}

	return r
}

func (a *App) Wait() {
	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down post service...")
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

	// Close database connection
	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	// Close Redis connection
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	a.log.Info("Post service exited")
	_ = a.log.Sync()
	return nil
}
