package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postfeed/pkg/config"
	"postfeed/pkg/logger"
	"postfeed/pkg/mailer"
	"postfeed/pkg/queue"
	statusHTTP "postfeed/services/mailer/internal/controller/http"
	"postfeed/services/mailer/internal/usecase"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const serviceName = "mailer-service"

// SMTP providers throttle bursts; stay well under typical limits.
const (
	sendsPerSecond = 5
	sendBurst      = 10
)

type App struct {
	cfg            *config.Config
	log            *logger.Logger
	queueClient    *queue.Client
	cancelConsumer context.CancelFunc
	httpServer     *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()
	if cfg.Development() {
		log = logger.NewDevelopment()
	}
	log = log.With("service", serviceName)

	// The queue is the only input, so there is nothing to fall back to
	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v", err)
		return nil, err
	}

	return &App{
		cfg:         cfg,
		log:         log,
		queueClient: queueClient,
	}, nil
}

func (a *App) Run() error {
	limiter := rate.NewLimiter(rate.Limit(sendsPerSecond), sendBurst)
	deliveryUseCase := usecase.NewDeliveryUseCase(mailer.NewSMTPMailer(a.cfg), limiter, a.log)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancelConsumer = cancel

	a.log.Info("Starting email queue consumer...")
	if err := a.queueClient.ConsumeEmailTasks(ctx, deliveryUseCase.Handle); err != nil {
		cancel()
		a.log.Error("Error starting email queue consumer: %v", err)
		return err
	}

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: NewRouter(a.cfg, statusHTTP.NewStatusHandler(a.queueClient, a.log)),
	}

	go func() {
		a.log.Info("Mailer service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

// NewRouter exposes health and queue depth for operators.
func NewRouter(cfg *config.Config, statusHandler *statusHTTP.StatusHandler) *gin.Engine {
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/api/v1/emails/queue", statusHandler.QueueStatus)

	return r
}

func (a *App) Wait() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down mailer service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Stop taking new deliveries first; unacked ones go back to the queue
	if a.cancelConsumer != nil {
		a.cancelConsumer()
	}

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.log.Error("Server forced to shutdown: %v", err)
			return err
		}
	}

	if err := a.queueClient.Close(); err != nil {
		a.log.Error("Error closing RabbitMQ: %v", err)
	}

	a.log.Info("Mailer service exited")
	_ = a.log.Sync()
	return nil
}
