package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eion/userstore/internal/config"
	"github.com/eion/userstore/internal/health"
	"github.com/eion/userstore/internal/users"
)

// AppState holds all application services
type AppState struct {
	Logger        *zap.Logger
	Config        *config.Config
	Store         users.CollectionStore
	UserService   users.UserService
	HealthManager *health.Manager
	DB            *bun.DB
}

func main() {
	// Load configuration
	config.Load()

	logger := initLogger()
	defer logger.Sync()

	ctx := context.Background()
	as, err := newAppState(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application state", zap.Error(err))
	}

	// A broken collection is reported per request, so startup continues
	if err := as.HealthManager.StartupHealthCheck(ctx); err != nil {
		logger.Error("Startup health check failed", zap.Error(err))
	}

	router := setupRouter(as)

	addr := config.Http().Addr()
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	done := setupSignalHandler(as, server, logger)

	logger.Info("Starting userstore server",
		zap.String("address", addr),
		zap.String("storage", as.Store.Name()))

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	<-done
	logger.Info("Server shutdown complete")
}

// newAppState creates and initializes the application state
func newAppState(ctx context.Context, logger *zap.Logger) (*AppState, error) {
	as := &AppState{
		Logger:        logger,
		Config:        config.Get(),
		HealthManager: health.NewManager(logger),
	}

	storageConfig := config.Storage()
	switch storageConfig.Driver {
	case config.StorageDriverFile, "":
		logger.Info("Using file storage", zap.String("path", storageConfig.Path))
		as.Store = users.NewFileStore(storageConfig.Path)

	case config.StorageDriverPostgres:
		pgConfig := config.Postgres()
		logger.Info("Database configuration",
			zap.String("host", pgConfig.Host),
			zap.Int("port", pgConfig.Port),
			zap.String("database", pgConfig.Database),
			zap.String("user", pgConfig.User))

		db, err := users.OpenPostgres(ctx, pgConfig.DSN(), pgConfig.MaxOpenConnections)
		if err != nil {
			return nil, err
		}
		store := users.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		as.DB = db
		as.Store = store
		as.HealthManager.AddChecker(health.NewDatabaseHealthChecker(store))

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", storageConfig.Driver)
	}

	store := as.Store
	as.HealthManager.AddChecker(health.NewStorageHealthChecker(func(ctx context.Context) error {
		_, err := store.Load(ctx)
		return err
	}))

	as.UserService = users.NewUserService(as.Store)

	return as, nil
}

func initLogger() *zap.Logger {
	logConfig := config.Logger()

	var config zap.Config
	if logConfig.Format == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	switch logConfig.Level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	return logger
}

// RequestLoggingMiddleware tags every request with an id and logs its outcome
func RequestLoggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("Request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("Request rejected", fields...)
		default:
			logger.Info("Request handled", fields...)
		}
	}
}

func setupRouter(as *AppState) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(cors.Default())
	router.Use(RequestLoggingMiddleware(as.Logger))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		results := as.HealthManager.RuntimeHealthCheck(c.Request.Context())

		services := gin.H{}
		for name, err := range results {
			if err != nil {
				as.Logger.Warn("Health check failed", zap.String("service", name), zap.Error(err))
				services[name] = "unhealthy"
				continue
			}
			services[name] = "healthy"
		}

		if !as.HealthManager.Healthy(results) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"timestamp": time.Now().Format(time.RFC3339),
				"services":  services,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"services":  services,
		})
	})

	users.NewUserHandlers(as.UserService, as.Logger).RegisterRoutes(router)

	return router
}

func setupSignalHandler(as *AppState, server *http.Server, logger *zap.Logger) chan struct{} {
	done := make(chan struct{}, 1)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalCh

		logger.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during server shutdown", zap.Error(err))
		}

		if as.DB != nil {
			if err := as.DB.Close(); err != nil {
				logger.Error("Error closing database", zap.Error(err))
			}
		}

		done <- struct{}{}
	}()

	return done
}
