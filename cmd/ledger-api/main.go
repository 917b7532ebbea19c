// ==============================================================================
// SALES LEDGER API - cmd/ledger-api/main.go
// ==============================================================================
package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"salesledger/internal/handler"
	"salesledger/internal/middleware"
	"salesledger/internal/query"
	"salesledger/internal/repository/memory"
	"salesledger/internal/repository/postgres"
	"salesledger/internal/seed"
	"salesledger/pkg/config"
	"salesledger/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.NewWithLevel("ledger-api", cfg.Log.Level)

	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Starting Sales Ledger API", map[string]interface{}{
		"port":  cfg.Server.Port,
		"store": cfg.Store.Driver,
	})

	store, closeStore := openStore(cfg, log)
	defer closeStore()

	service := query.NewService(store, log)
	txHandler := handler.NewTransactionHandler(service, log)

	r := mux.NewRouter()

	// Middleware
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.NewLoggingMiddleware(log).Log)

	var systemHandler *handler.SystemHandler
	if limiter := newRateLimiter(cfg, log); limiter != nil {
		defer limiter.Close()
		r.Use(limiter.Limit)
		systemHandler = handler.NewSystemHandler(service, limiter, log)
	} else {
		systemHandler = handler.NewSystemHandler(service, nil, log)
	}

	r.HandleFunc("/health", systemHandler.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", systemHandler.Ready).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/transactions", txHandler.GetTransactions).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/transactions/stats", txHandler.GetStats).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/filter-options", txHandler.GetFilterOptions).Methods(http.MethodGet, http.MethodOptions)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		log.Info("Sales ledger API started", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down sales ledger API...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Sales ledger API forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	log.Info("Sales ledger API stopped gracefully", nil)
}

// openStore connects the configured record store. The memory store is filled
// with generated sample data so the API is usable without a database.
func openStore(cfg *config.Config, log logger.Logger) (query.Store, func()) {
	if cfg.Store.Driver == config.StoreMemory {
		records := seed.Generate(cfg.Seed.Count, rand.New(rand.NewSource(time.Now().UnixNano())))
		log.Info("Using in-memory store", map[string]interface{}{"records": len(records)})
		return memory.NewTransactionRepository(records...), func() {}
	}

	db, err := sqlx.Connect(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error":  err.Error(),
			"driver": cfg.Database.Driver,
		})
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	log.Info("Database connected", map[string]interface{}{"driver": cfg.Database.Driver})

	return postgres.NewTransactionRepository(db), func() { db.Close() }
}

// newRateLimiter returns nil when rate limiting is disabled. An unreachable
// Redis is logged and tolerated; the limiter fails open.
func newRateLimiter(cfg *config.Config, log logger.Logger) *rateLimiter {
	if cfg.RateLimit.PerMinute <= 0 || cfg.Redis.URL == "" {
		log.Info("Rate limiting disabled", nil)
		return nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Warn("Redis unavailable, requests will not be rate limited until it recovers", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		log.Info("Redis connected", nil)
	}

	return &rateLimiter{
		RateLimiter: middleware.NewRateLimiter(redisClient, cfg.RateLimit.PerMinute, time.Minute, log),
		client:      redisClient,
	}
}

type rateLimiter struct {
	*middleware.RateLimiter
	client *redis.Client
}

func (l *rateLimiter) Close() {
	_ = l.client.Close()
}
