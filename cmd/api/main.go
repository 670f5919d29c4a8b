package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-bookstore/internal/auth"
	"github.com/ariefcatur/go-bookstore/internal/catalog"
	"github.com/ariefcatur/go-bookstore/internal/config"
	"github.com/ariefcatur/go-bookstore/internal/httpx"
	kafkax "github.com/ariefcatur/go-bookstore/internal/kafka"
	"github.com/ariefcatur/go-bookstore/internal/logging"
	"github.com/ariefcatur/go-bookstore/internal/orders"
	"github.com/ariefcatur/go-bookstore/internal/postgres"
	"github.com/ariefcatur/go-bookstore/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.Setup(cfg.ServiceName, cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PGMaxConns)
	if err != nil {
		logger.WithError(err).Fatal("db connect")
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		logger.WithError(err).Fatal("db migrate")
	}

	users := &auth.Repo{DB: db}
	if n, err := users.PromoteAdmins(ctx, cfg.AdminEmails); err != nil {
		logger.WithError(err).Fatal("promote admins")
	} else if n > 0 {
		logger.WithField("count", n).Info("admins promoted")
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	prod.Start(ctx)

	orderRepo := &orders.Repo{DB: db}
	placer := &orders.Service{
		Store:       &orders.PGStore{DB: db},
		Reader:      orderRepo,
		Idem:        &orders.RedisIdempotency{Redis: rdb},
		Producer:    prod,
		ServiceName: cfg.ServiceName,
		Timeout:     cfg.OrderTimeout,
		MaxAttempts: cfg.OrderMaxAttempts,
	}

	router := httpx.NewRouter(httpx.Deps{
		ServiceName: cfg.ServiceName,
		Auth:        &auth.Service{Users: users, Tokens: auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL), Admins: cfg.AdminEmails},
		Users:       users,
		Catalog:     &catalog.Repo{DB: db, Redis: rdb},
		Orders:      placer,
		OrderReader: orderRepo,
		Stats:       &orders.Stats{DB: db, Redis: rdb},
	})

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	// graceful shutdown
	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("listen")
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // no more publishes, flush what is queued
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
