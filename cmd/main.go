package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	contactapp "github.com/muhammadheryan/contact-manager/application/contact"
	"github.com/muhammadheryan/contact-manager/cmd/config"
	redisclient "github.com/muhammadheryan/contact-manager/cmd/redis"
	_ "github.com/muhammadheryan/contact-manager/docs"
	contactRepo "github.com/muhammadheryan/contact-manager/repository/contact"
	"github.com/muhammadheryan/contact-manager/repository/migration"
	redisRepo "github.com/muhammadheryan/contact-manager/repository/redis"
	txRepo "github.com/muhammadheryan/contact-manager/repository/tx"
	"github.com/muhammadheryan/contact-manager/thirdparty/rabbitmq"
	"github.com/muhammadheryan/contact-manager/transport"
	"github.com/muhammadheryan/contact-manager/utils/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// @title Contact Management API
// @version 1.0.0
// @description Contact Management API Documentation
// @host localhost:5000
// @BasePath /
func main() {
	// Load configuration from environment variables
	cfg := config.Load()

	// Initialize global logger
	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		// fallback to standard log if zap init fails
		panic(err)
	}
	defer logger.Close()

	logger.Info("Starting server", zap.String("env", cfg.Environment), zap.String("driver", cfg.Database.Driver))

	// Connect to database
	db, err := sqlx.Connect(cfg.Database.Driver, cfg.GetDSN())
	if err != nil {
		logger.Fatal("err connect db", zap.Error(err))
	}
	defer db.Close()

	// Set database connection pool settings
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := migration.Apply(context.Background(), db); err != nil {
		logger.Fatal("err migrate db", zap.Error(err))
	}

	// Initialize Redis client
	rdb, err := redisclient.New(cfg)
	if err != nil {
		logger.Fatal("err connect redis", zap.Error(err))
	}
	defer func() {
		_ = redisclient.Close(rdb)
	}()

	var publisher *rabbitmq.Publisher
	if cfg.RabbitMQ.Enabled {
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitMQ.Host, cfg.RabbitMQ.Port, cfg.RabbitMQ.User, cfg.RabbitMQ.Password)
		if err != nil {
			logger.Fatal("err connect rabbitmq", zap.Error(err))
		}
		defer publisher.Close()
	}

	// Initialize repositories
	ContactRepo := contactRepo.NewContactRepository(db)
	TxRepo := txRepo.NewTxRepository(db)
	RedisRepo := redisRepo.NewRepository(rdb)

	// Initialize application layers
	ContactApp := contactapp.NewContactApp(cfg, TxRepo, ContactRepo, RedisRepo, publisher)

	httpTransport := transport.NewTransport(cfg, ContactApp)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpTransport,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server running", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("failed server", zap.Error(err))
	}
}
