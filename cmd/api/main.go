package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	httpadp "underwriting-backend/internal/adapter/http"
	"underwriting-backend/internal/adapter/notify"
	"underwriting-backend/internal/adapter/repository/mysql"
	"underwriting-backend/internal/config"
	"underwriting-backend/internal/infrastructure/blob"
	"underwriting-backend/internal/infrastructure/cache"
	"underwriting-backend/internal/infrastructure/db"
	"underwriting-backend/internal/infrastructure/logger"
	"underwriting-backend/internal/infrastructure/metrics"
	"underwriting-backend/internal/infrastructure/token"
	appuc "underwriting-backend/internal/usecase/application"
	"underwriting-backend/internal/usecase/dashboard"
	useruc "underwriting-backend/internal/usecase/user"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Init(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), cfg.DBLogLevel)
	if err != nil {
		return err
	}
	if cfg.AutoMigrate {
		if err := mysql.AutoMigrate(ctx, gdb); err != nil {
			return err
		}
	}

	m := metrics.New()
	appOpts := []appuc.Option{appuc.WithMetrics(m), appuc.WithLogger(log)}

	if cfg.MinioEndpoint != "" {
		store, err := blob.NewMinioStore(ctx, blob.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			Region:    cfg.MinioRegion,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return err
		}
		appOpts = append(appOpts, appuc.WithBlobStore(store))
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub := notify.NewKafkaPublisher(notify.KafkaConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaTopic,
			BatchTimeout: cfg.KafkaBatchTimeout(),
		}, log)
		defer pub.Close()
		appOpts = append(appOpts, appuc.WithPublisher(pub))
	}

	var rdb redis.Cmdable
	if cfg.RedisAddr != "" {
		client, err := cache.OpenRedis(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
		if err != nil {
			return err
		}
		defer client.Close()
		rdb = client
	}

	repos := mysql.Repos(gdb)
	users := mysql.NewUserRepository(gdb)
	tokens := token.NewService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL())
	pinger := mysql.NewPinger(gdb)
	dashboards := dashboard.NewUsecase(repos, users,
		dashboard.WithPinger(pinger), dashboard.WithUnderwriterSLA(cfg.UnderwriterSLA()))

	e := httpadp.NewRouter(httpadp.RouterDeps{
		Applications:   appuc.NewUsecase(repos, mysql.NewGormUoW(gdb), appOpts...),
		Dashboards:     dashboards,
		Users:          useruc.NewUsecase(users, tokens),
		Tokens:         tokens,
		DB:             pinger,
		Redis:          rdb,
		IdempotencyTTL: cfg.IdempotencyTTL(),
		Metrics:        m,
		Logger:         log,
	})

	addr := ":" + cfg.AppPort
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}
