package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "staybook/internal/adapters/http_server"
	"staybook/internal/adapters/liteapi"
	"staybook/internal/adapters/observability"
	redisad "staybook/internal/adapters/redis"
	"staybook/internal/app"
	"staybook/internal/domain"
	"staybook/internal/shared"
	mysqlrepo "staybook/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// archive is optional
	var archive domain.BookingArchive
	if cfg.MySQLDSN != "" {
		dsn, err := mysqlrepo.NormalizeDSN(cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid MYSQL_DSN")
		}
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		defer db.Close()
		log.Info().Msg("database connection ok")
		archive = mysqlrepo.New(db)
	}

	// deps
	client, err := liteapi.New(cfg.LiteAPIBase, cfg.LiteAPIKey, cfg.LiteAPIRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize LiteAPI client")
	}
	rdb := redisad.Connect(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rdb.Close()

	search := app.NewSearchService(client, redisad.NewCache(rdb), cfg.CacheTTL)
	booking := app.NewBookingService(client, redisad.NewSessionStore(rdb, cfg.SessionTTL), archive, app.PaymentConfig{
		PublicKey:     cfg.PaymentPublicKey,
		ReturnBaseURL: cfg.PublicBaseURL,
	})

	// http
	srv := server.New(0)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Search:  search,
		Booking: booking,
		Cookie:  server.CookieConfig{Secure: cfg.CookieSecure, MaxAge: cfg.SessionTTL},
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	// let in-flight book calls finish before exiting
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	log.Info().Msg("API stopped")
}
