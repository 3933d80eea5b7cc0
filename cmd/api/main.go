package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "renthub/internal/adapters/http_server"
	"renthub/internal/adapters/mailer"
	"renthub/internal/adapters/observability"
	redisad "renthub/internal/adapters/redis"
	"renthub/internal/app"
	"renthub/internal/domain"
	"renthub/internal/shared"
	mysqlrepo "renthub/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve(cfg.MetricsAddr)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	var mail domain.Mailer
	if cfg.MailKey != "" {
		m, err := mailer.New(cfg.MailBase, cfg.MailKey, cfg.MailRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize mail client")
		}
		mail = m
	}

	h := &server.Handlers{
		Auth:     app.NewAuthService(repo),
		Listings: app.NewListingService(repo),
		Ratings:  app.NewRatingService(repo, cache),
		Rentals:  app.NewRentalService(repo, mail),
		Q:        app.NewQueryService(repo, cache, cfg.CacheTTL),
	}

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
