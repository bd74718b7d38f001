package main

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Krminfinity/hotel-recommender/internal/adapters/googleplaces"
	server "github.com/Krminfinity/hotel-recommender/internal/adapters/http_server"
	"github.com/Krminfinity/hotel-recommender/internal/adapters/observability"
	"github.com/Krminfinity/hotel-recommender/internal/adapters/rakuten"
	redisad "github.com/Krminfinity/hotel-recommender/internal/adapters/redis"
	"github.com/Krminfinity/hotel-recommender/internal/app"
	"github.com/Krminfinity/hotel-recommender/internal/cache"
	"github.com/Krminfinity/hotel-recommender/internal/domain"
	"github.com/Krminfinity/hotel-recommender/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// caches are process-wide and shared across requests
	var store domain.Cache
	if cfg.CacheBackend == "redis" {
		store = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis cache")
	} else {
		store = cache.NewMemory()
	}

	stations, err := googleplaces.New(cfg.GoogleBase, cfg.GoogleKey, cfg.GoogleRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("google places client init failed")
	}
	hotels, err := rakuten.New(cfg.RakutenBase, cfg.RakutenAppID, cfg.RakutenAffiliate, cfg.RakutenRPS, cfg.SearchRadiusM)
	if err != nil {
		log.Fatal().Err(err).Msg("rakuten client init failed")
	}

	svc := app.NewService(stations, hotels, store, cfg.StationTTL, cfg.HotelTTL, cfg.MaxResults)

	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		S:                   svc,
		GoogleConfigured:    cfg.GoogleKey != "",
		RakutenConfigured:   cfg.RakutenAppID != "",
		AffiliateConfigured: cfg.RakutenAffiliate != "",
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
