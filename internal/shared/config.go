package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	GoogleBase string
	GoogleKey  string
	GoogleRPS  int

	RakutenBase      string
	RakutenAppID     string
	RakutenAffiliate string
	RakutenRPS       int

	CacheBackend string // memory | redis
	RedisAddr    string
	RedisDB      int
	RedisPass    string

	StationTTL     time.Duration
	HotelTTL       time.Duration
	RequestTimeout time.Duration

	SearchRadiusM int
	MaxResults    int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),

		GoogleBase: env("GOOGLE_PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		GoogleKey:  env("GOOGLE_PLACES_API_KEY", ""),
		GoogleRPS:  atoi("GOOGLE_PLACES_RATE_LIMIT_PER_SECOND", 10),

		RakutenBase:      env("RAKUTEN_BASE_URL", "https://app.rakuten.co.jp/services/api"),
		RakutenAppID:     env("RAKUTEN_APPLICATION_ID", ""),
		RakutenAffiliate: env("RAKUTEN_AFFILIATE_ID", ""),
		RakutenRPS:       atoi("RAKUTEN_RATE_LIMIT_PER_SECOND", 5),

		CacheBackend: env("CACHE_BACKEND", "memory"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisDB:      atoi("REDIS_DB", 0),
		RedisPass:    env("REDIS_PASSWORD", ""),

		StationTTL:     time.Duration(atoi("STATION_CACHE_TTL_SECONDS", 86400)) * time.Second,
		HotelTTL:       time.Duration(atoi("HOTEL_CACHE_TTL_SECONDS", 900)) * time.Second,
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,

		SearchRadiusM: atoi("SEARCH_RADIUS_M", 800),
		MaxResults:    atoi("MAX_RESULTS", 3),
	}
	if c.GoogleKey == "" {
		log.Warn().Msg("GOOGLE_PLACES_API_KEY is empty")
	}
	if c.RakutenAppID == "" {
		log.Warn().Msg("RAKUTEN_APPLICATION_ID is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
