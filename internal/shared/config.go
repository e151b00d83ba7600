package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string // empty disables the booking archive
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	LiteAPIBase string
	LiteAPIKey  string
	LiteAPIRPS  int

	PaymentPublicKey string // "sandbox" or "live"
	PublicBaseURL    string
	CookieSecure     bool

	SessionTTL   time.Duration
	CacheTTL     time.Duration
	WarmWorkers  int
	WarmHotelIDs []string
}

func Load() Config {
	// .env is optional; real environment wins over it
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:           env("APP_ENV", "prod"),
		LogLevel:         env("LOG_LEVEL", "info"),
		HTTPAddr:         env("HTTP_ADDR", ":8080"),
		MetricsAddr:      env("METRICS_ADDR", ""),
		MySQLDSN:         os.Getenv("MYSQL_DSN"),
		RedisAddr:        env("REDIS_ADDR", "localhost:6379"),
		RedisPass:        env("REDIS_PASSWORD", ""),
		RedisDB:          atoi("REDIS_DB", 0),
		LiteAPIBase:      env("LITEAPI_BASE_URL", "https://api.liteapi.travel/v3.0"),
		LiteAPIKey:       env("LITEAPI_API_KEY", ""),
		LiteAPIRPS:       atoi("LITEAPI_RPS", 5),
		PaymentPublicKey: env("PAYMENT_PUBLIC_KEY", "sandbox"),
		PublicBaseURL:    env("PUBLIC_BASE_URL", "http://localhost:5173"),
		CookieSecure:     envBool("COOKIE_SECURE", false),
		SessionTTL:       time.Duration(atoi("SESSION_TTL_SECONDS", 86400)) * time.Second,
		CacheTTL:         time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		WarmWorkers:      atoi("WARM_WORKERS", 8),
		WarmHotelIDs:     splitList(os.Getenv("WARM_HOTEL_IDS")),
	}
	if c.LiteAPIKey == "" {
		log.Warn().Msg("LITEAPI_API_KEY is empty")
	}
	if c.MySQLDSN == "" {
		log.Info().Msg("MYSQL_DSN is empty, booking archive disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// splitList parses "a, b,,c" into [a b c].
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
