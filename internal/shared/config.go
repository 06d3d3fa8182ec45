package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	HTTPTimeout    time.Duration
	HTTPRPS        int
	HTTPBurst      int
	MetricsAddr    string
	MetricsBackend string // prometheus|redis
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	LoaderFile     string
	LoaderWorkers  int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric env value")
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		HTTPTimeout:    time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		HTTPRPS:        atoi("HTTP_RPS", 100),
		HTTPBurst:      atoi("HTTP_BURST", 200),
		MetricsAddr:    env("METRICS_ADDR", ""),
		MetricsBackend: env("METRICS_BACKEND", "prometheus"),
		MySQLDSN:       env("MYSQL_DSN", ""),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		LoaderFile:     env("LOADER_FILE", "hotels.json"),
		LoaderWorkers:  atoi("LOADER_WORKERS", 8),
	}
	if c.MySQLDSN == "" {
		log.Warn().Msg("MYSQL_DSN is empty; using the in-memory store")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
