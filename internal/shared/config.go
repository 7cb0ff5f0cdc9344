package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv      string `yaml:"app_env"`
	LogLevel    string `yaml:"log_level"`
	HTTPAddr    string `yaml:"http_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	StoreDriver string `yaml:"store_driver"` // sqlite|mysql|redis
	SQLitePath  string `yaml:"sqlite_path"`
	MySQLDSN    string `yaml:"mysql_dsn"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisDB     int    `yaml:"redis_db"`
	RedisPass   string `yaml:"redis_password"`

	GeminiBase  string `yaml:"gemini_base_url"`
	GeminiKey   string `yaml:"gemini_api_key"`
	GeminiModel string `yaml:"gemini_model"`
	GeminiRPS   int    `yaml:"gemini_rps"`

	CacheDriver          string        `yaml:"cache_driver"` // store|redis|none
	SuggestCacheTTL      time.Duration `yaml:"-"`
	SuggestCacheSeconds  int           `yaml:"suggest_cache_ttl_seconds"`
	PrefetchWorkers      int           `yaml:"prefetch_workers"`
	PrefetchDestinations []string      `yaml:"prefetch_destinations"`
}

func defaults() Config {
	return Config{
		AppEnv:              "prod",
		LogLevel:            "info",
		HTTPAddr:            ":8080",
		MetricsAddr:         "",
		StoreDriver:         "sqlite",
		SQLitePath:          "data/planner.db",
		MySQLDSN:            "root:root@tcp(localhost:3306)/planner?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		RedisAddr:           "localhost:6379",
		GeminiBase:          "https://generativelanguage.googleapis.com/v1beta",
		GeminiModel:         "gemini-2.0-flash",
		GeminiRPS:           2,
		CacheDriver:         "store",
		SuggestCacheSeconds: 7 * 24 * 3600,
		PrefetchWorkers:     4,
	}
}

// Load reads PLANNER_CONFIG (YAML) when set, then lets environment variables override it.
func Load() Config {
	c := defaults()
	if path := os.Getenv("PLANNER_CONFIG"); path != "" {
		if err := loadFile(path, &c); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("config file ignored")
		}
	}

	c.AppEnv = env("APP_ENV", c.AppEnv)
	c.LogLevel = env("LOG_LEVEL", c.LogLevel)
	c.HTTPAddr = env("HTTP_ADDR", c.HTTPAddr)
	c.MetricsAddr = env("METRICS_ADDR", c.MetricsAddr)
	c.StoreDriver = strings.ToLower(env("STORE_DRIVER", c.StoreDriver))
	c.SQLitePath = env("SQLITE_PATH", c.SQLitePath)
	c.MySQLDSN = env("MYSQL_DSN", c.MySQLDSN)
	c.RedisAddr = env("REDIS_ADDR", c.RedisAddr)
	c.RedisPass = env("REDIS_PASSWORD", c.RedisPass)
	c.RedisDB = atoi("REDIS_DB", c.RedisDB)
	c.GeminiBase = env("GEMINI_BASE_URL", c.GeminiBase)
	c.GeminiKey = env("GEMINI_API_KEY", c.GeminiKey)
	c.GeminiModel = env("GEMINI_MODEL", c.GeminiModel)
	c.GeminiRPS = atoi("GEMINI_RPS", c.GeminiRPS)
	c.CacheDriver = strings.ToLower(env("CACHE_DRIVER", c.CacheDriver))
	c.SuggestCacheSeconds = atoi("SUGGEST_CACHE_TTL_SECONDS", c.SuggestCacheSeconds)
	c.PrefetchWorkers = atoi("PREFETCH_WORKERS", c.PrefetchWorkers)
	if v := os.Getenv("PREFETCH_DESTINATIONS"); v != "" {
		c.PrefetchDestinations = splitList(v)
	}
	c.SuggestCacheTTL = time.Duration(c.SuggestCacheSeconds) * time.Second

	if c.GeminiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is empty; suggestions and AI plans are disabled")
	}
	return c
}

func loadFile(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
