package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret     string
	JWTTTL        time.Duration
	AdminUsername string

	RoundSeconds       int
	TickInterval       time.Duration
	LeaderboardSize    int
	SessionTTL         time.Duration
	CatalogCacheTTL    time.Duration
	RateLimitPerMinute int

	AllowedOrigin     string
	RevealDifferences bool

	LogLevel string
	LogJSON  bool
}

// Load читает .env (если есть) и переменные окружения
func Load() *Config {
	// .env необязателен, в проде всё приходит из окружения
	_ = godotenv.Load()

	return &Config{
		AppPort:     getEnv("APP_PORT", "5000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        getDuration("JWT_TTL", time.Hour),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),

		RoundSeconds:       getInt("ROUND_SECONDS", 60),
		TickInterval:       getDuration("TICK_INTERVAL", time.Second),
		LeaderboardSize:    getInt("LEADERBOARD_SIZE", 10),
		SessionTTL:         getDuration("SESSION_TTL", time.Hour),
		CatalogCacheTTL:    getDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 120),

		AllowedOrigin:     os.Getenv("ALLOWED_ORIGIN"),
		RevealDifferences: getBool("REVEAL_DIFFERENCES", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_FORMAT") == "json",
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
