package config

import (
	"os"
	"strconv"
	"time"
)

type AppConfig struct {
	// Server
	HTTPAddr  string
	RedisAddr string
	RedisPass string

	// Identity provider (hosted auth API)
	IdentityBaseURL string
	IdentityAPIKey  string
	IdentityJWTKey  string

	// Session
	SessionTTL       time.Duration
	SessionInitWait  time.Duration
	ValidityPoll     time.Duration
	ActivityDebounce time.Duration

	// List cache
	ListCacheTTL time.Duration

	// Admin routing
	AdminPathPrefix string
	AdminLoginPath  string
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8000"),
		RedisAddr: getEnv("REDIS_ADDR", "redis-lexsite:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),

		IdentityBaseURL: getEnv("IDENTITY_BASE_URL", "http://localhost:9999"),
		IdentityAPIKey:  getEnv("IDENTITY_API_KEY", ""),
		IdentityJWTKey:  getEnv("IDENTITY_JWT_SECRET", ""),

		SessionTTL:       getEnvDuration("SESSION_TTL", 2*time.Hour),
		SessionInitWait:  getEnvDuration("SESSION_INIT_TIMEOUT", 15*time.Second),
		ValidityPoll:     getEnvDuration("SESSION_VALIDITY_POLL", 30*time.Second),
		ActivityDebounce: getEnvDuration("SESSION_ACTIVITY_DEBOUNCE", 10*time.Minute),

		ListCacheTTL: getEnvDuration("LIST_CACHE_TTL", 5*time.Minute),

		AdminPathPrefix: getEnv("ADMIN_PATH_PREFIX", "/admin"),
		AdminLoginPath:  getEnv("ADMIN_LOGIN_PATH", "/admin/login"),
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// Plain integers are read as seconds.
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
