// Package config loads runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures the full service configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	PostgresDSN string
	RedisURL    string

	KafkaBrokers    []string
	KafkaAuditTopic string

	RegwatchEnabled     bool
	RegwatchInterval    time.Duration
	RegwatchAuthorities []string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:          getenv("GOVERN_ADDR", ":8080"),
		JWTSigningKey: getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		RedisURL:    os.Getenv("REDIS_URL"),

		KafkaBrokers:    getList("KAFKA_BROKERS"),
		KafkaAuditTopic: getenv("KAFKA_AUDIT_TOPIC", "govern.audit"),

		RegwatchEnabled:     getenv("REGWATCH_ENABLED", "true") == "true",
		RegwatchInterval:    time.Duration(getInt("REGWATCH_INTERVAL_HOURS", 24)) * time.Hour,
		RegwatchAuthorities: getList("REGWATCH_AUTHORITIES"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
