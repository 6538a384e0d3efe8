package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration so main stays lean.
type Config struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	AccessTokenTTL time.Duration

	PostgresURL string
	Redis       RedisConfig
	Kafka       KafkaConfig

	// RetentionDays is the default auto-delete threshold in days; the
	// runtime-mutable value lives in the settings provider and only falls
	// back to this on first boot. 0 disables retention.
	RetentionDays int
	// RetentionInterval is the fixed cadence of the retention job.
	RetentionInterval time.Duration
}

// RedisConfig holds Redis connection tuning.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds audit pipeline settings. Empty Brokers disables the
// Kafka publisher and audit events stay on the in-process store.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:              envOr("FORUM_ADDR", ":8080"),
		JWTSigningKey:     envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:         envOr("JWT_ISSUER", "campusforum"),
		AccessTokenTTL:    envDuration("JWT_ACCESS_TTL", 24*time.Hour),
		PostgresURL:       os.Getenv("POSTGRES_URL"),
		RetentionDays:     envInt("FORUM_AUTO_DELETE_DAYS", 90),
		RetentionInterval: envDuration("FORUM_RETENTION_INTERVAL", 24*time.Hour),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			AuditTopic: envOr("KAFKA_AUDIT_TOPIC", "campusforum.audit"),
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}

	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
