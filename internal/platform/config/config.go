package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	DefaultFeeBps   int64
	RateLimitPeriod time.Duration
	MaxActions      int
	BidCooldown     time.Duration

	SeedAdminID string

	OutboxRelayInterval  time.Duration
	OutboxRelayBatchSize int
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "gavel"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,

		DefaultFeeBps:   envInt64("DEFAULT_FEE_BPS", 250),
		RateLimitPeriod: envDuration("RATE_LIMIT_PERIOD", time.Hour),
		MaxActions:      int(envInt64("RATE_LIMIT_MAX_ACTIONS", 100)),
		BidCooldown:     envDuration("BID_COOLDOWN", 60*time.Second),

		SeedAdminID: os.Getenv("SEED_ADMIN_ID"),

		OutboxRelayInterval:  envDuration("OUTBOX_RELAY_INTERVAL", 2*time.Second),
		OutboxRelayBatchSize: int(envInt64("OUTBOX_RELAY_BATCH_SIZE", 100)),
	}, nil
}

func envInt64(name string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
