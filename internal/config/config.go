package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	DefaultTimezone string

	NoShowGrace     time.Duration
	NoShowInterval  time.Duration
	NoShowBatchSize int

	FeedPollInterval time.Duration
	FeedBatchSize    int
	OutboxRetention  time.Duration

	NotifierPollInterval time.Duration
	NotifierBatchSize    int
	NotifierProvider     string

	VisitorBindingTTL time.Duration

	RateLimitPerMinute           int
	RateLimitBurst               int
	RestaurantRateLimitPerMinute int
	RestaurantRateLimitBurst     int
}

func Load() Config {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	timezone := os.Getenv("DEFAULT_TIMEZONE")
	if timezone == "" {
		timezone = "Asia/Jakarta"
	}

	return Config{
		Port:            port,
		DatabaseURL:     os.Getenv("DB_DSN"),
		DefaultTimezone: timezone,

		NoShowGrace:     readDurationSeconds("NO_SHOW_GRACE_SECONDS", 600),
		NoShowInterval:  readDurationSeconds("NO_SHOW_SCAN_INTERVAL_SECONDS", 30),
		NoShowBatchSize: readInt("NO_SHOW_BATCH_SIZE", 100),

		FeedPollInterval: readDurationSeconds("FEED_POLL_INTERVAL_SECONDS", 2),
		FeedBatchSize:    readInt("FEED_BATCH_SIZE", 200),
		OutboxRetention:  readDurationSeconds("OUTBOX_RETENTION_SECONDS", 86400),

		NotifierPollInterval: readDurationSeconds("NOTIF_POLL_INTERVAL_SECONDS", 5),
		NotifierBatchSize:    readInt("NOTIF_BATCH_SIZE", 50),
		NotifierProvider:     os.Getenv("NOTIF_PROVIDER"),

		VisitorBindingTTL: readDurationSeconds("VISITOR_BINDING_TTL_SECONDS", 28800),

		RateLimitPerMinute:           readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:               readInt("RATE_LIMIT_BURST", 30),
		RestaurantRateLimitPerMinute: readInt("RESTAURANT_RATE_LIMIT_PER_MIN", 600),
		RestaurantRateLimitBurst:     readInt("RESTAURANT_RATE_LIMIT_BURST", 120),
	}
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
