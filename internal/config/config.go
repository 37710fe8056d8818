package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port               string
	DatabaseURL        string
	QueueNumberCeiling int
	SnapshotBuffer     int
	ClientSendBuffer   int
	RateLimitPerMinute int
	RateLimitBurst     int
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		Port:               port,
		DatabaseURL:        os.Getenv("DB_DSN"),
		QueueNumberCeiling: readInt("QUEUE_NUMBER_CEILING", 999),
		SnapshotBuffer:     readInt("SNAPSHOT_TRIGGER_BUFFER", 16),
		ClientSendBuffer:   readInt("CLIENT_SEND_BUFFER", 16),
		RateLimitPerMinute: readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:     readInt("RATE_LIMIT_BURST", 30),
	}
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
