package config

import (
	"os"
	"time"
)

// Config carries the environment-driven wiring for the service. Every field
// has a local-development default so the service starts against a local
// stack with no environment at all.
type Config struct {
	WorkOrderTable   string
	LaborStatusTable string

	EventStreamName    string
	RetryQueueURL      string
	DeadLetterQueueURL string

	VehicleFunctionName     string
	LaborStatusFunctionName string

	RedisAddr       string
	VehicleCacheTTL time.Duration

	HTTPPort string
}

func Load() Config {
	return Config{
		WorkOrderTable:   getenvDefault("WORKORDER_AM_TABLE", "rpp-recon-work-order"),
		LaborStatusTable: getenvDefault("LABOR_STATUS_TABLE", "rpp-recon-labor-status"),

		EventStreamName:    getenvDefault("EVENT_STREAM", "rpp-workorder-events"),
		RetryQueueURL:      os.Getenv("RETRY_QUEUE_URL"),
		DeadLetterQueueURL: os.Getenv("DEAD_LETTER_QUEUE_URL"),

		VehicleFunctionName:     getenvDefault("PFVEHICLE_FUNCTION", "rpp-find-pfvehicle"),
		LaborStatusFunctionName: getenvDefault("LABOR_STATUS_FUNCTION", "rpp-get-labor-status"),

		RedisAddr:       getenvDefault("REDIS_ADDR", "localhost:6379"),
		VehicleCacheTTL: getenvDuration("VEHICLE_CACHE_TTL", 15*time.Minute),

		HTTPPort: getenvDefault("PORT", "8080"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
