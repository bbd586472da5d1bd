package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_PORT", "STORE_BACKEND", "REQUEST_TIMEOUT", "SHUTDOWN_TIMEOUT", "CACHE_TTL",
		"REDIS_ADDR", "KAFKA_BROKERS", "KAFKA_TOPIC", "AWS_REGION", "DYNAMODB_ENDPOINT",
		"DYNAMODB_ENSURE_TABLES",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.HTTPPort)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Redis.TTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "restaurant-events", cfg.Kafka.Topic)
	assert.Equal(t, "us-east-1", cfg.DynamoDB.Region)
	assert.False(t, cfg.DynamoDB.EnsureTables)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORE_BACKEND", "DynamoDB")
	t.Setenv("DYNAMODB_ENDPOINT", "http://localhost:8000")
	t.Setenv("DYNAMODB_ENSURE_TABLES", "true")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, BackendDynamoDB, cfg.StoreBackend)
	assert.Equal(t, "http://localhost:8000", cfg.DynamoDB.Endpoint)
	assert.True(t, cfg.DynamoDB.EnsureTables)
	assert.Equal(t, 2*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown backend", "STORE_BACKEND", "postgres"},
		{"bad duration", "REQUEST_TIMEOUT", "soon"},
		{"bad bool", "DYNAMODB_ENSURE_TABLES", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
