package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_PASSWORD", "secret")

	cfg := LoadConfig()
	assert.Equal(t, "cache.internal", cfg.Host)
	assert.Equal(t, "6379", cfg.Port)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "cache.internal:6379", cfg.Addr())
}

func TestNewRedisClient_NotConfigured(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, rdb)
}
