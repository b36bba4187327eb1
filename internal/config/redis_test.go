package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisAddrFromEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	assert.Equal(t, "localhost:6379", redisAddrFromEnv())

	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	assert.Equal(t, "redis.internal:6380", redisAddrFromEnv())

	// The explicit shorthand wins over host/port.
	t.Setenv("REDIS_ADDR", "cache.example:7000")
	assert.Equal(t, "cache.example:7000", redisAddrFromEnv())

	// Host without a port is not enough to form an address.
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_PORT", "")
	assert.Equal(t, "localhost:6379", redisAddrFromEnv())
}
