// AngelaMos | 2026
// redis_test.go

package core

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/icetruck/internal/config"
)

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.RedisConfig{
		URL:      "redis://localhost:6379/2",
		PoolSize: 7,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.GreaterOrEqual(t, opts.ConnMaxLifetime, redisConnMaxLifetime)

	_, err = redisOptions(config.RedisConfig{URL: "http://nope"})
	assert.Error(t, err)
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	r, err := NewRedis(context.Background(), config.RedisConfig{
		URL: "redis://" + mr.Addr(),
	})
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck

	require.NoError(t, r.Ping(context.Background()))
	assert.NotNil(t, r.PoolStats())

	mr.Close()
	assert.Error(t, r.Ping(context.Background()))
}

func TestNewRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), config.RedisConfig{URL: "redis://" + addr})
	assert.Error(t, err)
}
