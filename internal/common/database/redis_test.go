package database

import (
	"context"
	"testing"

	"loan-orchestrator/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, 10, client.Client.Options().PoolSize)

	mr.Close()
	assert.ErrorContains(t, client.Ping(context.Background()), "redis ping")
}
