package app

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestNewRedisPings(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedis(context.Background(), "redis://"+mr.Addr()+"/0", false, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	mr.CheckGet(t, "k", "v")
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "://nope", false, nil)
	require.ErrorContains(t, err, "parse redis url")
}

func TestTaskRedisOpt(t *testing.T) {
	opt, err := TaskRedisOpt("redis://localhost:6379/2")
	require.NoError(t, err)
	require.NotNil(t, opt)

	_, err = TaskRedisOpt("http://localhost")
	require.Error(t, err)
}
