package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/opkit/logger"
	"github.com/kbukum/opkit/redis"
)

// Config returns an enabled configuration pointing at mini.
func Config(mini *miniredis.Miniredis) redis.Config {
	cfg := redis.Config{Enabled: true, Addr: mini.Addr()}
	cfg.ApplyDefaults()
	return cfg
}

// NewClient starts a miniredis server and returns a client connected to it.
// Both are closed when the test ends.
func NewClient(tb testing.TB) (*redis.Client, *miniredis.Miniredis) {
	tb.Helper()
	mini := miniredis.RunT(tb)

	client, err := redis.New(Config(mini), logger.Nop())
	if err != nil {
		tb.Fatalf("failed to create redis client: %v", err)
	}
	tb.Cleanup(func() { _ = client.Close() })
	return client, mini
}
