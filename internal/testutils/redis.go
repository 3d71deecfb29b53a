// Package testutils provides shared test helpers: an in-memory Redis and
// sample sheets for every form.
package testutils

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/redis"
)

// CreateTestRedisClient starts a miniredis server and returns a client for
// it. Both are closed when the test ends. The server is returned so tests
// can inspect keys or fast-forward TTLs.
func CreateTestRedisClient(t testing.TB) (redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := redis.NewClient(mr.Addr(), nil)
	require.NoError(t, err, "failed to create redis client")
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}
