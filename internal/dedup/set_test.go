package dedup

import (
	"context"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestHashSets(t *testing.T) {
	_, client := newTestRedis(t)

	sets := map[string]HashSet{
		"memory": NewMemorySet(),
		"redis":  NewRedisSet(client, ""),
	}

	for name, set := range sets {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			ok, err := set.Contains(ctx, "a")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, set.Add(ctx, "a", "b", "a"))
			require.NoError(t, set.Add(ctx))

			ok, err = set.Contains(ctx, "a")
			require.NoError(t, err)
			assert.True(t, ok)

			n, err := set.Len(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			members, err := set.Members(ctx)
			require.NoError(t, err)
			sort.Strings(members)
			assert.Equal(t, []string{"a", "b"}, members)
		})
	}
}

func TestRedisSetSharedAcrossEngines(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	set := NewRedisSet(client, "test:leads")
	require.NoError(t, set.Ping(ctx))

	first := NewEngine(Options{Set: set})
	require.NoError(t, first.Add(ctx, jennifer()))

	second := NewEngine(Options{Set: NewRedisSet(client, "test:leads")})
	dup, err := second.IsDuplicate(ctx, jennifer())
	require.NoError(t, err)
	assert.True(t, dup)

	members, err := mr.Members("test:leads")
	require.NoError(t, err)
	assert.Equal(t, []string{ProspectHash(jennifer())}, members)
}

func TestRedisSetErrors(t *testing.T) {
	mr, client := newTestRedis(t)
	set := NewRedisSet(client, "")
	mr.Close()

	_, err := set.Contains(context.Background(), "a")
	assert.Error(t, err)
	assert.Error(t, set.Ping(context.Background()))
}
