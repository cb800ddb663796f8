package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要實際的 Redis，設定 WHATTOCOOK_TEST_REDIS_ADDR 才會執行
func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("WHATTOCOOK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("WHATTOCOOK_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	b, err := NewRedisBackend(ctx, RedisOptions{Addr: addr, TTL: time.Minute})
	require.NoError(t, err)
	defer b.Close()

	key := "whattocook_test:" + t.Name()
	defer b.Delete(ctx, key)

	_, err = b.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	m := NewManager(b, key)
	_, err = m.AddFavoriteRecipe(ctx, "红烧肉")
	require.NoError(t, err)

	favorites, err := m.GetFavoriteRecipes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"红烧肉"}, favorites)
}

func TestNewRedisBackend_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisBackend(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
