package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appredis "github.com/jhoicas/Concesionario-api/internal/infrastructure/redis"
)

type countingStore struct {
	calls int
	grant bool
	err   error
}

func (s *countingStore) RoleHasPermission(context.Context, string, string) (bool, error) {
	s.calls++
	return s.grant, s.err
}

func TestPermissionCache_ReadThrough(t *testing.T) {
	mr, client := newClient(t)
	store := &countingStore{grant: true}
	cache := appredis.NewPermissionCache(client, store, time.Minute, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := cache.RoleHasPermission(ctx, "sales", "customers:read")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 1, store.calls, "solo la primera consulta debe llegar al almacén")

	mr.FastForward(2 * time.Minute)
	_, err := cache.RoleHasPermission(ctx, "sales", "customers:read")
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls, "al expirar el TTL se vuelve a consultar")
}

func TestPermissionCache_CacheaNegativos(t *testing.T) {
	_, client := newClient(t)
	store := &countingStore{grant: false}
	cache := appredis.NewPermissionCache(client, store, time.Minute, zerolog.Nop())

	for i := 0; i < 2; i++ {
		ok, err := cache.RoleHasPermission(context.Background(), "sales", "customers:delete")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, 1, store.calls)
}

func TestPermissionCache_ErrorDelAlmacenNoSeCachea(t *testing.T) {
	_, client := newClient(t)
	store := &countingStore{err: errors.New("db caída")}
	cache := appredis.NewPermissionCache(client, store, time.Minute, zerolog.Nop())

	_, err := cache.RoleHasPermission(context.Background(), "sales", "customers:read")
	require.Error(t, err)

	store.err, store.grant = nil, true
	ok, err := cache.RoleHasPermission(context.Background(), "sales", "customers:read")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, store.calls)
}

func TestPermissionCache_RedisCaidoConsultaAlmacen(t *testing.T) {
	mr, client := newClient(t)
	store := &countingStore{grant: true}
	cache := appredis.NewPermissionCache(client, store, time.Minute, zerolog.Nop())
	mr.Close()

	ok, err := cache.RoleHasPermission(context.Background(), "sales", "customers:read")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPermissionCache_Invalidate(t *testing.T) {
	_, client := newClient(t)
	store := &countingStore{grant: true}
	cache := appredis.NewPermissionCache(client, store, time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, err := cache.RoleHasPermission(ctx, "sales", "customers:read")
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx, "sales"))
	_, err = cache.RoleHasPermission(ctx, "sales", "customers:read")
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}
