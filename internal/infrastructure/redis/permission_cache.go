package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Concesionario-api/internal/domain/repository"
)

var _ repository.PermissionRepository = (*PermissionCache)(nil)

const permissionKeyPrefix = "perm:"

// PermissionCache caché read-through delante del almacén de permisos. Si Redis
// falla se consulta el almacén; si el almacén falla el error se propaga (el
// autorizador niega).
type PermissionCache struct {
	client *goredis.Client
	next   repository.PermissionRepository
	ttl    time.Duration
	log    zerolog.Logger
}

// NewPermissionCache envuelve next con una caché de ttl.
func NewPermissionCache(client *goredis.Client, next repository.PermissionRepository, ttl time.Duration, log zerolog.Logger) *PermissionCache {
	return &PermissionCache{client: client, next: next, ttl: ttl, log: log}
}

func (c *PermissionCache) RoleHasPermission(ctx context.Context, role, permission string) (bool, error) {
	key := permissionKeyPrefix + role + ":" + permission
	v, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return v == "1", nil
	case !errors.Is(err, goredis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("caché de permisos no disponible")
	}

	ok, err := c.next.RoleHasPermission(ctx, role, permission)
	if err != nil {
		return false, err
	}
	val := "0"
	if ok {
		val = "1"
	}
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar permiso en caché")
	}
	return ok, nil
}

// Invalidate borra las entradas cacheadas de un rol (tras cambiar sus permisos).
func (c *PermissionCache) Invalidate(ctx context.Context, role string) error {
	iter := c.client.Scan(ctx, 0, permissionKeyPrefix+role+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
