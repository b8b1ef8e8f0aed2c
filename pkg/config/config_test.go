package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Concesionario-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "concesionario-api", cfg.App.Name)
	assert.Equal(t, "postgres", cfg.App.Datastore)
	assert.Equal(t, 50, cfg.Resource.DefaultLimit)
	assert.Equal(t, "super_admin", cfg.Resource.SuperRole)
	assert.Equal(t, 5, cfg.Resource.LowStockThreshold)
	assert.False(t, cfg.Resource.ExposeInternalErrors)
	assert.Equal(t, "concesionario:", cfg.Redis.ChannelPrefix)
	assert.Empty(t, cfg.Redis.Addr, "Redis desactivado por defecto")
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("DATASTORE", "memory")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RESOURCE_DEFAULT_LIMIT", "25")
	t.Setenv("RESOURCE_MAX_LIMIT", "200")
	t.Setenv("RESOURCE_EXPOSE_INTERNAL_ERRORS", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("PERMISSION_CACHE_TTL_SECONDS", "abc")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.App.Datastore)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 25, cfg.Resource.DefaultLimit)
	assert.Equal(t, 200, cfg.Resource.MaxLimit)
	assert.True(t, cfg.Resource.ExposeInternalErrors)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 60, cfg.Redis.PermissionCacheTTL, "un entero inválido usa el default")
}

func TestLoad_Errores(t *testing.T) {
	t.Setenv("DATASTORE", "mongo")
	_, err := config.Load()
	assert.ErrorContains(t, err, "DATASTORE")

	t.Setenv("DATASTORE", "memory")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err = config.Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestDBConfig_ConnectionString(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "concesionario", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/concesionario?sslmode=disable", db.ConnectionString())

	db.DatabaseURL = "postgresql://x@y/z"
	assert.Equal(t, "postgresql://x@y/z", db.ConnectionString())
}
