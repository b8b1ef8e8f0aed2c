package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Concesionario-api/internal/application/resource"
	appredis "github.com/jhoicas/Concesionario-api/internal/infrastructure/redis"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestBroadcaster_PublicaEnCanalConPrefijo(t *testing.T) {
	_, client := newClient(t)
	ctx := context.Background()
	b := appredis.NewBroadcaster(client, "test:", zerolog.Nop())

	sub := client.Subscribe(ctx, "test:customers:changed")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err, "la suscripción debe confirmarse")

	err = b.Emit(ctx, "customers"+resource.EventSuffixChanged, resource.ChangeEvent{ID: "c1", Action: "create"})
	require.NoError(t, err)

	select {
	case m := <-sub.Channel():
		var msg appredis.Message
		require.NoError(t, json.Unmarshal([]byte(m.Payload), &msg))
		assert.Equal(t, "customers:changed", msg.Event)
		assert.JSONEq(t, `{"id":"c1","action":"create"}`, string(msg.Payload))
		assert.False(t, msg.EmittedAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó el mensaje publicado")
	}
}

func TestBroadcaster_CircuitoSeAbreConRedisCaido(t *testing.T) {
	mr, client := newClient(t)
	b := appredis.NewBroadcaster(client, "test:", zerolog.Nop())
	mr.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		err := b.Emit(ctx, "jobs:changed", map[string]string{"id": "j1"})
		require.Error(t, err)
	}
	err := b.Emit(ctx, "jobs:changed", map[string]string{"id": "j1"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState, "tras 5 fallas el circuito debe estar abierto")
}
