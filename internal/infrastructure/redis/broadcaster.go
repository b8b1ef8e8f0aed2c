package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/jhoicas/Concesionario-api/internal/application/resource"
)

var _ resource.Broadcaster = (*Broadcaster)(nil)

// Message sobre publicado en el canal {prefijo}{evento}.
type Message struct {
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	EmittedAt time.Time       `json:"emittedAt"`
}

// Broadcaster publica los eventos del motor en Redis pub/sub. Tras 5 fallas
// seguidas el circuito se abre y los eventos se descartan sin tocar Redis
// durante 30s.
type Broadcaster struct {
	client *goredis.Client
	prefix string
	cb     *gobreaker.CircuitBreaker[int64]
	now    func() time.Time
}

// NewBroadcaster construye el adaptador. prefix se antepone al nombre del evento.
func NewBroadcaster(client *goredis.Client, prefix string, log zerolog.Logger) *Broadcaster {
	cb := gobreaker.NewCircuitBreaker[int64](gobreaker.Settings{
		Name:        "redis-broadcast",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("cambio de estado del circuito")
		},
	})
	return &Broadcaster{client: client, prefix: prefix, cb: cb, now: time.Now}
}

// Channel nombre del canal para un evento.
func (b *Broadcaster) Channel(event string) string {
	return b.prefix + event
}

// Emit publica payload como JSON dentro de un Message.
func (b *Broadcaster) Emit(ctx context.Context, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serializar evento %s: %w", event, err)
	}
	msg, err := json.Marshal(Message{Event: event, Payload: raw, EmittedAt: b.now().UTC()})
	if err != nil {
		return fmt.Errorf("serializar evento %s: %w", event, err)
	}
	_, err = b.cb.Execute(func() (int64, error) {
		return b.client.Publish(ctx, b.Channel(event), msg).Result()
	})
	if err != nil {
		return fmt.Errorf("publicar %s: %w", event, err)
	}
	return nil
}
