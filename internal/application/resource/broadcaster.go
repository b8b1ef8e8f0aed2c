package resource

import "context"

// Eventos emitidos por el motor.
const (
	EventSuffixChanged = ":changed"
	EventSuffixPurged  = ":purged"
	EventLowStock      = "inventory:low_stock"
)

// Broadcaster notifica cambios a suscriptores externos (tiempo real). Los errores
// se registran y nunca afectan la respuesta de la mutación.
type Broadcaster interface {
	Emit(ctx context.Context, event string, payload any) error
}

// NopBroadcaster descarta los eventos (cuando no hay transporte configurado).
type NopBroadcaster struct{}

func (NopBroadcaster) Emit(context.Context, string, any) error { return nil }

// ChangeEvent payload de {recurso}:changed y {recurso}:purged.
type ChangeEvent struct {
	ID     string `json:"id"`
	Action string `json:"action"`
	Data   any    `json:"data,omitempty"`
}

// Metrics contadores del motor. Implementado por infrastructure/metrics.
type Metrics interface {
	SideEffectFailed(resource string, op Operation, hook string)
	BroadcastFailed(event string)
}

type nopMetrics struct{}

func (nopMetrics) SideEffectFailed(string, Operation, string) {}
func (nopMetrics) BroadcastFailed(string)                     {}
