package resource

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
	"github.com/rs/zerolog"
)

// MutationEvent mutación confirmada que dispara efectos secundarios.
// Before es nil en create; After es nil en delete.
type MutationEvent struct {
	Resource  string
	Operation Operation
	User      entity.ActingUser
	Before    entity.Record
	After     entity.Record
}

// SideEffectHandler regla de dominio auxiliar registrada por recurso y operación.
// Un error devuelto se registra; nunca revierte ni falla la mutación principal.
type SideEffectHandler interface {
	Name() string
	Handle(ctx context.Context, ev MutationEvent) error
}

type hookKey struct {
	resource string
	op       Operation
}

// Dispatcher tabla recurso/operación -> handlers. Agregar un recurso es registrar
// un handler nuevo, no editar una función compartida.
type Dispatcher struct {
	log      zerolog.Logger
	metrics  Metrics
	handlers map[hookKey][]SideEffectHandler
}

// NewDispatcher construye el despachador. metrics puede ser nil.
func NewDispatcher(log zerolog.Logger, metrics Metrics) *Dispatcher {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Dispatcher{log: log, metrics: metrics, handlers: make(map[hookKey][]SideEffectHandler)}
}

// Register agrega h para (resource, op). Solo durante el arranque.
func (d *Dispatcher) Register(resource string, op Operation, h SideEffectHandler) {
	k := hookKey{resource: resource, op: op}
	d.handlers[k] = append(d.handlers[k], h)
}

// Has indica si hay handlers para (resource, op).
func (d *Dispatcher) Has(resource string, op Operation) bool {
	return len(d.handlers[hookKey{resource: resource, op: op}]) > 0
}

// Dispatch ejecuta los handlers en orden, cada uno aislado: errores y pánicos se registran.
func (d *Dispatcher) Dispatch(ctx context.Context, ev MutationEvent) {
	for _, h := range d.handlers[hookKey{resource: ev.Resource, op: ev.Operation}] {
		if err := Guard(func() error { return h.Handle(ctx, ev) }); err != nil {
			d.metrics.SideEffectFailed(ev.Resource, ev.Operation, h.Name())
			d.log.Error().Err(err).
				Str("resource", ev.Resource).
				Str("operation", string(ev.Operation)).
				Str("hook", h.Name()).
				Msg("efecto secundario fallido")
		}
	}
}

// Guard ejecuta fn convirtiendo un pánico en error.
func Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pánico en efecto secundario: %v\n%s", r, debug.Stack())
		}
	}()
	return fn()
}
