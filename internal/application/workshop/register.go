// Package workshop reglas de taller que corren como efectos secundarios de las
// mutaciones genéricas: consumo de repuestos, cierre de trabajos y alertas de stock.
package workshop

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Concesionario-api/internal/application/catalog"
	"github.com/jhoicas/Concesionario-api/internal/application/resource"
	"github.com/jhoicas/Concesionario-api/internal/domain/repository"
)

// Options ajustes de los hooks del taller.
type Options struct {
	LowStockThreshold int
	Now               func() time.Time
}

// Register conecta los hooks del taller al despachador.
func Register(d *resource.Dispatcher, store repository.Datastore, broadcaster resource.Broadcaster, opts Options, log zerolog.Logger) {
	reorder := NewReorderChecker(store, broadcaster, opts.LowStockThreshold, log)
	d.Register(catalog.PartsUsage, resource.OpCreate, NewPartsUsageHook(store, reorder))
	d.Register(catalog.Jobs, resource.OpUpdate, NewJobCompletionHook(store, opts.Now))
}
