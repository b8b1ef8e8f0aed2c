package repository

import (
	"context"

	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
	"github.com/jhoicas/Concesionario-api/internal/domain/query"
)

// Datastore es el puerto genérico de persistencia por colección usado por el motor de recursos.
// Las escrituras condicionales (UpdateWhere, DeleteWhere, Increment) se ejecutan en una sola
// sentencia: el filtro (id + alcance del tenant) y la escritura son atómicos.
type Datastore interface {
	Find(ctx context.Context, collection string, q query.Find) ([]entity.Record, error)
	// FindFirst devuelve nil, nil si ningún registro cumple el filtro.
	FindFirst(ctx context.Context, collection string, where query.Filter, include query.Include) (entity.Record, error)
	Count(ctx context.Context, collection string, where query.Filter) (int, error)
	// Create devuelve domain.ErrDuplicate ante violación de unicidad.
	Create(ctx context.Context, collection string, data entity.Record, include query.Include) (entity.Record, error)
	// UpdateWhere actualiza los registros que cumplan where y devuelve el primero.
	// Devuelve nil, nil si no hay coincidencia.
	UpdateWhere(ctx context.Context, collection string, where query.Filter, data entity.Record, include query.Include) (entity.Record, error)
	// DeleteWhere borra los registros que cumplan where y devuelve cuántos borró.
	// Devuelve domain.ErrIntegrity si otra fila aún los referencia.
	DeleteWhere(ctx context.Context, collection string, where query.Filter) (int64, error)
	// Increment suma delta a field de forma atómica (sin lectura-modificación-escritura).
	// Devuelve nil, nil si no hay coincidencia.
	Increment(ctx context.Context, collection string, where query.Filter, field string, delta any) (entity.Record, error)
}
