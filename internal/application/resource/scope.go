package resource

import (
	"strings"

	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
	"github.com/jhoicas/Concesionario-api/internal/domain/query"
)

// BuildScopeFilter traduce ScopeBy al filtro de tenant del usuario.
//
//	""                  -> sin restricción
//	"dealer_id"         -> {dealer_id = tenant}
//	"profile.dealer_id" -> existe profile relacionado con {dealer_id = tenant}
//
// Usuarios de plataforma (sin DealerID) no tienen restricción.
func BuildScopeFilter(cfg EntityConfig, user *entity.ActingUser) query.Filter {
	if cfg.ScopeBy == "" || user.IsPlatform() {
		return query.Filter{}
	}
	return query.Filter{scopePredicate(strings.Split(cfg.ScopeBy, "."), user.DealerID)}
}

func scopePredicate(path []string, tenantID string) query.Predicate {
	if len(path) == 1 {
		return query.Eq{Field: path[0], Value: tenantID}
	}
	return query.Related{
		Relation: path[0],
		Filter:   query.Filter{scopePredicate(path[1:], tenantID)},
	}
}

// TenantField columna directa de tenant que se inyecta al crear. Las rutas con
// puntos no se inyectan: escribir a través de una relación requeriría una
// escritura anidada explícita.
func TenantField(cfg EntityConfig) (string, bool) {
	if cfg.ScopeBy == "" || strings.Contains(cfg.ScopeBy, ".") {
		return "", false
	}
	return cfg.ScopeBy, true
}

// ownershipFilter {id} + alcance del tenant; usado por Read, Update y Delete.
func ownershipFilter(cfg EntityConfig, user *entity.ActingUser, id string) query.Filter {
	return query.Merge(query.ByID(id), BuildScopeFilter(cfg, user))
}
