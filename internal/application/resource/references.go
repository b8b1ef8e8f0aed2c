package resource

import (
	"context"
	"sort"

	"github.com/jhoicas/Concesionario-api/internal/domain"
	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
	"github.com/jhoicas/Concesionario-api/internal/domain/query"
)

// checkReferences verifica que cada llave belongs-to presente en data apunte a
// un registro dentro del alcance del usuario. Un registro ajeno y uno
// inexistente responden igual (ErrNotFound). La plataforma no se restringe.
func (s *Service) checkReferences(ctx context.Context, ec ExecutionContext, data entity.Record) error {
	if ec.User.IsPlatform() || len(ec.Config.Relations) == 0 {
		return nil
	}
	names := make([]string, 0, len(ec.Config.Relations))
	for name := range ec.Config.Relations {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rel := ec.Config.Relations[name]
		if rel.Many {
			continue
		}
		ref := data.String(rel.Field)
		if ref == "" {
			continue
		}
		target, ok := s.registry.ForCollection(rel.Collection)
		if !ok || target.ScopeBy == "" {
			continue
		}
		where := query.Merge(
			query.Filter{query.Eq{Field: rel.References, Value: ref}},
			BuildScopeFilter(target, &ec.User),
		)
		n, err := s.store.Count(ctx, rel.Collection, where)
		if err != nil {
			return domain.Internal("verificar "+ec.Resource+"."+rel.Field, err)
		}
		if n == 0 {
			s.log.Warn().
				Str("resource", ec.Resource).
				Str("field", rel.Field).
				Str("ref", ref).
				Str("dealer_id", ec.User.DealerID).
				Msg("referencia fuera del alcance del tenant")
			return domain.ErrNotFound
		}
	}
	return nil
}
