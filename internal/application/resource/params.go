package resource

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/jhoicas/Concesionario-api/internal/domain/query"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
)

var reservedParams = map[string]struct{}{"page": {}, "limit": {}, "search": {}, "q": {}}

// ListParams parámetros de List ya interpretados.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]any
}

// Skip desplazamiento de la página.
func (p ListParams) Skip() int {
	return (p.Page - 1) * p.Limit
}

// ParseListParams interpreta los query params. Todo parámetro fuera de
// {page, limit, search, q} se vuelve un filtro de igualdad.
func ParseListParams(values map[string]string, defaultLimit int) ListParams {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	p := ListParams{
		Page:    positiveInt(values["page"], DefaultPage),
		Limit:   positiveInt(values["limit"], defaultLimit),
		Filters: make(map[string]any),
	}
	p.Search = strings.TrimSpace(values["search"])
	if p.Search == "" {
		p.Search = strings.TrimSpace(values["q"])
	}
	for k, v := range values {
		if _, reserved := reservedParams[k]; reserved || k == "" {
			continue
		}
		p.Filters[k] = coerceParam(v)
	}
	return p
}

// coerceParam coerción léxica: "true"/"false"/"null" a sus tipos, el resto queda como texto.
// Números y fechas no se convierten.
func coerceParam(v string) any {
	switch v {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	default:
		return v
	}
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// listFilter arma el where: alcance primero, luego filtros explícitos, luego búsqueda.
func listFilter(cfg EntityConfig, scope query.Filter, p ListParams) query.Filter {
	where := query.Merge(scope)
	for _, k := range slices.Sorted(maps.Keys(p.Filters)) {
		where = where.And(query.Eq{Field: k, Value: p.Filters[k]})
	}
	if p.Search != "" && len(cfg.SearchableFields) > 0 {
		or := make(query.Or, 0, len(cfg.SearchableFields))
		for _, f := range cfg.SearchableFields {
			or = append(or, query.Contains{Field: f, Value: p.Search})
		}
		where = where.And(or)
	}
	return where
}
