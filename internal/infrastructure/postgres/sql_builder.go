package postgres

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
	"github.com/jhoicas/Concesionario-api/internal/domain/query"
)

// sqlBuilder traduce query.Filter a SQL parametrizado. Los identificadores pasan por
// pgx.Identifier.Sanitize; los valores siempre van como argumentos $n.
type sqlBuilder struct {
	catalog query.Catalog
	args    []any
	aliases int
}

func newSQLBuilder(catalog query.Catalog) *sqlBuilder {
	return &sqlBuilder{catalog: catalog}
}

func table(collection string) string {
	return pgx.Identifier{collection}.Sanitize()
}

func column(alias, field string) string {
	return alias + "." + pgx.Identifier{field}.Sanitize()
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *sqlBuilder) alias() string {
	a := "t" + strconv.Itoa(b.aliases)
	b.aliases++
	return a
}

// where devuelve " WHERE ..." o "" si el filtro está vacío.
func (b *sqlBuilder) where(collection, alias string, f query.Filter) (string, error) {
	cond, err := b.conjunction(collection, alias, f)
	if err != nil || cond == "" {
		return "", err
	}
	return " WHERE " + cond, nil
}

func (b *sqlBuilder) conjunction(collection, alias string, f query.Filter) (string, error) {
	parts := make([]string, 0, len(f))
	for _, p := range f {
		s, err := b.predicate(collection, alias, p)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " AND "), nil
}

func (b *sqlBuilder) predicate(collection, alias string, p query.Predicate) (string, error) {
	switch p := p.(type) {
	case query.Eq:
		if p.Value == nil {
			return column(alias, p.Field) + " IS NULL", nil
		}
		return column(alias, p.Field) + " = " + b.arg(p.Value), nil
	case query.Contains:
		return column(alias, p.Field) + "::text ILIKE " + b.arg("%"+escapeLike(p.Value)+"%"), nil
	case query.Or:
		if len(p) == 0 {
			return "FALSE", nil
		}
		parts := make([]string, 0, len(p))
		for _, sub := range p {
			s, err := b.predicate(collection, alias, sub)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil
	case query.Related:
		rel, ok := b.catalog.Lookup(collection, p.Relation)
		if !ok {
			return "", fmt.Errorf("relación desconocida %s.%s", collection, p.Relation)
		}
		sub := b.alias()
		cond := column(sub, rel.References) + " = " + column(alias, rel.Field)
		inner, err := b.conjunction(rel.Collection, sub, p.Filter)
		if err != nil {
			return "", err
		}
		if inner != "" {
			cond += " AND " + inner
		}
		return fmt.Sprintf("EXISTS (SELECT 1 FROM %s %s WHERE %s)", table(rel.Collection), sub, cond), nil
	default:
		return "", fmt.Errorf("predicado no soportado %T", p)
	}
}

func (b *sqlBuilder) orderBy(alias string, order []query.Order) string {
	if len(order) == 0 {
		return ""
	}
	parts := make([]string, 0, len(order))
	for _, o := range order {
		dir := " ASC"
		if o.Desc {
			dir = " DESC"
		}
		parts = append(parts, column(alias, o.Field)+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// assignments arma "col" = $n en orden de columna para que el SQL sea estable.
func (b *sqlBuilder) assignments(data entity.Record) (cols []string, placeholders []string) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		cols = append(cols, pgx.Identifier{k}.Sanitize())
		placeholders = append(placeholders, b.arg(data[k]))
	}
	return cols, placeholders
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
