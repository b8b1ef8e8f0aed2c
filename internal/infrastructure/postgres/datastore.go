package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
	"github.com/jhoicas/Concesionario-api/internal/domain/query"
	"github.com/jhoicas/Concesionario-api/internal/domain/repository"
)

var _ repository.Datastore = (*Datastore)(nil)

// Datastore implementación genérica de repository.Datastore sobre PostgreSQL.
// Cada colección es una tabla; las relaciones del catálogo se resuelven con
// subconsultas EXISTS (filtros) y consultas por lote (carga de relaciones).
type Datastore struct {
	q       Querier
	catalog query.Catalog
}

// NewDatastore construye el adaptador. Pasar pool o tx (Querier).
func NewDatastore(q Querier, catalog query.Catalog) *Datastore {
	return &Datastore{q: q, catalog: catalog}
}

func (d *Datastore) Find(ctx context.Context, collection string, q query.Find) ([]entity.Record, error) {
	b := newSQLBuilder(d.catalog)
	alias := b.alias()
	where, err := b.where(collection, alias, q.Where)
	if err != nil {
		return nil, err
	}
	sql := fmt.Sprintf("SELECT %s.* FROM %s %s%s%s", alias, table(collection), alias, where, b.orderBy(alias, q.OrderBy))
	if q.Take > 0 {
		sql += " LIMIT " + b.arg(q.Take)
	}
	if q.Skip > 0 {
		sql += " OFFSET " + b.arg(q.Skip)
	}
	records, err := d.query(ctx, sql, b.args...)
	if err != nil {
		return nil, mapError("find "+collection, err)
	}
	if err := d.include(ctx, collection, records, q.Include); err != nil {
		return nil, err
	}
	return records, nil
}

func (d *Datastore) FindFirst(ctx context.Context, collection string, where query.Filter, include query.Include) (entity.Record, error) {
	records, err := d.Find(ctx, collection, query.Find{Where: where, Take: 1, Include: include})
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[0], nil
}

func (d *Datastore) Count(ctx context.Context, collection string, where query.Filter) (int, error) {
	b := newSQLBuilder(d.catalog)
	alias := b.alias()
	cond, err := b.where(collection, alias, where)
	if err != nil {
		return 0, err
	}
	var n int
	sql := fmt.Sprintf("SELECT count(*) FROM %s %s%s", table(collection), alias, cond)
	if err := d.q.QueryRow(ctx, sql, b.args...).Scan(&n); err != nil {
		return 0, mapError("count "+collection, err)
	}
	return n, nil
}

func (d *Datastore) Create(ctx context.Context, collection string, data entity.Record, include query.Include) (entity.Record, error) {
	b := newSQLBuilder(d.catalog)
	var sql string
	if len(data) == 0 {
		sql = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING *", table(collection))
	} else {
		cols, placeholders := b.assignments(data)
		sql = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
			table(collection), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	}
	return d.one(ctx, "insert "+collection, collection, include, sql, b.args...)
}

func (d *Datastore) UpdateWhere(ctx context.Context, collection string, where query.Filter, data entity.Record, include query.Include) (entity.Record, error) {
	if len(data) == 0 {
		return d.FindFirst(ctx, collection, where, include)
	}
	b := newSQLBuilder(d.catalog)
	alias := b.alias()
	cols, placeholders := b.assignments(data)
	sets := make([]string, len(cols))
	for i := range cols {
		sets[i] = cols[i] + " = " + placeholders[i]
	}
	cond, err := b.where(collection, alias, where)
	if err != nil {
		return nil, err
	}
	sql := fmt.Sprintf("UPDATE %s AS %s SET %s%s RETURNING %s.*",
		table(collection), alias, strings.Join(sets, ", "), cond, alias)
	return d.one(ctx, "update "+collection, collection, include, sql, b.args...)
}

func (d *Datastore) DeleteWhere(ctx context.Context, collection string, where query.Filter) (int64, error) {
	b := newSQLBuilder(d.catalog)
	alias := b.alias()
	cond, err := b.where(collection, alias, where)
	if err != nil {
		return 0, err
	}
	tag, err := d.q.Exec(ctx, fmt.Sprintf("DELETE FROM %s AS %s%s", table(collection), alias, cond), b.args...)
	if err != nil {
		return 0, mapError("delete "+collection, err)
	}
	return tag.RowsAffected(), nil
}

// Increment ejecuta "SET field = field + delta" en una sola sentencia; dos llamadas
// concurrentes sobre la misma fila se serializan en el lock de fila de Postgres.
func (d *Datastore) Increment(ctx context.Context, collection string, where query.Filter, field string, delta any) (entity.Record, error) {
	b := newSQLBuilder(d.catalog)
	alias := b.alias()
	col := pgx.Identifier{field}.Sanitize()
	set := fmt.Sprintf("%s = %s + %s", col, col, b.arg(delta))
	cond, err := b.where(collection, alias, where)
	if err != nil {
		return nil, err
	}
	sql := fmt.Sprintf("UPDATE %s AS %s SET %s%s RETURNING %s.*", table(collection), alias, set, cond, alias)
	return d.one(ctx, "increment "+collection+"."+field, collection, nil, sql, b.args...)
}

func (d *Datastore) one(ctx context.Context, op, collection string, include query.Include, sql string, args ...any) (entity.Record, error) {
	records, err := d.query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if err := d.include(ctx, collection, records[:1], include); err != nil {
		return nil, err
	}
	return records[0], nil
}

func (d *Datastore) query(ctx context.Context, sql string, args ...any) ([]entity.Record, error) {
	rows, err := d.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Record, len(maps))
	for i, m := range maps {
		out[i] = normalize(m)
	}
	return out, nil
}

// include carga por lote cada relación pedida y la adjunta a los registros.
func (d *Datastore) include(ctx context.Context, collection string, records []entity.Record, include query.Include) error {
	if len(records) == 0 {
		return nil
	}
	for name, nested := range include {
		rel, ok := d.catalog.Lookup(collection, name)
		if !ok {
			return fmt.Errorf("relación desconocida %s.%s", collection, name)
		}
		keys := make([]string, 0, len(records))
		for _, r := range records {
			if r[rel.Field] != nil {
				keys = append(keys, r.String(rel.Field))
			}
		}
		var related []entity.Record
		if len(keys) > 0 {
			sql := fmt.Sprintf("SELECT t0.* FROM %s t0 WHERE %s::text = ANY($1::text[])",
				table(rel.Collection), column("t0", rel.References))
			var err error
			related, err = d.query(ctx, sql, keys)
			if err != nil {
				return mapError("include "+collection+"."+name, err)
			}
			if err := d.include(ctx, rel.Collection, related, nested); err != nil {
				return err
			}
		}
		byKey := make(map[string][]entity.Record, len(related))
		for _, r := range related {
			k := r.String(rel.References)
			byKey[k] = append(byKey[k], r)
		}
		for _, r := range records {
			matches := byKey[r.String(rel.Field)]
			if r[rel.Field] == nil {
				matches = nil
			}
			switch {
			case rel.Many && matches == nil:
				r[name] = []entity.Record{}
			case rel.Many:
				r[name] = matches
			case len(matches) > 0:
				r[name] = matches[0]
			default:
				r[name] = nil
			}
		}
	}
	return nil
}

// normalize convierte los uuid crudos de pgx ([16]byte) a texto.
func normalize(m map[string]any) entity.Record {
	for k, v := range m {
		if b, ok := v.([16]byte); ok {
			m[k] = uuid.UUID(b).String()
		}
	}
	return entity.Record(m)
}
