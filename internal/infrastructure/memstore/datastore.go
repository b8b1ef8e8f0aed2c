// Package memstore implementa los puertos de persistencia en memoria. Se usa en
// desarrollo (DATASTORE=memory) y en las pruebas del motor de recursos; imita
// las reglas de la base: unicidad de id, llaves foráneas RESTRICT y escrituras
// condicionales atómicas.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Concesionario-api/internal/domain"
	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
	"github.com/jhoicas/Concesionario-api/internal/domain/query"
	"github.com/jhoicas/Concesionario-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

var _ repository.Datastore = (*Store)(nil)

// Store datastore en memoria. Todas las operaciones son seguras para uso concurrente.
type Store struct {
	mu          sync.RWMutex
	catalog     query.Catalog
	collections map[string][]entity.Record
	unique      map[string][]string
	now         func() time.Time
}

// Option configura el Store.
type Option func(*Store)

// WithUnique declara columnas únicas (además de id) para una colección.
func WithUnique(collection string, fields ...string) Option {
	return func(s *Store) {
		s.unique[collection] = append(s.unique[collection], fields...)
	}
}

// WithClock reemplaza el reloj usado para created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New construye el Store con el catálogo de relaciones del registro.
func New(catalog query.Catalog, opts ...Option) *Store {
	s := &Store{
		catalog:     catalog,
		collections: make(map[string][]entity.Record),
		unique:      make(map[string][]string),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed inserta registros sin validaciones (datos de prueba o demo).
func (s *Store) Seed(collection string, records ...entity.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.collections[collection] = append(s.collections[collection], r.Clone())
	}
}

func (s *Store) Find(_ context.Context, collection string, q query.Find) ([]entity.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.filter(collection, q.Where)
	if len(q.OrderBy) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			return less(matched[i], matched[j], q.OrderBy)
		})
	}
	if q.Skip > 0 {
		if q.Skip >= len(matched) {
			matched = nil
		} else {
			matched = matched[q.Skip:]
		}
	}
	if q.Take > 0 && len(matched) > q.Take {
		matched = matched[:q.Take]
	}
	out := make([]entity.Record, 0, len(matched))
	for _, r := range matched {
		out = append(out, s.load(collection, r, q.Include))
	}
	return out, nil
}

func (s *Store) FindFirst(_ context.Context, collection string, where query.Filter, include query.Include) (entity.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.collections[collection] {
		if s.match(collection, r, where) {
			return s.load(collection, r, include), nil
		}
	}
	return nil, nil
}

func (s *Store) Count(_ context.Context, collection string, where query.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filter(collection, where)), nil
}

func (s *Store) Create(_ context.Context, collection string, data entity.Record, include query.Include) (entity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := data.Clone()
	if rec.ID() == "" {
		rec["id"] = uuid.NewString()
	}
	now := s.now()
	if _, ok := rec["created_at"]; !ok {
		rec["created_at"] = now
	}
	if _, ok := rec["updated_at"]; !ok {
		rec["updated_at"] = now
	}
	for _, existing := range s.collections[collection] {
		for _, field := range append([]string{"id"}, s.unique[collection]...) {
			if rec[field] != nil && valuesEqual(existing[field], rec[field]) {
				return nil, fmt.Errorf("%s.%s: %w", collection, field, domain.ErrDuplicate)
			}
		}
	}
	s.collections[collection] = append(s.collections[collection], rec)
	return s.load(collection, rec, include), nil
}

func (s *Store) UpdateWhere(_ context.Context, collection string, where query.Filter, data entity.Record, include query.Include) (entity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first entity.Record
	for _, r := range s.filter(collection, where) {
		for k, v := range data {
			r[k] = v
		}
		if _, ok := data["updated_at"]; !ok {
			r["updated_at"] = s.now()
		}
		if first == nil {
			first = r
		}
	}
	if first == nil {
		return nil, nil
	}
	return s.load(collection, first, include), nil
}

func (s *Store) DeleteWhere(_ context.Context, collection string, where query.Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.collections[collection]
	var doomed []entity.Record
	for _, r := range rows {
		if s.match(collection, r, where) {
			doomed = append(doomed, r)
		}
	}
	for _, r := range doomed {
		if ref, ok := s.referencedBy(collection, r); ok {
			return 0, fmt.Errorf("%s %s referenciado por %s: %w", collection, r.ID(), ref, domain.ErrIntegrity)
		}
	}
	kept := rows[:0:0]
	for _, r := range rows {
		if !s.match(collection, r, where) {
			kept = append(kept, r)
		}
	}
	s.collections[collection] = kept
	return int64(len(doomed)), nil
}

func (s *Store) Increment(_ context.Context, collection string, where query.Filter, field string, delta any) (entity.Record, error) {
	d, err := entity.Record{field: delta}.Decimal(field)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.collections[collection] {
		if !s.match(collection, r, where) {
			continue
		}
		cur, err := r.Decimal(field)
		if err != nil {
			return nil, err
		}
		r[field] = cur.Add(d)
		r["updated_at"] = s.now()
		return r.Clone(), nil
	}
	return nil, nil
}

// referencedBy busca filas de relaciones belongs-to que apunten a r (FK RESTRICT).
func (s *Store) referencedBy(collection string, r entity.Record) (string, bool) {
	for from, rels := range s.catalog {
		for _, rel := range rels {
			if rel.Many || rel.Collection != collection {
				continue
			}
			key := r[rel.References]
			for _, other := range s.collections[from] {
				if from == collection && other.ID() == r.ID() {
					continue
				}
				if other[rel.Field] != nil && valuesEqual(other[rel.Field], key) {
					return from, true
				}
			}
		}
	}
	return "", false
}

func (s *Store) filter(collection string, where query.Filter) []entity.Record {
	var out []entity.Record
	for _, r := range s.collections[collection] {
		if s.match(collection, r, where) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) match(collection string, r entity.Record, where query.Filter) bool {
	for _, p := range where {
		if !s.matchPredicate(collection, r, p) {
			return false
		}
	}
	return true
}

func (s *Store) matchPredicate(collection string, r entity.Record, p query.Predicate) bool {
	switch p := p.(type) {
	case query.Eq:
		if p.Value == nil {
			return r[p.Field] == nil
		}
		return valuesEqual(r[p.Field], p.Value)
	case query.Contains:
		if r[p.Field] == nil {
			return false
		}
		return strings.Contains(fold(r.String(p.Field)), fold(p.Value))
	case query.Or:
		for _, sub := range p {
			if s.matchPredicate(collection, r, sub) {
				return true
			}
		}
		return false
	case query.Related:
		rel, ok := s.catalog.Lookup(collection, p.Relation)
		if !ok {
			return false
		}
		key := r[rel.Field]
		if key == nil {
			return false
		}
		for _, target := range s.collections[rel.Collection] {
			if valuesEqual(target[rel.References], key) && s.match(rel.Collection, target, p.Filter) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// load copia el registro y adjunta las relaciones pedidas.
func (s *Store) load(collection string, r entity.Record, include query.Include) entity.Record {
	out := r.Clone()
	for name, nested := range include {
		rel, ok := s.catalog.Lookup(collection, name)
		if !ok {
			continue
		}
		key := r[rel.Field]
		var related []entity.Record
		if key != nil {
			for _, target := range s.collections[rel.Collection] {
				if valuesEqual(target[rel.References], key) {
					related = append(related, s.load(rel.Collection, target, nested))
				}
			}
		}
		if rel.Many {
			if related == nil {
				related = []entity.Record{}
			}
			out[name] = related
		} else if len(related) > 0 {
			out[name] = related[0]
		} else {
			out[name] = nil
		}
	}
	return out
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// valuesEqual compara como lo haría la base: si un lado es numérico se compara
// por valor; dos textos se comparan tal cual ("007" != "7").
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if isNumber(a) || isNumber(b) {
		da, okA := asDecimal(a)
		db, okB := asDecimal(b)
		if okA && okB {
			return da.Equal(db)
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func isNumber(v any) bool {
	switch v.(type) {
	case decimal.Decimal, int, int32, int64, float32, float64:
		return true
	}
	return false
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch v.(type) {
	case decimal.Decimal, int, int32, int64, float32, float64:
		d, err := entity.Record{"v": v}.Decimal("v")
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(v.(string))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

func less(a, b entity.Record, order []query.Order) bool {
	for _, o := range order {
		c := compare(a[o.Field], b[o.Field])
		if c == 0 {
			continue
		}
		if o.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}

// compare ordena nil primero, luego tiempo, números y texto.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if da, ok := asDecimal(a); ok {
		if db, ok := asDecimal(b); ok {
			return da.Cmp(db)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
