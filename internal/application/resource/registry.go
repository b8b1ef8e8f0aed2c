package resource

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/Concesionario-api/internal/domain/query"
)

// Operation operación CRUD sobre un recurso. Forma parte de la llave de permiso "{recurso}:{operación}".
type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// BusinessNumber número legible de negocio (ej. ORD-20260114-7K2Q) generado al crear si falta.
type BusinessNumber struct {
	Field  string
	Prefix string
}

// SoftDeletePolicy estado a aplicar cuando el borrado físico viola integridad referencial.
type SoftDeletePolicy struct {
	Field         string
	InactiveValue any
}

// EntityConfig configuración declarativa de un recurso. Solo datos, sin comportamiento.
type EntityConfig struct {
	Collection string
	// ScopeBy columna (o ruta "relacion.columna") que termina en el dealer dueño del registro.
	ScopeBy          string
	Include          query.Include
	DefaultOrder     []query.Order
	SearchableFields []string
	Schema           Schema
	// GenerateID genera un UUID cuando la colección no tiene default en la base de datos.
	GenerateID     bool
	BusinessNumber *BusinessNumber
	SoftDelete     *SoftDeletePolicy
	Relations      map[string]query.Relation
}

// Registry mapa estático nombre de recurso -> EntityConfig. Se llena al arrancar y
// después solo se lee.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]EntityConfig
}

// NewRegistry construye un registro vacío.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]EntityConfig)}
}

// Register agrega un recurso. Una configuración mal formada es un error de despliegue.
func (r *Registry) Register(name string, cfg EntityConfig) error {
	if name == "" {
		return fmt.Errorf("registry: nombre de recurso vacío")
	}
	if cfg.Collection == "" {
		return fmt.Errorf("registry: %s sin colección", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("registry: recurso %s ya registrado", name)
	}
	r.entries[name] = cfg
	return nil
}

// Lookup devuelve la configuración del recurso.
func (r *Registry) Lookup(name string) (EntityConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.entries[name]
	return cfg, ok
}

// ForCollection devuelve el recurso respaldado por collection.
func (r *Registry) ForCollection(collection string) (EntityConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cfg := range r.entries {
		if cfg.Collection == collection {
			return cfg, true
		}
	}
	return EntityConfig{}, false
}

// Names nombres registrados en orden alfabético.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog relaciones por colección, para los adaptadores de persistencia.
func (r *Registry) Catalog() query.Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cat := make(query.Catalog)
	for _, cfg := range r.entries {
		rels, ok := cat[cfg.Collection]
		if !ok {
			rels = make(map[string]query.Relation)
			cat[cfg.Collection] = rels
		}
		for name, rel := range cfg.Relations {
			rels[name] = rel
		}
	}
	return cat
}

// Validate verifica que cada ScopeBy con puntos recorra relaciones conocidas
// y que la forma de carga use relaciones declaradas.
func (r *Registry) Validate() error {
	cat := r.Catalog()
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, cfg := range r.entries {
		if strings.Contains(cfg.ScopeBy, ".") {
			segments := strings.Split(cfg.ScopeBy, ".")
			collection := cfg.Collection
			for _, seg := range segments[:len(segments)-1] {
				rel, ok := cat.Lookup(collection, seg)
				if !ok {
					return fmt.Errorf("registry: %s: relación %q desconocida en scopeBy %q", name, seg, cfg.ScopeBy)
				}
				collection = rel.Collection
			}
		}
		if err := validateInclude(cat, cfg.Collection, cfg.Include); err != nil {
			return fmt.Errorf("registry: %s: %w", name, err)
		}
	}
	return nil
}

func validateInclude(cat query.Catalog, collection string, inc query.Include) error {
	for relName, nested := range inc {
		rel, ok := cat.Lookup(collection, relName)
		if !ok {
			return fmt.Errorf("relación %q desconocida en %s", relName, collection)
		}
		if err := validateInclude(cat, rel.Collection, nested); err != nil {
			return err
		}
	}
	return nil
}
