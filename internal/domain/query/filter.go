// Package query describe filtros, ordenamiento y carga de relaciones de forma
// independiente del motor de persistencia. Los adaptadores (postgres, memstore)
// los interpretan.
package query

// Predicate es una condición sobre un registro.
type Predicate interface {
	predicate()
}

// Eq compara igualdad de columna. Value nil significa "IS NULL".
type Eq struct {
	Field string
	Value any
}

// Contains busca Value como subcadena, sin distinguir mayúsculas.
type Contains struct {
	Field string
	Value string
}

// Or se cumple si alguno de sus predicados se cumple. Un Or vacío nunca se cumple.
type Or []Predicate

// Related se cumple si existe un registro relacionado (vía Relation) que cumpla Filter.
type Related struct {
	Relation string
	Filter   Filter
}

func (Eq) predicate()       {}
func (Contains) predicate() {}
func (Or) predicate()       {}
func (Related) predicate()  {}

// Filter es una conjunción de predicados. Un filtro vacío no restringe.
type Filter []Predicate

// And devuelve un filtro nuevo con los predicados agregados (no modifica el receptor).
func (f Filter) And(p ...Predicate) Filter {
	out := make(Filter, 0, len(f)+len(p))
	out = append(out, f...)
	return append(out, p...)
}

// Merge concatena filtros en orden.
func Merge(filters ...Filter) Filter {
	var out Filter
	for _, f := range filters {
		out = append(out, f...)
	}
	return out
}

// ByID atajo para {id: value}.
func ByID(id string) Filter {
	return Filter{Eq{Field: "id", Value: id}}
}

// Order ordenamiento por columna.
type Order struct {
	Field string
	Desc  bool
}

// Include forma de carga de relaciones: nombre de relación -> forma anidada (nil = sin anidar).
type Include map[string]Include

// Find parámetros de consulta paginada.
type Find struct {
	Where   Filter
	OrderBy []Order
	Skip    int
	Take    int // 0 = sin límite
	Include Include
}
