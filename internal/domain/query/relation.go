package query

// Relation describe un recorrido por llave foránea desde una colección.
// Los registros relacionados son los de Collection cuya columna References
// es igual a la columna Field del registro de origen.
//
//	belongs-to: {Collection: "customers", Field: "customer_id", References: "id"}
//	has-many:   {Collection: "parts_usage", Field: "id", References: "job_id", Many: true}
type Relation struct {
	Collection string
	Field      string
	References string
	Many       bool
}

// Catalog relaciones conocidas por colección: colección -> nombre de relación -> Relation.
type Catalog map[string]map[string]Relation

// Lookup busca la relación name de la colección.
func (c Catalog) Lookup(collection, name string) (Relation, bool) {
	rels, ok := c[collection]
	if !ok {
		return Relation{}, false
	}
	rel, ok := rels[name]
	return rel, ok
}
