package catalog

import (
	"github.com/jhoicas/Concesionario-api/internal/application/resource"
	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
)

var allOps = []resource.Operation{resource.OpCreate, resource.OpRead, resource.OpUpdate, resource.OpDelete}

// DefaultGrants permisos iniciales por rol, usados para sembrar el almacén de
// permisos en memoria y como referencia de la tabla role_permissions.
func DefaultGrants() map[string][]string {
	grants := make(map[string][]string)
	grant := func(role string, ops []resource.Operation, resources ...string) {
		for _, r := range resources {
			for _, op := range ops {
				grants[role] = append(grants[role], resource.PermissionKey(r, op))
			}
		}
	}
	read := []resource.Operation{resource.OpRead}
	write := []resource.Operation{resource.OpCreate, resource.OpRead, resource.OpUpdate}

	for name := range Entities() {
		if name != Dealers {
			grant(entity.RoleDealerAdmin, allOps, name)
		}
	}
	grant(entity.RoleDealerAdmin, []resource.Operation{resource.OpRead, resource.OpUpdate}, Dealers)

	grant(entity.RoleTechnician, read, Products, ProductVariants, Vehicles, ServiceHistory, Customers)
	grant(entity.RoleTechnician, write, Jobs)
	grant(entity.RoleTechnician, []resource.Operation{resource.OpCreate, resource.OpRead}, PartsUsage)
	grant(entity.RoleTechnician, []resource.Operation{resource.OpRead, resource.OpUpdate}, ServiceTickets)

	grant(entity.RoleSales, write, Customers, Profiles, Vehicles, Sales, Orders, Payments, Estimates, Referrals, Shipments, Returns)
	grant(entity.RoleSales, read, Products, ProductVariants, ServiceTickets)
	return grants
}
