package entity

// Roles base del portal. Los permisos de cada rol viven en el almacén de permisos;
// solo RoleSuperAdmin tiene significado fijo (omite la verificación).
const (
	RoleSuperAdmin  = "super_admin"
	RoleDealerAdmin = "dealer_admin"
	RoleTechnician  = "technician"
	RoleSales       = "sales"
)

// ActingUser es el usuario que ejecuta la petición (resuelto desde el token).
// DealerID vacío significa actor de plataforma (sin tenant).
type ActingUser struct {
	ID       string
	Role     string
	DealerID string
}

// IsPlatform indica si el usuario no pertenece a ningún concesionario.
func (u *ActingUser) IsPlatform() bool {
	return u == nil || u.DealerID == ""
}
