package repository

import "context"

// PermissionRepository consulta si un rol tiene un permiso "{recurso}:{operación}".
type PermissionRepository interface {
	RoleHasPermission(ctx context.Context, role, permission string) (bool, error)
}
