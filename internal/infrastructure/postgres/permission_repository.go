package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Concesionario-api/internal/domain/repository"
)

var _ repository.PermissionRepository = (*PermissionRepo)(nil)

// PermissionRepo lee la tabla role_permissions (role, permission).
type PermissionRepo struct {
	q Querier
}

// NewPermissionRepository construye el adaptador de permisos.
func NewPermissionRepository(q Querier) *PermissionRepo {
	return &PermissionRepo{q: q}
}

// RoleHasPermission consulta si el rol tiene asignado el permiso "{recurso}:{operación}".
func (r *PermissionRepo) RoleHasPermission(ctx context.Context, role, permission string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM role_permissions
			WHERE role = $1 AND permission = $2
		)`
	var ok bool
	if err := r.q.QueryRow(ctx, query, role, permission).Scan(&ok); err != nil {
		return false, fmt.Errorf("consultar permiso: %w", err)
	}
	return ok, nil
}
