package resource

import (
	"context"

	"github.com/jhoicas/Concesionario-api/internal/domain"
	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
	"github.com/jhoicas/Concesionario-api/internal/domain/repository"
)

// ExecutionContext contexto autorizado de una petición. Inmutable durante el handler.
type ExecutionContext struct {
	User     entity.ActingUser
	Resource string
	Config   EntityConfig
}

// Authorizer resuelve (recurso, operación, usuario) en un ExecutionContext.
type Authorizer struct {
	registry  *Registry
	perms     repository.PermissionRepository
	superRole string
}

// NewAuthorizer construye el autorizador. superRole vacío usa entity.RoleSuperAdmin.
func NewAuthorizer(registry *Registry, perms repository.PermissionRepository, superRole string) *Authorizer {
	if superRole == "" {
		superRole = entity.RoleSuperAdmin
	}
	return &Authorizer{registry: registry, perms: perms, superRole: superRole}
}

// PermissionKey "{recurso}:{operación}".
func PermissionKey(resource string, op Operation) string {
	return resource + ":" + string(op)
}

// Authorize aplica, en orden: usuario presente, recurso registrado, bypass del rol
// super, y la consulta del permiso. Recurso desconocido responde igual que un
// registro no visible (ErrNotFound). Una falla del almacén de permisos niega el acceso.
func (a *Authorizer) Authorize(ctx context.Context, resource string, op Operation, user *entity.ActingUser) (ExecutionContext, error) {
	if user == nil {
		return ExecutionContext{}, domain.ErrUnauthenticated
	}
	cfg, ok := a.registry.Lookup(resource)
	if !ok {
		return ExecutionContext{}, domain.ErrNotFound
	}
	if user.Role != a.superRole {
		key := PermissionKey(resource, op)
		granted, err := a.perms.RoleHasPermission(ctx, user.Role, key)
		if err != nil {
			return ExecutionContext{}, &domain.InternalError{Op: "consultar permisos", Err: err}
		}
		if !granted {
			return ExecutionContext{}, &domain.ForbiddenError{Permission: key}
		}
	}
	return ExecutionContext{User: *user, Resource: resource, Config: cfg}, nil
}
