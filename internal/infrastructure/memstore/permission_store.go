package memstore

import (
	"context"
	"sync"

	"github.com/jhoicas/Concesionario-api/internal/domain/repository"
)

var _ repository.PermissionRepository = (*PermissionStore)(nil)

// PermissionStore tabla rol -> permisos en memoria.
type PermissionStore struct {
	mu     sync.RWMutex
	grants map[string]map[string]struct{}
}

// NewPermissionStore crea el store con las asignaciones iniciales.
func NewPermissionStore(grants map[string][]string) *PermissionStore {
	s := &PermissionStore{grants: make(map[string]map[string]struct{})}
	for role, perms := range grants {
		s.Grant(role, perms...)
	}
	return s
}

// Grant asigna permisos "{recurso}:{operación}" al rol.
func (s *PermissionStore) Grant(role string, permissions ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.grants[role]
	if !ok {
		set = make(map[string]struct{})
		s.grants[role] = set
	}
	for _, p := range permissions {
		set[p] = struct{}{}
	}
}

func (s *PermissionStore) RoleHasPermission(_ context.Context, role, permission string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.grants[role][permission]
	return ok, nil
}
