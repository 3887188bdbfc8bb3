package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"gavel/contexts/identity-access/access-control/domain/entities"
	domainerrors "gavel/contexts/identity-access/access-control/domain/errors"
)

// Store is the in-memory role repository used by tests and local wiring.
type Store struct {
	mu     sync.RWMutex
	grants map[string]map[entities.Role]entities.RoleGrant
}

func NewStore() *Store {
	return &Store{
		grants: make(map[string]map[entities.Role]entities.RoleGrant),
	}
}

func (s *Store) SaveGrant(_ context.Context, grant entities.RoleGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if grant.ActorID == "" || !grant.Role.Valid() {
		return domainerrors.ErrInvalidRole
	}
	byRole, ok := s.grants[grant.ActorID]
	if !ok {
		byRole = make(map[entities.Role]entities.RoleGrant)
		s.grants[grant.ActorID] = byRole
	}
	if _, exists := byRole[grant.Role]; exists {
		return nil
	}
	byRole[grant.Role] = grant
	return nil
}

func (s *Store) DeleteGrant(_ context.Context, actorID string, role entities.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if byRole, ok := s.grants[actorID]; ok {
		delete(byRole, role)
	}
	return nil
}

func (s *Store) HasGrant(_ context.Context, actorID string, role entities.Role) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byRole, ok := s.grants[actorID]
	if !ok {
		return false, nil
	}
	_, ok = byRole[role]
	return ok, nil
}

func (s *Store) ListGrants(_ context.Context, actorID string) ([]entities.RoleGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byRole := s.grants[actorID]
	items := make([]entities.RoleGrant, 0, len(byRole))
	for _, grant := range byRole {
		items = append(items, grant)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Role < items[j].Role
	})
	return items, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}
