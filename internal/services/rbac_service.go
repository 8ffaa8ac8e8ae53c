package services

import (
	"context"
	"slices"

	"bizsuite/internal/repositories"

	"github.com/google/uuid"
)

// RBACService answers permission questions for a user inside one tenant.
// Permissions are "resource:action" names granted through roles.
type RBACService interface {
	UserHasPermission(ctx context.Context, userID, tenantID uuid.UUID, permissionName string) (bool, error)
	GetUserPermissions(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error)
}

type rbacService struct {
	roleRepo repositories.RoleRepository
}

func NewRBACService(roleRepo repositories.RoleRepository) RBACService {
	return &rbacService{roleRepo: roleRepo}
}

func (s *rbacService) UserHasPermission(ctx context.Context, userID, tenantID uuid.UUID, permissionName string) (bool, error) {
	perms, err := s.GetUserPermissions(ctx, userID, tenantID)
	if err != nil {
		return false, err
	}
	return slices.Contains(perms, permissionName), nil
}

// GetUserPermissions is empty, never nil, for a user without roles or an inactive user
func (s *rbacService) GetUserPermissions(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error) {
	perms, err := s.roleRepo.GetUserPermissions(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if perms == nil {
		perms = []string{}
	}
	return perms, nil
}
