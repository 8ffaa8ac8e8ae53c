package services

import (
	"context"
	"errors"
	"strings"

	"bizsuite/internal/common"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
)

const defaultTenantPageSize = 10

type TenantService interface {
	Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	Update(ctx context.Context, req *UpdateTenantRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
}

func NewTenantService(tenantRepo repositories.TenantRepository) TenantService {
	return &tenantService{tenantRepo: tenantRepo}
}

type CreateTenantRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Subdomain string `json:"subdomain" validate:"required,max=63"`
}

type UpdateTenantRequest struct {
	ID        uuid.UUID `json:"-"`
	Name      string    `json:"name" validate:"required,max=255"`
	Subdomain string    `json:"subdomain" validate:"required,max=63"`
	Status    string    `json:"status" validate:"required,oneof=active suspended cancelled"`
}

// tenantFields trims the name and lowercases the subdomain, collecting field errors
func tenantFields(name, subdomain string) (string, string, error) {
	fields := common.FieldErrors{}
	name = strings.TrimSpace(name)
	if name == "" {
		fields.Add("name", "The name field is required.")
	}
	switch {
	case subdomain == "":
		fields.Add("subdomain", "The subdomain field is required.")
	case strings.TrimSpace(subdomain) != subdomain || strings.ContainsAny(subdomain, " \t"):
		fields.Add("subdomain", "The subdomain cannot contain spaces.")
	}
	return name, strings.ToLower(subdomain), fields.Err()
}

func subdomainConflict(err error) error {
	if errors.Is(err, repositories.ErrSubdomainTaken) {
		return common.NewConflictError("SUBDOMAIN_TAKEN", "This subdomain is already in use.")
	}
	return err
}

func (s *tenantService) Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error) {
	name, subdomain, err := tenantFields(req.Name, req.Subdomain)
	if err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		ID:        uuid.New(),
		Name:      name,
		Subdomain: subdomain,
		Status:    models.TenantStatusActive,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, subdomainConflict(err)
	}
	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.tenantRepo.GetByID(ctx, id)
}

func (s *tenantService) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	if subdomain == "" {
		return nil, common.NewFieldError("subdomain", "The subdomain field is required.")
	}
	return s.tenantRepo.GetBySubdomain(ctx, strings.ToLower(subdomain))
}

func (s *tenantService) Update(ctx context.Context, req *UpdateTenantRequest) error {
	name, subdomain, err := tenantFields(req.Name, req.Subdomain)
	if err != nil {
		return err
	}

	existing, err := s.tenantRepo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	existing.Name = name
	existing.Subdomain = subdomain
	existing.Status = req.Status

	return subdomainConflict(s.tenantRepo.Update(ctx, existing))
}

func (s *tenantService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tenantRepo.Delete(ctx, id)
}

func (s *tenantService) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	if limit <= 0 {
		limit = defaultTenantPageSize
	}
	return s.tenantRepo.List(ctx, limit, max(offset, 0))
}

func (s *tenantService) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.tenantRepo.ListActiveIDs(ctx)
}
