package services

import (
	"context"
	"sort"
	"strings"

	"bizsuite/internal/common"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
)

type CategoryService interface {
	Create(ctx context.Context, tenantID uuid.UUID, in *CategoryInput) (*models.Category, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Category, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in *CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.Category, error)
	Tree(ctx context.Context, tenantID uuid.UUID) ([]*models.Category, error)
}

type CategoryInput struct {
	Name        string     `json:"name" validate:"required,max=255"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   int        `json:"sort_order"`
	IsActive    *bool      `json:"is_active"`
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) checkParent(ctx context.Context, tenantID uuid.UUID, id, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if id != nil && *id == *parentID {
		return common.NewFieldError("parent_id", "A category cannot be its own parent.")
	}
	if _, err := s.categoryRepo.GetByID(ctx, tenantID, *parentID); err != nil {
		if common.IsNotFound(err) {
			return common.NewFieldError("parent_id", "The selected parent_id is invalid.")
		}
		return err
	}
	return nil
}

func (s *categoryService) Create(ctx context.Context, tenantID uuid.UUID, in *CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, common.NewFieldError("name", "The name field is required.")
	}
	if err := s.checkParent(ctx, tenantID, nil, in.ParentID); err != nil {
		return nil, err
	}

	category := &models.Category{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		ParentID:    in.ParentID,
		SortOrder:   in.SortOrder,
		IsActive:    boolOr(in.IsActive, true),
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Category")
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, tenantID, id uuid.UUID, in *CategoryInput) (*models.Category, error) {
	category, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, common.NewFieldError("name", "The name field is required.")
	}
	if err := s.checkParent(ctx, tenantID, &id, in.ParentID); err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(in.Name)
	category.Description = in.Description
	category.ParentID = in.ParentID
	category.SortOrder = in.SortOrder
	category.IsActive = boolOr(in.IsActive, category.IsActive)

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, notFound(err, "Category")
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, tenantID, id); err != nil {
		return err
	}
	children, products, err := s.categoryRepo.Usage(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return common.NewConflictError("CATEGORY_HAS_CHILDREN", "Category has subcategories and cannot be deleted")
	}
	if products > 0 {
		return common.NewConflictError("CATEGORY_HAS_PRODUCTS", "Category has products and cannot be deleted")
	}
	return notFound(s.categoryRepo.Delete(ctx, tenantID, id), "Category")
}

func (s *categoryService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx, tenantID)
}

// Tree nests the flat category list under its parents; orphans are treated as roots
func (s *categoryService) Tree(ctx context.Context, tenantID uuid.UUID) ([]*models.Category, error) {
	flat, err := s.categoryRepo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return BuildCategoryTree(flat), nil
}

func BuildCategoryTree(flat []*models.Category) []*models.Category {
	byID := make(map[uuid.UUID]*models.Category, len(flat))
	for _, c := range flat {
		c.Subcategories = nil
		byID[c.ID] = c
	}

	var roots []*models.Category
	for _, c := range flat {
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok && parent != c {
				parent.Subcategories = append(parent.Subcategories, c)
				continue
			}
		}
		roots = append(roots, c)
	}

	var sortLevel func([]*models.Category)
	sortLevel = func(level []*models.Category) {
		sort.SliceStable(level, func(i, j int) bool {
			if level[i].SortOrder != level[j].SortOrder {
				return level[i].SortOrder < level[j].SortOrder
			}
			return level[i].Name < level[j].Name
		})
		for _, c := range level {
			sortLevel(c.Subcategories)
		}
	}
	sortLevel(roots)
	return roots
}
