package services

import (
	"context"
	"testing"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBuildCategoryTree(t *testing.T) {
	root := &models.Category{ID: uuid.New(), Name: "Networking", SortOrder: 2}
	other := &models.Category{ID: uuid.New(), Name: "Cameras", SortOrder: 1}
	childB := &models.Category{ID: uuid.New(), Name: "Switches", ParentID: &root.ID}
	childA := &models.Category{ID: uuid.New(), Name: "Access Points", ParentID: &root.ID}
	missing := uuid.New()
	orphan := &models.Category{ID: uuid.New(), Name: "Legacy", SortOrder: 3, ParentID: &missing}

	tree := BuildCategoryTree([]*models.Category{childB, root, orphan, childA, other})

	require.Len(t, tree, 3)
	assert.Equal(t, "Cameras", tree[0].Name)
	assert.Equal(t, "Networking", tree[1].Name)
	assert.Equal(t, "Legacy", tree[2].Name)

	require.Len(t, tree[1].Subcategories, 2)
	assert.Equal(t, "Access Points", tree[1].Subcategories[0].Name)
	assert.Equal(t, "Switches", tree[1].Subcategories[1].Name)
}

func TestCategoryService_CreateRejectsUnknownParent(t *testing.T) {
	repo := &MockCategoryRepository{}
	parentID := uuid.New()
	repo.On("GetByID", mock.Anything, testTenantID, parentID).Return(nil, pgx.ErrNoRows)

	_, err := NewCategoryService(repo).Create(context.Background(), testTenantID, &CategoryInput{Name: "Switches", ParentID: &parentID})
	requireField(t, err, "parent_id")
	repo.AssertExpectations(t)
}

func TestCategoryService_UpdateRejectsSelfParent(t *testing.T) {
	repo := &MockCategoryRepository{}
	id := uuid.New()
	repo.On("GetByID", mock.Anything, testTenantID, id).Return(&models.Category{ID: id, Name: "Cameras"}, nil)

	_, err := NewCategoryService(repo).Update(context.Background(), testTenantID, id, &CategoryInput{Name: "Cameras", ParentID: &id})
	requireField(t, err, "parent_id")
}

func TestCategoryService_DeleteInUse(t *testing.T) {
	tests := []struct {
		name     string
		children int
		products int
		code     string
	}{
		{"has children", 1, 0, "CATEGORY_HAS_CHILDREN"},
		{"has products", 0, 4, "CATEGORY_HAS_PRODUCTS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockCategoryRepository{}
			id := uuid.New()
			repo.On("GetByID", mock.Anything, testTenantID, id).Return(&models.Category{ID: id}, nil)
			repo.On("Usage", mock.Anything, testTenantID, id).Return(tt.children, tt.products, nil)

			err := NewCategoryService(repo).Delete(context.Background(), testTenantID, id)
			requireCode(t, err, tt.code)
			repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
