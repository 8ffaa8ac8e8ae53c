package handlers

import (
	"net/http"

	"bizsuite/internal/common"
	"bizsuite/internal/services"

	"github.com/labstack/echo/v4"
)

// CategoryHandlers handles HTTP requests for product categories
type CategoryHandlers struct {
	categoryService services.CategoryService
}

// NewCategoryHandlers creates a new category handlers instance
func NewCategoryHandlers(categoryService services.CategoryService) *CategoryHandlers {
	return &CategoryHandlers{categoryService: categoryService}
}

// ListCategories handles GET /categories
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	categories, err := h.categoryService.List(c.Request().Context(), tenantID)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Data: categories, Total: len(categories), Limit: len(categories)})
}

// CategoryTree handles GET /categories/tree
func (h *CategoryHandlers) CategoryTree(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	tree, err := h.categoryService.Tree(c.Request().Context(), tenantID)
	return respond(c, http.StatusOK, map[string]interface{}{"data": tree}, err)
}

// CreateCategory handles POST /categories
func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req services.CategoryInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := h.categoryService.Create(c.Request().Context(), tenantID, &req)
	return respond(c, http.StatusCreated, category, err)
}

// GetCategory handles GET /categories/:id
func (h *CategoryHandlers) GetCategory(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	category, err := h.categoryService.GetByID(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, category, err)
}

// UpdateCategory handles PUT /categories/:id
func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	var req services.CategoryInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := h.categoryService.Update(c.Request().Context(), tenantID, id, &req)
	return respond(c, http.StatusOK, category, err)
}

// DeleteCategory handles DELETE /categories/:id
func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	if err := h.categoryService.Delete(c.Request().Context(), tenantID, id); err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
