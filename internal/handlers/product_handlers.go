package handlers

import (
	"net/http"
	"time"

	"bizsuite/internal/common"
	"bizsuite/internal/models"
	"bizsuite/internal/services"

	"github.com/labstack/echo/v4"
)

// ProductHandlers handles HTTP requests for products and their cost prices
type ProductHandlers struct {
	productService services.ProductService
}

// NewProductHandlers creates a new product handlers instance
func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

// ListProducts handles GET /products
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	filter := &models.ProductFilter{
		Search:   c.QueryParam("search"),
		IsActive: common.QueryBool(c, "is_active"),
	}
	if filter.CategoryID, err = common.QueryUUID(c, "category_id"); err != nil {
		return common.HandleServiceError(c, err)
	}
	filter.Limit, filter.Offset = common.LimitOffset(c)

	products, total, err := h.productService.List(c.Request().Context(), tenantID, filter)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Data: products, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

// CreateProduct handles POST /products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req services.ProductInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.productService.Create(c.Request().Context(), tenantID, &req)
	return respond(c, http.StatusCreated, product, err)
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	product, err := h.productService.GetByID(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, product, err)
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	var req services.ProductInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.productService.Update(c.Request().Context(), tenantID, id, &req)
	return respond(c, http.StatusOK, product, err)
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	if err := h.productService.Delete(c.Request().Context(), tenantID, id); err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// LatestCostPrice handles GET /products/:id/latest-cost-price?date=
func (h *ProductHandlers) LatestCostPrice(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	date := time.Now().UTC()
	if d, err := queryDate(c, "date"); err != nil {
		return common.HandleServiceError(c, err)
	} else if d != nil {
		date = *d
	}

	price, err := h.productService.LatestCostPrice(c.Request().Context(), tenantID, id, date)
	return respond(c, http.StatusOK, price, err)
}

// ListCostPrices handles GET /product-cost-prices?product_id=
func (h *ProductHandlers) ListCostPrices(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	productID, err := common.QueryUUID(c, "product_id")
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	limit, offset := common.LimitOffset(c)

	prices, err := h.productService.ListCostPrices(c.Request().Context(), tenantID, productID, limit, offset)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Data: prices, Total: len(prices), Limit: limit, Offset: offset})
}

// CreateCostPrice handles POST /product-cost-prices
func (h *ProductHandlers) CreateCostPrice(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req services.CostPriceInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	price, err := h.productService.CreateCostPrice(c.Request().Context(), tenantID, &req)
	return respond(c, http.StatusCreated, price, err)
}

// GetCostPrice handles GET /product-cost-prices/:id
func (h *ProductHandlers) GetCostPrice(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	price, err := h.productService.GetCostPrice(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, price, err)
}

// UpdateCostPrice handles PUT /product-cost-prices/:id
func (h *ProductHandlers) UpdateCostPrice(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	var req services.CostPriceInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	price, err := h.productService.UpdateCostPrice(c.Request().Context(), tenantID, id, &req)
	return respond(c, http.StatusOK, price, err)
}

// DeleteCostPrice handles DELETE /product-cost-prices/:id
func (h *ProductHandlers) DeleteCostPrice(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	if err := h.productService.DeleteCostPrice(c.Request().Context(), tenantID, id); err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
