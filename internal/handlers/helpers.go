package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"bizsuite/internal/common"
	"bizsuite/internal/middleware"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListResponse is the envelope for paginated collections
type ListResponse struct {
	Data   interface{} `json:"data"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

func tenantFromContext(c echo.Context) (uuid.UUID, error) {
	tenantID, ok := middleware.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Tenant not found")
	}
	return tenantID, nil
}

// tenantAndID resolves the tenant and the :id path parameter
func tenantAndID(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := common.PathUUID(c, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return tenantID, id, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter
func queryDate(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	d, err := common.ParseDate(raw, name)
	if err != nil {
		return nil, common.NewFieldError(name, err.Error())
	}
	return &d, nil
}

// queryDateRange parses a from/to pair; an inverted or oversized window is reported on the to field
func queryDateRange(c echo.Context, fromName, toName string) (*time.Time, *time.Time, error) {
	from, err := queryDate(c, fromName)
	if err != nil {
		return nil, nil, err
	}
	to, err := queryDate(c, toName)
	if err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil {
		if err := common.ValidateDateRange(*from, *to); err != nil {
			return nil, nil, common.NewFieldError(toName, err.Error())
		}
	}
	return from, to, nil
}

func sendXLSX(c echo.Context, filename string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

// respond sends a service result or maps its error
func respond(c echo.Context, status int, v interface{}, err error) error {
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(status, v)
}
