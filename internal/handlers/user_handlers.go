package handlers

import (
	"net/http"

	"bizsuite/internal/common"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/labstack/echo/v4"
)

// UserHandlers lets an account admin manage the logins of their own tenant
type UserHandlers struct {
	userRepo repositories.UserRepository
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(userRepo repositories.UserRepository) *UserHandlers {
	return &UserHandlers{userRepo: userRepo}
}

// UpdateUserStatusRequest switches a login on or off
type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

// ListUsers handles GET /users
func (h *UserHandlers) ListUsers(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := common.LimitOffset(c)

	users, err := h.userRepo.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return c.JSON(http.StatusOK, ListResponse{Data: users, Total: len(users), Limit: limit, Offset: offset})
}

// GetUser handles GET /users/:id
func (h *UserHandlers) GetUser(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	user, err := h.userRepo.GetByID(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, user, err)
}

// UpdateUserStatus handles PATCH /users/:id/status
func (h *UserHandlers) UpdateUserStatus(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var req UpdateUserStatusRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	if callerID, ok := common.GetUserIDFromContext(ctx); ok && callerID == id && req.Status != models.UserStatusActive {
		return common.HandleServiceError(c, common.NewStateError("CANNOT_DEACTIVATE_SELF", "You cannot deactivate your own login"))
	}

	user, err := h.userRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	user.Status = req.Status
	if err := h.userRepo.Update(ctx, user); err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
