package handlers

import (
	"context"
	"errors"
	"net/http"

	"bizsuite/internal/common"
	"bizsuite/internal/logger"
	"bizsuite/internal/models"
	"bizsuite/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService  services.AuthService
	auditService services.AuditLogsService
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService services.AuthService, auditService services.AuditLogsService) *AuthHandlers {
	return &AuthHandlers{
		authService:  authService,
		auditService: auditService,
	}
}

// Signup handles POST /auth/signup
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req services.SignupRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.authService.Signup(c.Request().Context(), &req)
	return respond(c, http.StatusCreated, token, err)
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.LoginRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.authService.Login(ctx, &req)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrInactiveUser):
		return c.JSON(http.StatusForbidden, common.CreateErrorResponse("ACCOUNT_INACTIVE", "User account is not active", nil))
	case err != nil:
		return common.HandleServiceError(c, err)
	}

	h.recordLogin(ctx, token)
	return c.JSON(http.StatusOK, token)
}

func (h *AuthHandlers) recordLogin(ctx context.Context, token *models.TokenResponse) {
	tenantID, err := uuid.Parse(token.TenantID)
	if err != nil {
		return
	}
	userID, err := uuid.Parse(token.UserID)
	if err != nil {
		return
	}
	entry := models.AuditEntry{
		Action:      models.ActionLogin,
		ModelType:   "User",
		ModelID:     token.UserID,
		UserID:      &userID,
		Description: "User logged in",
		Request:     services.RequestInfoFromContext(ctx),
	}
	if err := h.auditService.LogActivity(ctx, tenantID, entry); err != nil {
		logger.FromContext(ctx).Warn("failed to audit login", zap.Error(err))
	}
}

// Me handles GET /me
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	me, err := h.authService.Me(ctx, tenantID, userID)
	return respond(c, http.StatusOK, me, err)
}
