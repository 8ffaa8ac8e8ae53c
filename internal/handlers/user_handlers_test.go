package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"bizsuite/internal/common"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type userRepoMock struct {
	repositories.UserRepository
	mock.Mock
}

func (m *userRepoMock) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, tenantID, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *userRepoMock) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	us, _ := args.Get(0).([]*models.User)
	return us, args.Error(1)
}

// setupUserRoutes authenticates every request as callerID inside tenantID
func setupUserRoutes(tenantID, callerID uuid.UUID) (*userRepoMock, *echo.Echo) {
	repo := &userRepoMock{}
	h := NewUserHandlers(repo)
	e := echo.New()
	e.Validator = common.NewRequestValidator()
	e.HTTPErrorHandler = common.NewHTTPErrorHandler()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := context.WithValue(c.Request().Context(), common.TenantIDKey, tenantID)
			ctx = context.WithValue(ctx, common.UserIDKey, callerID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	e.GET("/users", h.ListUsers)
	e.GET("/users/:id", h.GetUser)
	e.PATCH("/users/:id/status", h.UpdateUserStatus)
	return repo, e
}

func TestUserHandlers_ListEmpty(t *testing.T) {
	tenantID := uuid.New()
	repo, e := setupUserRoutes(tenantID, uuid.New())
	repo.On("List", mock.Anything, tenantID, 50, 0).Return(nil, nil)

	rec := doRequest(e, http.MethodGet, "/users", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data  []models.User `json:"data"`
		Total int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotNil(t, body.Data)
	assert.Zero(t, body.Total)
}

func TestUserHandlers_GetNotFound(t *testing.T) {
	tenantID, id := uuid.New(), uuid.New()
	repo, e := setupUserRoutes(tenantID, uuid.New())
	repo.On("GetByID", mock.Anything, tenantID, id).Return(nil, pgx.ErrNoRows)

	rec := doRequest(e, http.MethodGet, "/users/"+id.String(), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserHandlers_UpdateStatus(t *testing.T) {
	tenantID, callerID, otherID := uuid.New(), uuid.New(), uuid.New()

	t.Run("deactivates another user", func(t *testing.T) {
		repo, e := setupUserRoutes(tenantID, callerID)
		repo.On("GetByID", mock.Anything, tenantID, otherID).
			Return(&models.User{ID: otherID, TenantID: tenantID, Status: models.UserStatusActive}, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.ID == otherID && u.Status == models.UserStatusInactive
		})).Return(nil)

		rec := doJSON(e, http.MethodPatch, "/users/"+otherID.String()+"/status", `{"status":"inactive"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		repo.AssertExpectations(t)
	})

	t.Run("refuses to deactivate the caller", func(t *testing.T) {
		repo, e := setupUserRoutes(tenantID, callerID)

		rec := doJSON(e, http.MethodPatch, "/users/"+callerID.String()+"/status", `{"status":"inactive"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "CANNOT_DEACTIVATE_SELF", decodeError(t, rec).Error.Code)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		repo, e := setupUserRoutes(tenantID, callerID)

		rec := doJSON(e, http.MethodPatch, "/users/"+otherID.String()+"/status", `{"status":"banned"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
	})
}
