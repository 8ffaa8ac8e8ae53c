package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"bizsuite/internal/common"
	"bizsuite/internal/logger"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInactiveUser is returned when the account exists but may not log in
var ErrInactiveUser = errors.New("user account is not active")

// AuthService handles signup, login and JWT issuance
type AuthService interface {
	Signup(ctx context.Context, req *SignupRequest) (*models.TokenResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*models.TokenResponse, error)
	Me(ctx context.Context, tenantID, userID uuid.UUID) (*MeResponse, error)
	GenerateToken(userID, tenantID uuid.UUID) (*models.TokenResponse, error)
	ValidateToken(token string) (*TokenClaims, error)
}

type authService struct {
	userRepo  repositories.UserRepository
	rbac      RBACService
	jwtSecret []byte
	issuer    string
	tokenTTL  time.Duration
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

type SignupRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	TenantName string `json:"tenant_name" validate:"required,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type MeResponse struct {
	User        *models.User `json:"user"`
	Permissions []string     `json:"permissions"`
}

func NewAuthService(userRepo repositories.UserRepository, rbac RBACService, jwtSecret, issuer string, tokenTTL time.Duration) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &authService{
		userRepo:  userRepo,
		rbac:      rbac,
		jwtSecret: []byte(jwtSecret),
		issuer:    issuer,
		tokenTTL:  tokenTTL,
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// subdomainFor derives a subdomain from the organisation name with a short random suffix
func subdomainFor(name string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if len(slug) > 40 {
		slug = slug[:40]
	}
	if slug == "" {
		slug = "org"
	}
	return slug + "-" + uuid.NewString()[:6]
}

func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*models.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.NewFieldError("email", "The email has already been taken.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tenant := &models.Tenant{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.TenantName),
		Subdomain: subdomainFor(req.TenantName),
		Status:    models.TenantStatusActive,
	}

	firstName, lastName := req.Name, ""
	if idx := strings.Index(strings.TrimSpace(req.Name), " "); idx > 0 {
		firstName, lastName = strings.TrimSpace(req.Name)[:idx], strings.TrimSpace(strings.TrimSpace(req.Name)[idx+1:])
	}
	user := &models.User{
		ID:           uuid.New(),
		TenantID:     tenant.ID,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Status:       models.UserStatusActive,
	}

	description := "Full access"
	role := &models.Role{ID: uuid.New(), TenantID: tenant.ID, Name: "admin", Description: &description}

	if err := s.userRepo.CreateAccount(ctx, tenant, user, role, models.AllPermissions); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("account created", zap.String("tenant_id", tenant.ID.String()), zap.String("user_id", user.ID.String()))
	return s.GenerateToken(user.ID, tenant.ID)
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*models.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if common.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != models.UserStatusActive {
		return nil, ErrInactiveUser
	}

	return s.GenerateToken(user.ID, user.TenantID)
}

func (s *authService) Me(ctx context.Context, tenantID, userID uuid.UUID) (*MeResponse, error) {
	user, err := s.userRepo.GetByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	perms, err := s.rbac.GetUserPermissions(ctx, userID, tenantID)
	if err != nil {
		return nil, err
	}
	return &MeResponse{User: user, Permissions: perms}, nil
}

// GenerateToken issues an HS256 access token
func (s *authService) GenerateToken(userID, tenantID uuid.UUID) (*models.TokenResponse, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID:   userID.String(),
		TenantID: tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		UserID:      userID.String(),
		TenantID:    tenantID.String(),
		IssuedAt:    now,
	}, nil
}

// ValidateToken validates JWT access token
func (s *authService) ValidateToken(token string) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if claims, ok := parsed.Claims.(*TokenClaims); ok && parsed.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token claims")
}
