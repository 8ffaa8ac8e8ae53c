package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bizsuite/internal/common"
	"bizsuite/internal/logger"
	"bizsuite/internal/services"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const jwtContextKey = "user"

// JWTConfig selects between the local HS256 secret and a remote JWKS endpoint
type JWTConfig struct {
	Secret  string
	JWKSURL string
}

// JWTMiddleware validates bearer tokens and puts the user and tenant IDs on the request context.
// The returned stop func releases the JWKS refresh goroutine when one was started.
func JWTMiddleware(cfg JWTConfig) (echo.MiddlewareFunc, func(), error) {
	stop := func() {}
	jwtCfg := echojwt.Config{
		ContextKey: jwtContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(services.TokenClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or missing token")
		},
	}

	if cfg.JWKSURL != "" {
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
		})
		if err != nil {
			return nil, stop, fmt.Errorf("failed to load JWKS from %s: %w", cfg.JWKSURL, err)
		}
		jwtCfg.KeyFunc = jwks.Keyfunc
		stop = jwks.EndBackground
	} else {
		if cfg.Secret == "" {
			return nil, stop, errors.New("jwt secret is required when no JWKS URL is configured")
		}
		jwtCfg.SigningKey = []byte(cfg.Secret)
		jwtCfg.SigningMethod = jwt.SigningMethodHS256.Alg()
	}

	validate := echojwt.WithConfig(jwtCfg)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return validate(withIdentity(next))
	}, stop, nil
}

// withIdentity copies the verified claims onto the request context
func withIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get(jwtContextKey).(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}
		claims, ok := token.Claims.(*services.TokenClaims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
		}

		userID, tenantID, err := identityFromClaims(claims)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}

		ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
		ctx = context.WithValue(ctx, common.TenantIDKey, tenantID)
		ctx = logger.WithTenantID(ctx, tenantID.String())
		ctx = logger.WithUserID(ctx, userID.String())
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// identityFromClaims falls back to sub for tokens minted by an external identity provider
func identityFromClaims(claims *services.TokenClaims) (uuid.UUID, uuid.UUID, error) {
	rawUser := claims.UserID
	if rawUser == "" {
		rawUser = claims.Subject
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New("invalid user_id in token")
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New("missing tenant_id in token")
	}
	return userID, tenantID, nil
}

// GetTenantIDFromContext extracts tenant ID from request context
func GetTenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	return common.GetTenantIDFromContext(ctx)
}
