package models

import "time"

// TokenResponse is returned by signup and login
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	UserID      string    `json:"user_id"`
	TenantID    string    `json:"tenant_id"`
	IssuedAt    time.Time `json:"issued_at"`
}
