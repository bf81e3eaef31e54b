package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims are the claims carried by a session token.
// Subject holds the username.
type TokenClaims struct {
	jwt.RegisteredClaims
}

// TokenResponse is the body returned by the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}
