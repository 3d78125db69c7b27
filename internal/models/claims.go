package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the structure of the JWT claims issued by the external
// identity provider. UserID is the opaque subject identifier; the core
// never interprets it beyond equality checks and key construction.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
