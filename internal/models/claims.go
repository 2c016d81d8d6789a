package models

import "github.com/golang-jwt/jwt/v5"

type UserClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the token was issued to an administrator.
func (c *UserClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
