// Package middleware provides the authentication and authorization
// middleware of the HTTP API.
package middleware

import (
	"context"
	"errors"
	"strings"

	apperrors "kudi/internal/errors"
	"kudi/internal/logger"
	"kudi/internal/models"
	"kudi/internal/utils"
	"kudi/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const callerKey = "caller"

// Caller is the authenticated principal behind a request.
type Caller struct {
	UserID  string
	Email   string
	IsAdmin bool
}

// UserLookup resolves the ledger's user record for a token subject.
type UserLookup interface {
	GetByUserID(ctx context.Context, userID string) (*models.User, error)
}

// AuthMiddleware validates bearer tokens and attaches the Caller.
type AuthMiddleware struct {
	secret string
	users  UserLookup
	log    *zap.Logger
}

func NewAuthMiddleware(secret string, users UserLookup, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		secret: secret,
		users:  users,
		log:    logger.OrNop(log).Named("auth"),
	}
}

// Handler rejects requests without a valid token and callers whose user
// record is blocked or inactive. Subjects the ledger has no record of yet
// pass; their wallet is created on first use.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return response.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return response.Error(c, fiber.StatusUnauthorized, "invalid authorization format")
	}

	claims, err := utils.ParseToken(strings.TrimPrefix(authHeader, "Bearer "), m.secret)
	if err != nil {
		m.log.Debug("token rejected", zap.Error(err))
		return response.Error(c, fiber.StatusUnauthorized, "invalid token")
	}

	user, err := m.users.GetByUserID(c.UserContext(), claims.UserID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
	case err != nil:
		m.log.Error("user lookup failed", zap.String("user_id", claims.UserID), zap.Error(err))
		return response.FromError(c, err)
	case user.IsBlocked || !user.IsActive:
		m.log.Info("blocked user rejected", zap.String("user_id", claims.UserID))
		return response.Forbidden(c, "account is blocked")
	}

	caller := &Caller{UserID: claims.UserID, Email: claims.Email, IsAdmin: claims.IsAdmin()}
	if user != nil {
		caller.IsAdmin = caller.IsAdmin && user.Role == models.RoleAdmin
	}
	c.Locals(callerKey, caller)
	return c.Next()
}

// AdminAuthMiddleware lets only admin callers through.
func AdminAuthMiddleware(c *fiber.Ctx) error {
	caller, ok := CallerFrom(c)
	if !ok {
		return response.Unauthorized(c)
	}
	if !caller.IsAdmin {
		return response.Forbidden(c, "admin privileges required")
	}
	return c.Next()
}

// CallerFrom returns the Caller attached by AuthMiddleware.
func CallerFrom(c *fiber.Ctx) (*Caller, bool) {
	caller, ok := c.Locals(callerKey).(*Caller)
	return caller, ok && caller != nil
}
