package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/ticket-metrics/pkg/util"
)

const principalKey = "session_principal"

// Principal identifies the browser session behind a request.
type Principal struct {
	SessionID string
	Fresh     bool
}

// SessionMiddleware resolves the caller's session from the cookie or a bearer
// token, minting a new session when neither carries a valid token.
type SessionMiddleware struct {
	tokens       *TokenManager
	cookieName   string
	secureCookie bool
	logger       *zap.Logger
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tokens *TokenManager, cookieName string, secureCookie bool, logger *zap.Logger) *SessionMiddleware {
	if cookieName == "" {
		cookieName = "ticket_session"
	}
	return &SessionMiddleware{tokens: tokens, cookieName: cookieName, secureCookie: secureCookie, logger: logger}
}

// Handle attaches a Principal to every request.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	if token := m.tokenFromRequest(c); token != "" {
		claims, err := m.tokens.ParseToken(token)
		if err == nil {
			c.Locals(principalKey, &Principal{SessionID: claims.SessionID()})
			return c.Next()
		}
		m.logger.Debug("discarding invalid session token", zap.Error(err))
	}

	sessionID := uuid.NewString()
	token, expiresAt, err := m.tokens.GenerateToken(sessionID)
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("issue session token: %w", err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(m.tokens.TTL() / time.Second),
		HTTPOnly: true,
		Secure:   m.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals(principalKey, &Principal{SessionID: sessionID, Fresh: true})
	return c.Next()
}

func (m *SessionMiddleware) tokenFromRequest(c *fiber.Ctx) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies(m.cookieName)
}

// PrincipalFromContext retrieves the session principal.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// RequireSession rejects requests that reached a handler without a session.
func RequireSession(c *fiber.Ctx) (*Principal, error) {
	principal, ok := PrincipalFromContext(c)
	if !ok || principal.SessionID == "" {
		return nil, apperrors.NewUnauthorized("session required")
	}
	return principal, nil
}
