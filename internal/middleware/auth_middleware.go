package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appauth "github.com/studyhub-il/studyhub/internal/app/auth"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/auth"
	"github.com/studyhub-il/studyhub/internal/pkg/logger"
)

const actorKey = "studyhub.actor"

// TokenBlacklist reports access tokens revoked before their expiry
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware verifies bearer tokens and attaches the Actor to the request
type AuthMiddleware struct {
	jwtService *auth.JWTService
	blacklist  TokenBlacklist
}

// NewAuthMiddleware creates the middleware; blacklist may be nil
func NewAuthMiddleware(jwtService *auth.JWTService, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService, blacklist: blacklist}
}

// JWTAuth rejects requests without a valid Authorization header
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return m.requireToken(headerToken)
}

// WebSocketAuth is JWTAuth for the upgrade route: browsers cannot set headers
// on a WebSocket handshake, so the "token" query parameter is accepted too.
func (m *AuthMiddleware) WebSocketAuth() gin.HandlerFunc {
	return m.requireToken(func(c *gin.Context) string {
		if raw := headerToken(c); raw != "" {
			return raw
		}
		return c.Query("token")
	})
}

func (m *AuthMiddleware) requireToken(extract func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extract(c)
		if raw == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "נדרשת התחברות")
			return
		}

		actor, err := m.authenticate(c.Request.Context(), raw)
		if err != nil {
			code := dto.ErrorCodeInvalidToken
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrorCodeExpiredToken
			}
			abortUnauthorized(c, code, "טוקן לא תקין")
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// OptionalAuth attaches the Actor when a valid token is present and lets
// anonymous requests through otherwise.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := headerToken(c); raw != "" {
			if actor, err := m.authenticate(c.Request.Context(), raw); err == nil {
				c.Set(actorKey, actor)
			}
		}
		c.Next()
	}
}

// RoleRequired must run after JWTAuth
func (m *AuthMiddleware) RoleRequired(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := CurrentActor(c)
		if actor == nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "נדרשת התחברות")
			return
		}
		if actor.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewFailureResponse(
				dto.NewErrorDetail(dto.ErrorCodeForbidden, "אין לך הרשאה לבצע פעולה זו"),
			))
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(ctx context.Context, raw string) (*appauth.Actor, error) {
	token, err := auth.ExtractBearerToken(raw)
	if err != nil {
		return nil, err
	}

	claims, err := m.jwtService.ValidateAndExtractClaims(token)
	if err != nil {
		return nil, err
	}

	if m.blacklist != nil {
		revoked, err := m.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			// fail open: an unavailable cache must not lock everyone out
			logger.Warn().Err(err).Msg("Token blacklist lookup failed")
		} else if revoked {
			return nil, auth.ErrInvalidToken
		}
	}

	return &appauth.Actor{
		UserID:  claims.UserID,
		Email:   claims.Email,
		Role:    claims.Role,
		TokenID: claims.ID,
		// the blacklist entry written on logout lives exactly this long
		TokenTTL: m.jwtService.RemainingLifetime(claims),
	}, nil
}

func headerToken(c *gin.Context) string {
	return c.GetHeader("Authorization")
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewFailureResponse(dto.NewErrorDetail(code, message)))
}

// CurrentActor returns the authenticated Actor, or nil for anonymous requests
func CurrentActor(c *gin.Context) *appauth.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*appauth.Actor)
	return actor
}

// SetActor attaches an Actor to the request context
func SetActor(c *gin.Context, actor *appauth.Actor) {
	c.Set(actorKey, actor)
}
