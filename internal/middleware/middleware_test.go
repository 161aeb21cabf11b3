package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/auth"
	"github.com/studyhub-il/studyhub/internal/pkg/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubBlacklist map[string]bool

func (s stubBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return s[jti], nil
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.APIResponse {
	t.Helper()
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestJWTAuth(t *testing.T) {
	jwtService := newJWT()
	pair, err := jwtService.GenerateTokenPair(&models.User{ID: 5, Email: "a@b.c", Role: models.RoleUser})
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(pair.AccessToken)
	require.NoError(t, err)

	mw := NewAuthMiddleware(jwtService, stubBlacklist{})
	router := gin.New()
	router.GET("/me", mw.JWTAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentActor(c).UserID})
	})
	router.GET("/ws", mw.WebSocketAuth(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeUnauthorized, decode(t, w).Error.Code)
	})

	t.Run("valid header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":5}`, w.Body.String())
	})

	t.Run("query token on websocket route", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+pair.AccessToken, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("query token ignored elsewhere", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+pair.AccessToken, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeUnauthorized, decode(t, w).Error.Code)
	})

	t.Run("websocket route without token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		revoked := NewAuthMiddleware(jwtService, stubBlacklist{claims.ID: true})
		r := gin.New()
		r.GET("/me", revoked.JWTAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOptionalAuthAndRoleRequired(t *testing.T) {
	jwtService := newJWT()
	admin, err := jwtService.GenerateTokenPair(&models.User{ID: 1, Email: "admin@x", Role: models.RoleAdmin})
	require.NoError(t, err)
	user, err := jwtService.GenerateTokenPair(&models.User{ID: 2, Email: "user@x", Role: models.RoleUser})
	require.NoError(t, err)

	mw := NewAuthMiddleware(jwtService, nil)
	router := gin.New()
	router.GET("/public", mw.OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"viewer": CurrentActor(c).ViewerID()})
	})
	router.GET("/admin", mw.JWTAuth(), mw.RoleRequired(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	call := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.JSONEq(t, `{"viewer":0}`, call("/public", "").Body.String())
	assert.JSONEq(t, `{"viewer":0}`, call("/public", "broken.token.value").Body.String())
	assert.JSONEq(t, `{"viewer":2}`, call("/public", user.AccessToken).Body.String())
	assert.JSONEq(t, `{"viewer":0}`, call("/public?token="+user.AccessToken, "").Body.String())

	assert.Equal(t, http.StatusForbidden, call("/admin", user.AccessToken).Code)
	assert.Equal(t, http.StatusOK, call("/admin", admin.AccessToken).Code)
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"summary not found", fmt.Errorf("load: %w", apperrors.ErrSummaryNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "הסיכום לא נמצא"},
		{"custom not found", apperrors.NewResourceNotFoundError("אין כזה"), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "אין כזה"},
		{"forbidden", apperrors.NewForbiddenError("רק היוצר יכול למחוק"), http.StatusForbidden, dto.ErrorCodeForbidden, "רק היוצר יכול למחוק"},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "נדרשת התחברות"},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "אימייל או סיסמה שגויים"},
		{"email exists", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "משתמש עם אימייל זה כבר קיים"},
		{"already favorite", apperrors.ErrAlreadyFavorite, http.StatusBadRequest, dto.ErrorCodeInvalidRequest, "הפריט כבר נמצא במועדפים"},
		{"validation", apperrors.NewValidationError("rating", "דירוג חייב להיות בין 1 ל-5"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "דירוג חייב להיות בין 1 ל-5"},
		{"quota", apperrors.ErrTooManyRequests, http.StatusTooManyRequests, dto.ErrorCodeRateLimited, "יותר מדי בקשות, נסה שוב מאוחר יותר"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "שגיאת שרת פנימית"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
		})
	}
}

func TestHandleAPIError_ValidationField(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	HandleAPIError(c, apperrors.NewValidationError("text", "התגובה ריקה"))

	assert.Equal(t, "text", decode(t, w).Error.Field)
}

func TestHandleValidationError(t *testing.T) {
	type body struct {
		Rating int `json:"rating" binding:"required,gte=1,lte=5"`
	}

	router := gin.New()
	router.POST("/rate", func(c *gin.Context) {
		var req body
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	for _, payload := range []string{`{"rating":9}`, `{}`, `{"rating":`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/rate", jsonBody(payload))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, payload)
		assert.Equal(t, dto.ErrorCodeValidationFailed, decode(t, w).Error.Code)
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewKeyedLimiter(rate.Every(time.Hour), 2, time.Minute)
	router := gin.New()
	router.Use(RateLimit(limiter))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestQuotaLimit(t *testing.T) {
	jwtService := newJWT()
	pair, err := jwtService.GenerateTokenPair(&models.User{ID: 9, Email: "q@x", Role: models.RoleUser})
	require.NoError(t, err)

	mw := NewAuthMiddleware(jwtService, nil)
	router := gin.New()
	router.POST("/tools", mw.JWTAuth(), QuotaLimit(ratelimit.NewLocalQuota(), "tools:create", 2, time.Hour, "הגעת למגבלה"),
		func(c *gin.Context) { c.Status(http.StatusCreated) })

	var last *httptest.ResponseRecorder
	for range 3 {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tools", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		router.ServeHTTP(last, req)
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "הגעת למגבלה", decode(t, last).Error.Message)
	assert.Equal(t, "3600", last.Header().Get("Retry-After"))
}
