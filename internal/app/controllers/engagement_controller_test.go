package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/studyhub-il/studyhub/internal/app/auth"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/middleware"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type rateCall struct {
	userID int64
	target models.TargetType
	id     int64
	value  int
}

// stubEngagement accepts ratings for summary 1 only
type stubEngagement struct {
	rates    []rateCall
	comments []string
}

func (s *stubEngagement) Rate(_ context.Context, actor *appauth.Actor, target models.TargetType, id int64, rating int) (*dto.RateResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, apperrors.NewValidationError("rating", "הדירוג חייב להיות מספר שלם בין 1 ל-5")
	}
	if target != models.TargetSummary || id != 1 {
		return nil, apperrors.ErrSummaryNotFound
	}
	s.rates = append(s.rates, rateCall{actor.UserID, target, id, rating})
	avg := float64(rating)
	return &dto.RateResponse{Rating: rating, AvgRating: &avg, TotalRatings: 1, Version: int64(len(s.rates))}, nil
}

func (s *stubEngagement) Ratings(_ context.Context, viewer *appauth.Actor, _ models.TargetType, _ int64) (*dto.RatingsResponse, error) {
	resp := &dto.RatingsResponse{}
	if viewer != nil {
		v := 4
		resp.UserRating = &v
	}
	return resp, nil
}

func (s *stubEngagement) Comment(_ context.Context, actor *appauth.Actor, target models.TargetType, id int64, text string) (*models.Comment, error) {
	s.comments = append(s.comments, text)
	return &models.Comment{ID: int64(len(s.comments)), TargetType: target, TargetID: id, AuthorID: actor.UserID, Text: text, CreatedAt: time.Now()}, nil
}

func (s *stubEngagement) Comments(context.Context, models.TargetType, int64) ([]models.Comment, error) {
	return []models.Comment{}, nil
}

type engagementRouter struct {
	router *gin.Engine
	stub   *stubEngagement
	auth   *middleware.AuthMiddleware
	token  string
}

func newEngagementRouter(t *testing.T) *engagementRouter {
	t.Helper()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})
	pair, err := jwtService.GenerateTokenPair(&models.User{ID: 7, Email: "dana@example.com", Role: models.RoleUser})
	require.NoError(t, err)

	stub := &stubEngagement{}
	c := NewEngagementController(stub)
	mw := middleware.NewAuthMiddleware(jwtService, nil)

	router := gin.New()
	router.POST("/api/summaries/:id/rate", mw.JWTAuth(), c.Rate(models.TargetSummary))
	router.GET("/api/summaries/:id/ratings", mw.OptionalAuth(), c.Ratings(models.TargetSummary))
	router.POST("/api/summaries/:id/comments", mw.JWTAuth(), c.AddComment(models.TargetSummary))
	return &engagementRouter{router: router, stub: stub, auth: mw, token: pair.AccessToken}
}

func (r *engagementRouter) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	w := httptest.NewRecorder()
	r.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.APIResponse {
	t.Helper()
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRate_RequiresAuthentication(t *testing.T) {
	r := newEngagementRouter(t)

	w := r.do(http.MethodPost, "/api/summaries/1/rate", `{"rating":5}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, decodeResponse(t, w).Success)

	w = r.do(http.MethodPost, "/api/summaries/1/comments", `{"text":"שלום"}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Empty(t, r.stub.rates)
	assert.Empty(t, r.stub.comments)
}

func TestRate_StatusCodes(t *testing.T) {
	r := newEngagementRouter(t)

	w := r.do(http.MethodPost, "/api/summaries/1/rate", `{"rating":4}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data dto.RateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Data.Rating)
	require.Len(t, r.stub.rates, 1)
	assert.Equal(t, int64(7), r.stub.rates[0].userID)

	for _, payload := range []string{`{"rating":0}`, `{"rating":6}`, `{}`, `{"rating":"five"}`, `not json`} {
		w = r.do(http.MethodPost, "/api/summaries/1/rate", payload, true)
		assert.Equal(t, http.StatusBadRequest, w.Code, payload)
	}
	assert.Len(t, r.stub.rates, 1)

	w = r.do(http.MethodPost, "/api/summaries/2/rate", `{"rating":3}`, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = r.do(http.MethodPost, "/api/summaries/abc/rate", `{"rating":3}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRatings_AnonymousViewer(t *testing.T) {
	r := newEngagementRouter(t)

	w := r.do(http.MethodGet, "/api/summaries/1/ratings", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userRating":null`)

	w = r.do(http.MethodGet, "/api/summaries/1/ratings", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userRating":4`)
}

func TestAddComment_Created(t *testing.T) {
	r := newEngagementRouter(t)

	w := r.do(http.MethodPost, "/api/summaries/1/comments", `{"text":"סיכום מצוין"}`, true)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{"סיכום מצוין"}, r.stub.comments)

	w = r.do(http.MethodPost, "/api/summaries/1/comments", `{}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, r.stub.comments, 1)
}
