package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	appauth "github.com/studyhub-il/studyhub/internal/app/auth"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
)

// stubFavorites keeps summary bookmarks per user
type stubFavorites struct {
	saved map[int64]map[int64]bool
}

func (s *stubFavorites) List(context.Context, *appauth.Actor) ([]models.Favorite, error) {
	return []models.Favorite{}, nil
}

func (s *stubFavorites) Add(_ context.Context, actor *appauth.Actor, req dto.AddFavoriteRequest) (*models.Favorite, error) {
	if req.SummaryID == nil {
		return nil, apperrors.NewBadRequestError("יש לבחור סיכום או כלי אחד בלבד")
	}
	if s.saved[actor.UserID] == nil {
		s.saved[actor.UserID] = map[int64]bool{}
	}
	if s.saved[actor.UserID][*req.SummaryID] {
		return nil, apperrors.ErrAlreadyFavorite
	}
	s.saved[actor.UserID][*req.SummaryID] = true
	return &models.Favorite{ID: 1, UserID: actor.UserID, SummaryID: req.SummaryID}, nil
}

func (s *stubFavorites) Remove(_ context.Context, actor *appauth.Actor, _ models.TargetType, id int64) error {
	delete(s.saved[actor.UserID], id)
	return nil
}

func TestFavoritesHTTP_DuplicateIsBadRequestAndRemoveIsIdempotent(t *testing.T) {
	r := newEngagementRouter(t)
	stub := &stubFavorites{saved: map[int64]map[int64]bool{}}
	c := NewSocialController(stub, nil, nil)

	router := gin.New()
	router.POST("/api/favorites", r.auth.JWTAuth(), c.AddFavorite)
	router.DELETE("/api/favorites/:type/:id", r.auth.JWTAuth(), c.RemoveFavorite)
	r.router = router

	w := r.do(http.MethodPost, "/api/favorites", `{"summaryId": 3}`, true)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = r.do(http.MethodPost, "/api/favorites", `{"summaryId": 3}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrorCodeInvalidRequest, resp.Error.Code)

	for i := 0; i < 2; i++ {
		w = r.do(http.MethodDelete, "/api/favorites/summary/3", "", true)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w = r.do(http.MethodPost, "/api/favorites", `{"summaryId": 3}`, true)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = r.do(http.MethodPost, "/api/favorites", `{"summaryId": 3}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
