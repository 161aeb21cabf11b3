package services

import (
	"context"

	"github.com/rs/zerolog"

	appauth "github.com/studyhub-il/studyhub/internal/app/auth"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
)

// FavoriteService manages bookmarks of summaries and tools
type FavoriteService interface {
	List(ctx context.Context, actor *appauth.Actor) ([]models.Favorite, error)
	Add(ctx context.Context, actor *appauth.Actor, req dto.AddFavoriteRequest) (*models.Favorite, error)
	Remove(ctx context.Context, actor *appauth.Actor, target models.TargetType, targetID int64) error
}

type favoriteServiceImpl struct {
	favorites FavoriteStore
	logger    zerolog.Logger
}

// NewFavoriteService creates a new FavoriteService
func NewFavoriteService(favorites FavoriteStore, logger zerolog.Logger) FavoriteService {
	return &favoriteServiceImpl{favorites: favorites, logger: logger}
}

func (s *favoriteServiceImpl) List(ctx context.Context, actor *appauth.Actor) ([]models.Favorite, error) {
	return s.favorites.List(ctx, actor.UserID)
}

func (s *favoriteServiceImpl) Add(ctx context.Context, actor *appauth.Actor, req dto.AddFavoriteRequest) (*models.Favorite, error) {
	if (req.SummaryID == nil) == (req.ToolID == nil) {
		return nil, apperrors.NewBadRequestError("יש לבחור סיכום או כלי אחד בלבד")
	}
	fav := &models.Favorite{UserID: actor.UserID, SummaryID: req.SummaryID, ToolID: req.ToolID}
	if err := s.favorites.Add(ctx, fav); err != nil {
		return nil, err
	}
	return fav, nil
}

func (s *favoriteServiceImpl) Remove(ctx context.Context, actor *appauth.Actor, target models.TargetType, targetID int64) error {
	if target != models.TargetSummary && target != models.TargetTool {
		return apperrors.NewBadRequestError("סוג מועדף לא מוכר")
	}
	return s.favorites.Remove(ctx, actor.UserID, target, targetID)
}
