package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	appauth "github.com/studyhub-il/studyhub/internal/app/auth"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/listing"
)

// ToolService manages shared study tools
type ToolService interface {
	List(ctx context.Context, viewer *appauth.Actor, params dto.ListParams, page, size int) (*dto.PaginatedResponse[dto.ToolItem], error)
	MyContent(ctx context.Context, actor *appauth.Actor) ([]dto.ToolItem, error)
	Get(ctx context.Context, viewer *appauth.Actor, id int64) (*dto.ToolItem, error)
	Create(ctx context.Context, actor *appauth.Actor, req dto.CreateToolRequest) (*models.Tool, error)
	Update(ctx context.Context, actor *appauth.Actor, id int64, req dto.UpdateToolRequest) (*models.Tool, error)
	Delete(ctx context.Context, actor *appauth.Actor, id int64) error
}

type toolServiceImpl struct {
	tools     ToolStore
	favorites FavoriteStore
	logger    zerolog.Logger
	now       func() time.Time
}

// NewToolService creates a new ToolService
func NewToolService(tools ToolStore, favorites FavoriteStore, logger zerolog.Logger) ToolService {
	return &toolServiceImpl{tools: tools, favorites: favorites, logger: logger, now: time.Now}
}

var toolAccessors = listing.Accessors[dto.ToolItem]{
	Text:     func(t dto.ToolItem) []string { return []string{t.Title, t.DescriptionText(), t.URL} },
	Category: func(t dto.ToolItem) string { return t.CategoryName() },
	Created:  func(t dto.ToolItem) time.Time { return t.CreatedAt },
	Rating:   func(t dto.ToolItem) float64 { return deref(t.AvgRating) },
	Title:    func(t dto.ToolItem) string { return t.Title },
}

func (s *toolServiceImpl) List(ctx context.Context, viewer *appauth.Actor, params dto.ListParams, page, size int) (*dto.PaginatedResponse[dto.ToolItem], error) {
	var addedBy *int64
	if params.Mine && viewer != nil {
		addedBy = &viewer.UserID
	}
	items, err := s.load(ctx, viewer, addedBy)
	if err != nil {
		return nil, err
	}
	paged, info := listing.Apply(items, listQuery(params, page, size), toolAccessors, s.now())
	return &dto.PaginatedResponse[dto.ToolItem]{Items: paged, Pagination: info}, nil
}

func (s *toolServiceImpl) MyContent(ctx context.Context, actor *appauth.Actor) ([]dto.ToolItem, error) {
	return s.load(ctx, actor, &actor.UserID)
}

func (s *toolServiceImpl) load(ctx context.Context, viewer *appauth.Actor, addedBy *int64) ([]dto.ToolItem, error) {
	tools, err := s.tools.List(ctx, addedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	favorites, err := s.favoriteIDs(ctx, viewer)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ToolItem, 0, len(tools))
	for _, t := range tools {
		items = append(items, dto.ToolItem{Tool: t, IsFavorite: favorites[t.ID]})
	}
	return items, nil
}

func (s *toolServiceImpl) favoriteIDs(ctx context.Context, viewer *appauth.Actor) (map[int64]bool, error) {
	if viewer == nil || s.favorites == nil {
		return map[int64]bool{}, nil
	}
	ids, err := s.favorites.FavoriteIDs(ctx, viewer.UserID, models.TargetTool)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	return ids, nil
}

func (s *toolServiceImpl) Get(ctx context.Context, viewer *appauth.Actor, id int64) (*dto.ToolItem, error) {
	tool, err := s.tools.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	favorites, err := s.favoriteIDs(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return &dto.ToolItem{Tool: *tool, IsFavorite: favorites[id]}, nil
}

func (s *toolServiceImpl) Create(ctx context.Context, actor *appauth.Actor, req dto.CreateToolRequest) (*models.Tool, error) {
	tool := &models.Tool{
		Title:       strings.TrimSpace(req.Title),
		URL:         strings.TrimSpace(req.URL),
		Description: trimmedOrNil(req.Description),
		Category:    trimmedOrNil(req.Category),
		AddedByID:   actor.UserID,
	}
	if err := s.tools.Create(ctx, tool); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("toolID", tool.ID).Int64("userID", actor.UserID).Msg("Tool added")
	return s.tools.GetByID(ctx, tool.ID)
}

func (s *toolServiceImpl) Update(ctx context.Context, actor *appauth.Actor, id int64, req dto.UpdateToolRequest) (*models.Tool, error) {
	tool, err := s.tools.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.RequireOwnerOrAdmin(tool.AddedByID, "אין לך הרשאה לערוך כלי זה"); err != nil {
		return nil, err
	}

	if req.Title != nil {
		tool.Title = strings.TrimSpace(*req.Title)
	}
	if req.URL != nil {
		tool.URL = strings.TrimSpace(*req.URL)
	}
	if req.Description != nil {
		tool.Description = trimmedOrNil(req.Description)
	}
	if req.Category != nil {
		tool.Category = trimmedOrNil(req.Category)
	}
	if err := s.tools.Update(ctx, tool); err != nil {
		return nil, err
	}
	return s.tools.GetByID(ctx, id)
}

func (s *toolServiceImpl) Delete(ctx context.Context, actor *appauth.Actor, id int64) error {
	tool, err := s.tools.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.RequireOwnerOrAdmin(tool.AddedByID, "אין לך הרשאה למחוק כלי זה"); err != nil {
		return err
	}
	if err := s.tools.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("toolID", id).Int64("userID", actor.UserID).Msg("Tool deleted")
	return nil
}
