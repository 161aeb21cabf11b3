package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	appauth "github.com/studyhub-il/studyhub/internal/app/auth"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/app/repositories"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
)

const (
	statsCacheKey        = "stats:site"
	statsCacheTTL        = time.Minute
	adminRecentSummaries = 5
)

// StatsService serves the public site totals
type StatsService interface {
	Totals(ctx context.Context) (models.SiteStats, error)
}

type statsServiceImpl struct {
	stats  StatsStore
	cache  Cache
	logger zerolog.Logger
}

// NewStatsService creates a StatsService. cache may be nil.
func NewStatsService(stats StatsStore, cache Cache, logger zerolog.Logger) StatsService {
	return &statsServiceImpl{stats: stats, cache: cache, logger: logger}
}

func (s *statsServiceImpl) Totals(ctx context.Context) (models.SiteStats, error) {
	var totals models.SiteStats
	if s.cache != nil {
		if err := s.cache.GetJSON(ctx, statsCacheKey, &totals); err == nil {
			return totals, nil
		}
	}

	totals, err := s.stats.Totals(ctx)
	if err != nil {
		return models.SiteStats{}, fmt.Errorf("failed to load site totals: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, statsCacheKey, totals, statsCacheTTL); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to cache site totals")
		}
	}
	return totals, nil
}

// AdminService holds the administration operations. Every method requires
// the admin role.
type AdminService interface {
	Users(ctx context.Context, actor *appauth.Actor) ([]repositories.UserWithCounts, error)
	UpdateRole(ctx context.Context, actor *appauth.Actor, userID int64, role models.Role) error
	DeleteUser(ctx context.Context, actor *appauth.Actor, userID int64) error
	Stats(ctx context.Context, actor *appauth.Actor) (*dto.AdminStatsResponse, error)
	Export(ctx context.Context, actor *appauth.Actor) ([]byte, error)
}

type adminServiceImpl struct {
	users     UserStore
	summaries SummaryStore
	stats     StatsStore
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAdminService creates a new AdminService
func NewAdminService(users UserStore, summaries SummaryStore, stats StatsStore, logger zerolog.Logger) AdminService {
	return &adminServiceImpl{users: users, summaries: summaries, stats: stats, logger: logger, now: time.Now}
}

func (s *adminServiceImpl) Users(ctx context.Context, actor *appauth.Actor) ([]repositories.UserWithCounts, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.users.ListWithCounts(ctx)
}

func (s *adminServiceImpl) UpdateRole(ctx context.Context, actor *appauth.Actor, userID int64, role models.Role) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if !role.Valid() {
		return apperrors.NewValidationError("role", "תפקיד לא חוקי")
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	s.logger.Info().Int64("adminID", actor.UserID).Int64("userID", userID).Str("role", string(role)).Msg("User role changed")
	return nil
}

func (s *adminServiceImpl) DeleteUser(ctx context.Context, actor *appauth.Actor, userID int64) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if actor.UserID == userID {
		return apperrors.NewBadRequestError("לא ניתן למחוק את המשתמש שלך")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info().Int64("adminID", actor.UserID).Int64("userID", userID).Msg("User deleted")
	return nil
}

func (s *adminServiceImpl) Stats(ctx context.Context, actor *appauth.Actor) (*dto.AdminStatsResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	totals, err := s.stats.Totals(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.summaries.List(ctx, repositories.SummaryFilter{Limit: adminRecentSummaries})
	if err != nil {
		return nil, err
	}
	return &dto.AdminStatsResponse{SiteStats: totals, RecentSummaries: recent}, nil
}

// Export builds an XLSX workbook with a "Users" and a "Stats" sheet
func (s *adminServiceImpl) Export(ctx context.Context, actor *appauth.Actor) ([]byte, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	users, err := s.users.ListWithCounts(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.stats.Totals(ctx)
	if err != nil {
		return nil, err
	}
	return buildWorkbook(users, totals, s.now())
}

func buildWorkbook(users []repositories.UserWithCounts, totals models.SiteStats, generatedAt time.Time) (data []byte, err error) {
	f := excelize.NewFile()
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	const usersSheet, statsSheet = "Users", "Stats"
	if err := f.SetSheetName("Sheet1", usersSheet); err != nil {
		return nil, fmt.Errorf("failed to name users sheet: %w", err)
	}
	header := []any{"ID", "Full name", "Email", "Role", "Institution", "Summaries", "Forum posts", "Comments", "Ratings", "Joined"}
	if err := f.SetSheetRow(usersSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, u := range users {
		row := []any{
			u.ID, u.FullName, u.Email, string(u.Role), u.InstitutionName(),
			u.Counts.Summaries, u.Counts.ForumPosts, u.Counts.Comments, u.Counts.RatingsGiven,
			u.CreatedAt.Format(time.DateOnly),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(usersSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(statsSheet); err != nil {
		return nil, fmt.Errorf("failed to create stats sheet: %w", err)
	}
	rows := [][]any{
		{"Metric", "Value"},
		{"Users", totals.Users},
		{"Summaries", totals.Summaries},
		{"Forum posts", totals.ForumPosts},
		{"Tools", totals.Tools},
		{"Generated at", generatedAt.Format(time.RFC3339)},
	}
	for i := range rows {
		if err := f.SetSheetRow(statsSheet, fmt.Sprintf("A%d", i+1), &rows[i]); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
