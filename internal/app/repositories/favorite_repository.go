package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/dberrors"
	"github.com/studyhub-il/studyhub/internal/pkg/logger"
)

// FavoriteRepository handles bookmarks of summaries and tools
type FavoriteRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFavoriteRepository creates a new FavoriteRepository
func NewFavoriteRepository(db *pgxpool.Pool) *FavoriteRepository {
	return &FavoriteRepository{db: db, sb: statementBuilder()}
}

// List returns the user's favorites, newest first, with the bookmarked item
func (r *FavoriteRepository) List(ctx context.Context, userID int64) ([]models.Favorite, error) {
	rows, err := r.db.Query(ctx, `
		SELECT f.id, f.user_id, f.summary_id, f.tool_id, f.created_at,
		       s.title, s.file_path, s.avg_rating, s.rating_count, s.downloads, s.created_at,
		       t.title, t.url, t.category, t.avg_rating, t.rating_count, t.created_at
		FROM favorites f
		LEFT JOIN summaries s ON s.id = f.summary_id
		LEFT JOIN tools t ON t.id = f.tool_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC, f.id DESC`, userID)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error listing favorites")
		return nil, fmt.Errorf("error listing favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]models.Favorite, 0)
	for rows.Next() {
		var (
			f  models.Favorite
			sm struct {
				title, path *string
				avg         *float64
				count       *int
				downloads   *int64
				created     *time.Time
			}
			tl struct {
				title, url, category *string
				avg                  *float64
				count                *int
				created              *time.Time
			}
		)
		if err := rows.Scan(&f.ID, &f.UserID, &f.SummaryID, &f.ToolID, &f.CreatedAt,
			&sm.title, &sm.path, &sm.avg, &sm.count, &sm.downloads, &sm.created,
			&tl.title, &tl.url, &tl.category, &tl.avg, &tl.count, &tl.created,
		); err != nil {
			logger.Error().Err(err).Msg("Error scanning favorite row")
			return nil, err
		}
		if f.SummaryID != nil && sm.title != nil {
			f.Summary = &models.Summary{
				ID: *f.SummaryID, Title: *sm.title, FilePath: deref(sm.path), AvgRating: sm.avg,
				RatingCount: deref(sm.count), Downloads: deref(sm.downloads), CreatedAt: deref(sm.created),
			}
		}
		if f.ToolID != nil && tl.title != nil {
			f.Tool = &models.Tool{
				ID: *f.ToolID, Title: *tl.title, URL: deref(tl.url), Category: tl.category, AvgRating: tl.avg,
				RatingCount: deref(tl.count), CreatedAt: deref(tl.created),
			}
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// Add bookmarks a summary or a tool; exactly one of summaryID and toolID is set
func (r *FavoriteRepository) Add(ctx context.Context, f *models.Favorite) error {
	sql, args, err := r.sb.Insert("favorites").
		Columns("user_id", "summary_id", "tool_id").
		Values(f.UserID, f.SummaryID, f.ToolID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building add favorite SQL")
		return fmt.Errorf("failed to build add favorite query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&f.ID, &f.CreatedAt); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, ""):
			return apperrors.ErrAlreadyFavorite
		case dberrors.IsForeignKeyError(err):
			if f.SummaryID != nil {
				return apperrors.ErrSummaryNotFound
			}
			return apperrors.ErrToolNotFound
		}
		logger.Error().Err(err).Int64("userID", f.UserID).Msg("Error adding favorite")
		return fmt.Errorf("error adding favorite: %w", err)
	}
	return nil
}

// Remove deletes the bookmark; removing a missing bookmark is not an error
func (r *FavoriteRepository) Remove(ctx context.Context, userID int64, target models.TargetType, targetID int64) error {
	column := "summary_id"
	if target == models.TargetTool {
		column = "tool_id"
	}
	if _, err := r.db.Exec(ctx, "DELETE FROM favorites WHERE user_id = $1 AND "+column+" = $2", userID, targetID); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error removing favorite")
		return fmt.Errorf("error removing favorite: %w", err)
	}
	return nil
}

// FavoriteIDs returns the ids of items of target type the user bookmarked
func (r *FavoriteRepository) FavoriteIDs(ctx context.Context, userID int64, target models.TargetType) (map[int64]bool, error) {
	column := "summary_id"
	if target == models.TargetTool {
		column = "tool_id"
	}
	rows, err := r.db.Query(ctx,
		"SELECT "+column+" FROM favorites WHERE user_id = $1 AND "+column+" IS NOT NULL", userID)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error listing favorite ids")
		return nil, fmt.Errorf("error listing favorite ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
