package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/db"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/logger"
)

type targetTable struct {
	table       string
	ownerColumn string
	notFound    error
}

var targetTables = map[models.TargetType]targetTable{
	models.TargetSummary:   {"summaries", "uploaded_by_id", apperrors.ErrSummaryNotFound},
	models.TargetForumPost: {"forum_posts", "author_id", apperrors.ErrForumPostNotFound},
	models.TargetTool:      {"tools", "added_by_id", apperrors.ErrToolNotFound},
}

func lookupTarget(target models.TargetType) (targetTable, error) {
	t, ok := targetTables[target]
	if !ok {
		return targetTable{}, apperrors.NewBadRequestError("סוג תוכן לא מוכר")
	}
	return t, nil
}

// TargetInfo identifies the owner of a ratable item, used for notifications
type TargetInfo struct {
	OwnerID int64
	Title   string
}

// EngagementRepository stores ratings and comments for every target type
type EngagementRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEngagementRepository creates a new EngagementRepository
func NewEngagementRepository(db *pgxpool.Pool) *EngagementRepository {
	return &EngagementRepository{db: db, sb: statementBuilder()}
}

// Rate upserts the user's rating and recomputes the target's aggregate from
// all rating rows. The target row is locked for the duration so concurrent
// raters of one target are serialized and each sees a fresh version.
func (r *EngagementRepository) Rate(ctx context.Context, target models.TargetType, targetID, userID int64, value int) (models.RatingAggregate, error) {
	tt, err := lookupTarget(target)
	if err != nil {
		return models.RatingAggregate{}, err
	}

	var agg models.RatingAggregate
	err = db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, "SELECT id FROM "+tt.table+" WHERE id = $1 FOR UPDATE", targetID).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return tt.notFound
			}
			return fmt.Errorf("failed to lock rating target: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO ratings (target_type, target_id, user_id, rating)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (target_type, target_id, user_id)
			DO UPDATE SET rating = EXCLUDED.rating, updated_at = NOW()`,
			target, targetID, userID, value); err != nil {
			return fmt.Errorf("failed to upsert rating: %w", err)
		}

		rows, err := tx.Query(ctx,
			"SELECT rating FROM ratings WHERE target_type = $1 AND target_id = $2", target, targetID)
		if err != nil {
			return fmt.Errorf("failed to read ratings: %w", err)
		}
		values, err := pgx.CollectRows(rows, pgx.RowTo[int])
		if err != nil {
			return fmt.Errorf("failed to scan ratings: %w", err)
		}

		agg = models.NewRatingAggregate(values)
		return tx.QueryRow(ctx,
			"UPDATE "+tt.table+" SET avg_rating = $1, rating_count = $2, rating_version = rating_version + 1 WHERE id = $3 RETURNING rating_version",
			agg.Average, agg.Count, targetID).Scan(&agg.Version)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrResourceNotFound) {
			logger.Error().Err(err).Str("target", string(target)).Int64("targetID", targetID).Msg("Error rating target")
		}
		return models.RatingAggregate{}, err
	}
	return agg, nil
}

// Aggregate returns the stored aggregate of a target
func (r *EngagementRepository) Aggregate(ctx context.Context, target models.TargetType, targetID int64) (models.RatingAggregate, error) {
	tt, err := lookupTarget(target)
	if err != nil {
		return models.RatingAggregate{}, err
	}
	var agg models.RatingAggregate
	err = r.db.QueryRow(ctx,
		"SELECT avg_rating, rating_count, rating_version FROM "+tt.table+" WHERE id = $1", targetID).
		Scan(&agg.Average, &agg.Count, &agg.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return agg, tt.notFound
		}
		logger.Error().Err(err).Str("target", string(target)).Msg("Error reading rating aggregate")
		return agg, fmt.Errorf("error reading rating aggregate: %w", err)
	}
	return agg, nil
}

// Target returns the owner and title of a target, or its not-found error
func (r *EngagementRepository) Target(ctx context.Context, target models.TargetType, targetID int64) (TargetInfo, error) {
	tt, err := lookupTarget(target)
	if err != nil {
		return TargetInfo{}, err
	}
	var info TargetInfo
	err = r.db.QueryRow(ctx,
		"SELECT "+tt.ownerColumn+", title FROM "+tt.table+" WHERE id = $1", targetID).
		Scan(&info.OwnerID, &info.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return info, tt.notFound
		}
		logger.Error().Err(err).Str("target", string(target)).Msg("Error reading target")
		return info, fmt.Errorf("error reading target: %w", err)
	}
	return info, nil
}

// Ratings lists a target's ratings, newest first, with their authors
func (r *EngagementRepository) Ratings(ctx context.Context, target models.TargetType, targetID int64) ([]models.Rating, error) {
	sql, args, err := r.sb.Select(
		"r.id", "r.target_type", "r.target_id", "r.user_id", "r.rating", "r.created_at", "r.updated_at",
		"u.full_name", "u.profile_picture",
	).From("ratings r").
		Join("users u ON u.id = r.user_id").
		Where(squirrel.Eq{"r.target_type": target, "r.target_id": targetID}).
		OrderBy("r.updated_at DESC", "r.id DESC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list ratings SQL")
		return nil, fmt.Errorf("failed to build list ratings query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing ratings")
		return nil, fmt.Errorf("error listing ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]models.Rating, 0)
	for rows.Next() {
		var (
			rt      models.Rating
			name    string
			picture *string
		)
		if err := rows.Scan(&rt.ID, &rt.TargetType, &rt.TargetID, &rt.UserID, &rt.Rating, &rt.CreatedAt, &rt.UpdatedAt,
			&name, &picture); err != nil {
			logger.Error().Err(err).Msg("Error scanning rating row")
			return nil, err
		}
		rt.User = userRef(rt.UserID, name, picture)
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}

// UserRating returns the user's rating of a target, or nil
func (r *EngagementRepository) UserRating(ctx context.Context, target models.TargetType, targetID, userID int64) (*int, error) {
	var value int
	err := r.db.QueryRow(ctx,
		"SELECT rating FROM ratings WHERE target_type = $1 AND target_id = $2 AND user_id = $3",
		target, targetID, userID).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.Error().Err(err).Msg("Error reading user rating")
		return nil, fmt.Errorf("error reading user rating: %w", err)
	}
	return &value, nil
}

// AddComment appends a comment if the target still exists
func (r *EngagementRepository) AddComment(ctx context.Context, c *models.Comment) error {
	tt, err := lookupTarget(c.TargetType)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO comments (target_type, target_id, author_id, text)
		SELECT $1, $2, $3, $4
		WHERE EXISTS (SELECT 1 FROM `+tt.table+` WHERE id = $2)
		RETURNING id, created_at`,
		c.TargetType, c.TargetID, c.AuthorID, c.Text).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tt.notFound
		}
		logger.Error().Err(err).Msg("Error adding comment")
		return fmt.Errorf("error adding comment: %w", err)
	}

	var (
		name    string
		picture *string
	)
	if err := r.db.QueryRow(ctx, "SELECT full_name, profile_picture FROM users WHERE id = $1", c.AuthorID).
		Scan(&name, &picture); err != nil {
		logger.Warn().Err(err).Int64("userID", c.AuthorID).Msg("Comment author lookup failed")
		return nil
	}
	c.Author = userRef(c.AuthorID, name, picture)
	return nil
}

// Comments lists a target's comments in insertion order
func (r *EngagementRepository) Comments(ctx context.Context, target models.TargetType, targetID int64) ([]models.Comment, error) {
	sql, args, err := r.sb.Select(
		"c.id", "c.target_type", "c.target_id", "c.author_id", "c.text", "c.created_at",
		"u.full_name", "u.profile_picture",
	).From("comments c").
		Join("users u ON u.id = c.author_id").
		Where(squirrel.Eq{"c.target_type": target, "c.target_id": targetID}).
		OrderBy("c.created_at ASC", "c.id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list comments SQL")
		return nil, fmt.Errorf("failed to build list comments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing comments")
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var (
			c       models.Comment
			name    string
			picture *string
		)
		if err := rows.Scan(&c.ID, &c.TargetType, &c.TargetID, &c.AuthorID, &c.Text, &c.CreatedAt,
			&name, &picture); err != nil {
			logger.Error().Err(err).Msg("Error scanning comment row")
			return nil, err
		}
		c.Author = userRef(c.AuthorID, name, picture)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
