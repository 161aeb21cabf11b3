package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/dberrors"
	"github.com/studyhub-il/studyhub/internal/pkg/logger"
)

// SubscriptionRepository handles follows of forum posts
type SubscriptionRepository struct {
	db *pgxpool.Pool
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create follows a post
func (r *SubscriptionRepository) Create(ctx context.Context, s *models.Subscription) error {
	err := r.db.QueryRow(ctx,
		"INSERT INTO subscriptions (user_id, post_id) VALUES ($1, $2) RETURNING id, created_at",
		s.UserID, s.PostID).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "subscriptions_user_post_key"):
			return apperrors.ErrAlreadySubscribed
		case dberrors.IsForeignKeyError(err):
			return apperrors.ErrForumPostNotFound
		}
		logger.Error().Err(err).Int64("userID", s.UserID).Msg("Error creating subscription")
		return fmt.Errorf("error creating subscription: %w", err)
	}
	return nil
}

// Delete unfollows a post; unfollowing twice is not an error
func (r *SubscriptionRepository) Delete(ctx context.Context, userID, postID int64) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM subscriptions WHERE user_id = $1 AND post_id = $2", userID, postID); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error deleting subscription")
		return fmt.Errorf("error deleting subscription: %w", err)
	}
	return nil
}

// ListByUser returns the posts the user follows, newest first
func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID int64) ([]models.Subscription, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.user_id, s.post_id, s.created_at, p.title
		FROM subscriptions s
		JOIN forum_posts p ON p.id = s.post_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC, s.id DESC`, userID)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error listing subscriptions")
		return nil, fmt.Errorf("error listing subscriptions: %w", err)
	}
	subs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Subscription, error) {
		var s models.Subscription
		err := row.Scan(&s.ID, &s.UserID, &s.PostID, &s.CreatedAt, &s.PostTitle)
		return s, err
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error scanning subscription rows")
		return nil, err
	}
	return subs, nil
}

// Subscribers returns the ids of users following a post
func (r *SubscriptionRepository) Subscribers(ctx context.Context, postID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, "SELECT user_id FROM subscriptions WHERE post_id = $1 ORDER BY id", postID)
	if err != nil {
		logger.Error().Err(err).Int64("postID", postID).Msg("Error listing subscribers")
		return nil, fmt.Errorf("error listing subscribers: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
