package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/dberrors"
	"github.com/studyhub-il/studyhub/internal/pkg/logger"
)

// TokenRepository stores refresh tokens and single-use mailed tokens
type TokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: db, sb: statementBuilder()}
}

// CreateRefreshToken stores a new refresh token
func (r *TokenRepository) CreateRefreshToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	sql, args, err := r.sb.Insert("refresh_tokens").
		Columns("token", "user_id", "expires_at").
		Values(token, userID, expiresAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create token SQL")
		return fmt.Errorf("failed to build create token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "refresh_tokens_token_key") {
			logger.Warn().Int64("userID", userID).Msg("Attempted to create duplicate token")
			return apperrors.ErrTokenInvalid
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing create token query")
		return fmt.Errorf("error creating token: %w", err)
	}
	return nil
}

// GetRefreshToken retrieves a refresh token by value
func (r *TokenRepository) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	sql, args, err := r.sb.Select("id", "user_id", "token", "expires_at", "is_revoked", "created_at").
		From("refresh_tokens").
		Where(squirrel.Eq{"token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get token SQL")
		return nil, fmt.Errorf("failed to build get token query: %w", err)
	}

	var t models.RefreshToken
	err = r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.IsRevoked, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Msg("Error scanning token row")
		return nil, fmt.Errorf("error getting token: %w", err)
	}
	return &t, nil
}

// RevokeRefreshToken marks one refresh token revoked
func (r *TokenRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, "UPDATE refresh_tokens SET is_revoked = TRUE WHERE token = $1", token)
	if err != nil {
		logger.Error().Err(err).Msg("Error revoking token")
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}

// RevokeAllForUser revokes every refresh token of the user
func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, "UPDATE refresh_tokens SET is_revoked = TRUE WHERE user_id = $1 AND NOT is_revoked", userID)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error revoking user tokens")
		return fmt.Errorf("error revoking user tokens: %w", err)
	}
	return nil
}

// CreateOneTimeToken stores a mailed token, invalidating earlier unused
// tokens of the same kind for the user.
func (r *TokenRepository) CreateOneTimeToken(ctx context.Context, t *models.OneTimeToken) error {
	if _, err := r.db.Exec(ctx,
		"UPDATE one_time_tokens SET used_at = NOW() WHERE user_id = $1 AND kind = $2 AND used_at IS NULL",
		t.UserID, t.Kind); err != nil {
		logger.Error().Err(err).Msg("Error invalidating previous one-time tokens")
		return fmt.Errorf("error invalidating previous tokens: %w", err)
	}

	sql, args, err := r.sb.Insert("one_time_tokens").
		Columns("user_id", "kind", "token", "expires_at").
		Values(t.UserID, t.Kind, t.Token, t.ExpiresAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create one-time token SQL")
		return fmt.Errorf("failed to build create one-time token query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&t.ID); err != nil {
		logger.Error().Err(err).Msg("Error creating one-time token")
		return fmt.Errorf("error creating one-time token: %w", err)
	}
	return nil
}

// GetOneTimeToken returns an unused token of kind; expiry is checked by the caller
func (r *TokenRepository) GetOneTimeToken(ctx context.Context, token string, kind models.OneTimeTokenKind) (*models.OneTimeToken, error) {
	sql, args, err := r.sb.Select("id", "user_id", "kind", "token", "expires_at", "used_at").
		From("one_time_tokens").
		Where(squirrel.Eq{"token": token, "kind": kind, "used_at": nil}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get one-time token SQL")
		return nil, fmt.Errorf("failed to build get one-time token query: %w", err)
	}

	var t models.OneTimeToken
	err = r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.UserID, &t.Kind, &t.Token, &t.ExpiresAt, &t.UsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Msg("Error scanning one-time token")
		return nil, fmt.Errorf("error getting one-time token: %w", err)
	}
	return &t, nil
}

// MarkOneTimeTokenUsed consumes the token
func (r *TokenRepository) MarkOneTimeTokenUsed(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, "UPDATE one_time_tokens SET used_at = NOW() WHERE id = $1", id); err != nil {
		logger.Error().Err(err).Int64("tokenID", id).Msg("Error consuming one-time token")
		return fmt.Errorf("error consuming one-time token: %w", err)
	}
	return nil
}

// DeleteExpired removes expired and revoked tokens
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	for _, sql := range []string{
		"DELETE FROM refresh_tokens WHERE expires_at < $1 OR is_revoked",
		"DELETE FROM one_time_tokens WHERE expires_at < $1 OR used_at IS NOT NULL",
	} {
		tag, err := r.db.Exec(ctx, sql, now)
		if err != nil {
			logger.Error().Err(err).Msg("Error deleting expired tokens")
			return total, fmt.Errorf("error deleting expired tokens: %w", err)
		}
		total += tag.RowsAffected()
	}
	return total, nil
}
