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

var userColumns = []string{
	"id", "full_name", "email", "password", "role", "email_verified", "profile_picture", "bio",
	"institution", "field_of_study", "location", "website", "interests", "created_at", "updated_at",
}

// UserWithCounts is a user row plus contribution counts, used by the admin listing
type UserWithCounts struct {
	models.User
	Counts models.UserCounts `json:"_count"`
}

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db, sb: statementBuilder()}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &u.Password, &u.Role, &u.EmailVerified, &u.ProfilePicture, &u.Bio,
		&u.Institution, &u.FieldOfStudy, &u.Location, &u.Website, &u.Interests, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	if u.Interests == nil {
		u.Interests = []string{}
	}
	return &u, nil
}

// Create inserts the user and fills in its generated fields
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Interests == nil {
		user.Interests = []string{}
	}
	sql, args, err := r.sb.Insert("users").
		Columns("full_name", "email", "password", "role", "email_verified", "institution", "interests").
		Values(user.FullName, user.Email, user.Password, user.Role, user.EmailVerified, user.Institution, user.Interests).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error creating user")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *UserRepository) getBy(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get user SQL")
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}
	return scanUser(r.db.QueryRow(ctx, sql, args...))
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, squirrel.Expr("LOWER(email) = LOWER(?)", email))
}

// EmailExists checks if an email is already registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))", email).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Msg("Error checking email existence")
		return false, err
	}
	return exists, nil
}

// UpdateProfile writes the non-nil fields of upd
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) (*models.User, error) {
	q := r.sb.Update("users").Set("updated_at", time.Now()).Where(squirrel.Eq{"id": userID})
	if upd.FullName != nil {
		q = q.Set("full_name", *upd.FullName)
	}
	if upd.Bio != nil {
		q = q.Set("bio", *upd.Bio)
	}
	if upd.Institution != nil {
		q = q.Set("institution", *upd.Institution)
	}
	if upd.FieldOfStudy != nil {
		q = q.Set("field_of_study", *upd.FieldOfStudy)
	}
	if upd.Location != nil {
		q = q.Set("location", *upd.Location)
	}
	if upd.Website != nil {
		q = q.Set("website", *upd.Website)
	}
	if upd.Interests != nil {
		q = q.Set("interests", upd.Interests)
	}

	if err := r.execUpdate(ctx, q, userID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, userID)
}

// UpdatePassword stores a new password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	return r.execUpdate(ctx, r.sb.Update("users").
		Set("password", hash).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}), userID)
}

// SetEmailVerified marks the user's email as verified
func (r *UserRepository) SetEmailVerified(ctx context.Context, userID int64) error {
	return r.execUpdate(ctx, r.sb.Update("users").
		Set("email_verified", true).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}), userID)
}

// UpdateProfilePicture sets the avatar URL
func (r *UserRepository) UpdateProfilePicture(ctx context.Context, userID int64, url string) error {
	return r.execUpdate(ctx, r.sb.Update("users").
		Set("profile_picture", url).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}), userID)
}

// UpdateRole changes the user's role
func (r *UserRepository) UpdateRole(ctx context.Context, userID int64, role models.Role) error {
	return r.execUpdate(ctx, r.sb.Update("users").
		Set("role", role).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}), userID)
}

func (r *UserRepository) execUpdate(ctx context.Context, q squirrel.UpdateBuilder, userID int64) error {
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update user SQL")
		return fmt.Errorf("failed to build update user query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error updating user")
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Delete removes the user; owned content cascades
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error deleting user")
		return fmt.Errorf("error deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

const userCountsSelect = `
	(SELECT COUNT(*) FROM summaries s WHERE s.uploaded_by_id = u.id),
	(SELECT COUNT(*) FROM forum_posts f WHERE f.author_id = u.id),
	(SELECT COUNT(*) FROM comments c WHERE c.author_id = u.id),
	(SELECT COUNT(*) FROM ratings r WHERE r.user_id = u.id),
	(SELECT COUNT(*) FROM tools t WHERE t.added_by_id = u.id),
	(SELECT COUNT(*) FROM favorites fv WHERE fv.user_id = u.id)`

// Counts returns the user's contribution counts
func (r *UserRepository) Counts(ctx context.Context, userID int64) (models.UserCounts, error) {
	var c models.UserCounts
	err := r.db.QueryRow(ctx, "SELECT"+userCountsSelect+" FROM users u WHERE u.id = $1", userID).
		Scan(&c.Summaries, &c.ForumPosts, &c.Comments, &c.RatingsGiven, &c.Tools, &c.FavoritesKept)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error counting user contributions")
		return c, fmt.Errorf("error counting user contributions: %w", err)
	}
	return c, nil
}

// AverageReceivedRating is the mean of all ratings on the user's summaries
func (r *UserRepository) AverageReceivedRating(ctx context.Context, userID int64) (*float64, error) {
	var avg *float64
	err := r.db.QueryRow(ctx, `
		SELECT AVG(r.rating)::float8
		FROM ratings r
		JOIN summaries s ON r.target_type = 'summary' AND r.target_id = s.id
		WHERE s.uploaded_by_id = $1`, userID).Scan(&avg)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error averaging received ratings")
		return nil, fmt.Errorf("error averaging received ratings: %w", err)
	}
	return avg, nil
}

// ListWithCounts returns every user, newest first, with contribution counts
func (r *UserRepository) ListWithCounts(ctx context.Context) ([]UserWithCounts, error) {
	cols := make([]string, len(userColumns))
	for i, c := range userColumns {
		cols[i] = "u." + c
	}
	sql, args, err := r.sb.Select(cols...).Column(userCountsSelect).
		From("users u").
		OrderBy("u.created_at DESC", "u.id DESC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list users SQL")
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]UserWithCounts, 0)
	for rows.Next() {
		var u UserWithCounts
		if err := rows.Scan(
			&u.ID, &u.FullName, &u.Email, &u.Password, &u.Role, &u.EmailVerified, &u.ProfilePicture, &u.Bio,
			&u.Institution, &u.FieldOfStudy, &u.Location, &u.Website, &u.Interests, &u.CreatedAt, &u.UpdatedAt,
			&u.Counts.Summaries, &u.Counts.ForumPosts, &u.Counts.Comments, &u.Counts.RatingsGiven,
			&u.Counts.Tools, &u.Counts.FavoritesKept,
		); err != nil {
			logger.Error().Err(err).Msg("Error scanning user row")
			return nil, err
		}
		if u.Interests == nil {
			u.Interests = []string{}
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
