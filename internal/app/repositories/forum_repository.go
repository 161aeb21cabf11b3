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

// ForumFilter holds the forum predicates evaluated in SQL
type ForumFilter struct {
	CourseID *int64
	AuthorID *int64
	Answered *bool
	Limit    uint64
}

// ForumRepository handles database operations for forum posts
type ForumRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewForumRepository creates a new ForumRepository
func NewForumRepository(db *pgxpool.Pool) *ForumRepository {
	return &ForumRepository{db: db, sb: statementBuilder()}
}

func (r *ForumRepository) selectPosts() squirrel.SelectBuilder {
	return r.sb.Select(
		"p.id", "p.title", "p.content", "p.category", "p.tags", "p.images", "p.is_urgent", "p.is_answered",
		"p.views", "p.course_id", "p.author_id", "p.avg_rating", "p.rating_count", "p.rating_version",
		"p.created_at", "p.updated_at",
		"(SELECT COUNT(*) FROM comments cm WHERE cm.target_type = 'forum_post' AND cm.target_id = p.id)",
		"c.course_code", "c.course_name", "c.institution",
		"u.full_name", "u.profile_picture",
	).From("forum_posts p").
		Join("courses c ON c.id = p.course_id").
		Join("users u ON u.id = p.author_id")
}

func scanPost(row pgx.Row) (*models.ForumPost, error) {
	var (
		p                              models.ForumPost
		courseCode, courseName, instit string
		authorName                     string
		authorPicture                  *string
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Content, &p.Category, &p.Tags, &p.Images, &p.IsUrgent, &p.IsAnswered,
		&p.Views, &p.CourseID, &p.AuthorID, &p.AvgRating, &p.RatingCount, &p.RatingVersion,
		&p.CreatedAt, &p.UpdatedAt,
		&p.CommentCount,
		&courseCode, &courseName, &instit,
		&authorName, &authorPicture,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrForumPostNotFound
		}
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	p.Course = courseRef(p.CourseID, courseCode, courseName, instit)
	p.Author = userRef(p.AuthorID, authorName, authorPicture)
	return &p, nil
}

// List returns posts matching f, newest first
func (r *ForumRepository) List(ctx context.Context, f ForumFilter) ([]models.ForumPost, error) {
	q := r.selectPosts().OrderBy("p.created_at DESC", "p.id DESC")
	if f.CourseID != nil {
		q = q.Where(squirrel.Eq{"p.course_id": *f.CourseID})
	}
	if f.AuthorID != nil {
		q = q.Where(squirrel.Eq{"p.author_id": *f.AuthorID})
	}
	if f.Answered != nil {
		q = q.Where(squirrel.Eq{"p.is_answered": *f.Answered})
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list forum posts SQL")
		return nil, fmt.Errorf("failed to build list forum posts query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing forum posts")
		return nil, fmt.Errorf("error listing forum posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.ForumPost, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning forum post row")
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// GetByID retrieves a post with its course and author
func (r *ForumRepository) GetByID(ctx context.Context, id int64) (*models.ForumPost, error) {
	sql, args, err := r.selectPosts().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get forum post SQL")
		return nil, fmt.Errorf("failed to build get forum post query: %w", err)
	}
	return scanPost(r.db.QueryRow(ctx, sql, args...))
}

// Create inserts a post
func (r *ForumRepository) Create(ctx context.Context, p *models.ForumPost) error {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	sql, args, err := r.sb.Insert("forum_posts").
		Columns("title", "content", "category", "tags", "images", "is_urgent", "course_id", "author_id").
		Values(p.Title, p.Content, p.Category, p.Tags, p.Images, p.IsUrgent, p.CourseID, p.AuthorID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create forum post SQL")
		return fmt.Errorf("failed to build create forum post query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Msg("Error creating forum post")
		return fmt.Errorf("error creating forum post: %w", err)
	}
	return nil
}

// Update writes the editable fields of p
func (r *ForumRepository) Update(ctx context.Context, p *models.ForumPost) error {
	return r.exec(ctx, p.ID, r.sb.Update("forum_posts").
		Set("title", p.Title).
		Set("content", p.Content).
		Set("category", p.Category).
		Set("tags", p.Tags).
		Set("is_urgent", p.IsUrgent).
		Set("course_id", p.CourseID).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": p.ID}))
}

// SetAnswered flags the post as answered or not
func (r *ForumRepository) SetAnswered(ctx context.Context, id int64, answered bool) error {
	return r.exec(ctx, id, r.sb.Update("forum_posts").
		Set("is_answered", answered).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}))
}

func (r *ForumRepository) exec(ctx context.Context, id int64, q squirrel.UpdateBuilder) error {
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update forum post SQL")
		return fmt.Errorf("failed to build update forum post query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("postID", id).Msg("Error updating forum post")
		return fmt.Errorf("error updating forum post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrForumPostNotFound
	}
	return nil
}

// Delete removes a post; ratings, comments, reports and subscriptions go with it
func (r *ForumRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM forum_posts WHERE id = $1", id)
	if err != nil {
		logger.Error().Err(err).Int64("postID", id).Msg("Error deleting forum post")
		return fmt.Errorf("error deleting forum post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrForumPostNotFound
	}
	return nil
}

// IncrementViews bumps the view counter
func (r *ForumRepository) IncrementViews(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "UPDATE forum_posts SET views = views + 1 WHERE id = $1", id)
	if err != nil {
		logger.Error().Err(err).Int64("postID", id).Msg("Error incrementing forum post views")
		return fmt.Errorf("error incrementing views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrForumPostNotFound
	}
	return nil
}
