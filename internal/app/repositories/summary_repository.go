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

// SummaryFilter holds the predicates evaluated in SQL. Text search, file
// type and time window are applied afterwards by the listing package.
type SummaryFilter struct {
	CourseID    *int64
	Institution string
	UploaderID  *int64
	Limit       uint64
}

// SummaryRepository handles database operations for summaries
type SummaryRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSummaryRepository creates a new SummaryRepository
func NewSummaryRepository(db *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{db: db, sb: statementBuilder()}
}

func (r *SummaryRepository) selectSummaries() squirrel.SelectBuilder {
	return r.sb.Select(
		"s.id", "s.title", "s.description", "s.file_path", "s.file_key", "s.course_id", "s.uploaded_by_id",
		"s.avg_rating", "s.rating_count", "s.rating_version", "s.views", "s.downloads", "s.created_at", "s.updated_at",
		"c.course_code", "c.course_name", "c.institution",
		"u.full_name", "u.profile_picture",
	).From("summaries s").
		Join("courses c ON c.id = s.course_id").
		Join("users u ON u.id = s.uploaded_by_id")
}

func scanSummary(row pgx.Row) (*models.Summary, error) {
	var (
		s                              models.Summary
		courseCode, courseName, instit string
		uploaderName                   string
		uploaderPicture                *string
	)
	err := row.Scan(
		&s.ID, &s.Title, &s.Description, &s.FilePath, &s.FileKey, &s.CourseID, &s.UploadedByID,
		&s.AvgRating, &s.RatingCount, &s.RatingVersion, &s.Views, &s.Downloads, &s.CreatedAt, &s.UpdatedAt,
		&courseCode, &courseName, &instit,
		&uploaderName, &uploaderPicture,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSummaryNotFound
		}
		return nil, err
	}
	s.Course = courseRef(s.CourseID, courseCode, courseName, instit)
	s.UploadedBy = userRef(s.UploadedByID, uploaderName, uploaderPicture)
	return &s, nil
}

// List returns summaries matching f, newest first
func (r *SummaryRepository) List(ctx context.Context, f SummaryFilter) ([]models.Summary, error) {
	q := r.selectSummaries().OrderBy("s.created_at DESC", "s.id DESC")
	if f.CourseID != nil {
		q = q.Where(squirrel.Eq{"s.course_id": *f.CourseID})
	}
	if f.Institution != "" {
		q = q.Where(squirrel.Eq{"c.institution": f.Institution})
	}
	if f.UploaderID != nil {
		q = q.Where(squirrel.Eq{"s.uploaded_by_id": *f.UploaderID})
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list summaries SQL")
		return nil, fmt.Errorf("failed to build list summaries query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing summaries")
		return nil, fmt.Errorf("error listing summaries: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.Summary, 0)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning summary row")
			return nil, err
		}
		summaries = append(summaries, *s)
	}
	return summaries, rows.Err()
}

// GetByID retrieves a summary with its course and uploader
func (r *SummaryRepository) GetByID(ctx context.Context, id int64) (*models.Summary, error) {
	sql, args, err := r.selectSummaries().Where(squirrel.Eq{"s.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get summary SQL")
		return nil, fmt.Errorf("failed to build get summary query: %w", err)
	}
	return scanSummary(r.db.QueryRow(ctx, sql, args...))
}

// Create inserts a summary
func (r *SummaryRepository) Create(ctx context.Context, s *models.Summary) error {
	sql, args, err := r.sb.Insert("summaries").
		Columns("title", "description", "file_path", "file_key", "course_id", "uploaded_by_id").
		Values(s.Title, s.Description, s.FilePath, s.FileKey, s.CourseID, s.UploadedByID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create summary SQL")
		return fmt.Errorf("failed to build create summary query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Msg("Error creating summary")
		return fmt.Errorf("error creating summary: %w", err)
	}
	return nil
}

// Update writes title, description and course
func (r *SummaryRepository) Update(ctx context.Context, s *models.Summary) error {
	sql, args, err := r.sb.Update("summaries").
		Set("title", s.Title).
		Set("description", s.Description).
		Set("course_id", s.CourseID).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update summary SQL")
		return fmt.Errorf("failed to build update summary query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("summaryID", s.ID).Msg("Error updating summary")
		return fmt.Errorf("error updating summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSummaryNotFound
	}
	return nil
}

// Delete removes a summary; ratings and comments go with it
func (r *SummaryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM summaries WHERE id = $1", id)
	if err != nil {
		logger.Error().Err(err).Int64("summaryID", id).Msg("Error deleting summary")
		return fmt.Errorf("error deleting summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSummaryNotFound
	}
	return nil
}

// IncrementViews bumps the view counter
func (r *SummaryRepository) IncrementViews(ctx context.Context, id int64) error {
	return r.increment(ctx, id, "views")
}

// IncrementDownloads bumps the download counter
func (r *SummaryRepository) IncrementDownloads(ctx context.Context, id int64) error {
	return r.increment(ctx, id, "downloads")
}

func (r *SummaryRepository) increment(ctx context.Context, id int64, column string) error {
	tag, err := r.db.Exec(ctx, "UPDATE summaries SET "+column+" = "+column+" + 1 WHERE id = $1", id)
	if err != nil {
		logger.Error().Err(err).Int64("summaryID", id).Str("column", column).Msg("Error incrementing summary counter")
		return fmt.Errorf("error incrementing %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSummaryNotFound
	}
	return nil
}
