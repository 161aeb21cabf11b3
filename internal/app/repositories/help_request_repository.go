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

// HelpRequestRepository handles peer help requests
type HelpRequestRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewHelpRequestRepository creates a new HelpRequestRepository
func NewHelpRequestRepository(db *pgxpool.Pool) *HelpRequestRepository {
	return &HelpRequestRepository{db: db, sb: statementBuilder()}
}

func (r *HelpRequestRepository) selectRequests() squirrel.SelectBuilder {
	return r.sb.Select(
		"h.id", "h.title", "h.details", "h.status", "h.course_id", "h.author_id", "h.created_at", "h.updated_at",
		"c.course_code", "c.course_name", "c.institution",
		"u.full_name", "u.profile_picture",
	).From("help_requests h").
		Join("courses c ON c.id = h.course_id").
		Join("users u ON u.id = h.author_id")
}

func scanHelpRequest(row pgx.Row) (*models.HelpRequest, error) {
	var (
		h                              models.HelpRequest
		courseCode, courseName, instit string
		authorName                     string
		authorPicture                  *string
	)
	err := row.Scan(&h.ID, &h.Title, &h.Details, &h.Status, &h.CourseID, &h.AuthorID, &h.CreatedAt, &h.UpdatedAt,
		&courseCode, &courseName, &instit, &authorName, &authorPicture)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrHelpRequestNotFound
		}
		return nil, err
	}
	h.Course = courseRef(h.CourseID, courseCode, courseName, instit)
	h.Author = userRef(h.AuthorID, authorName, authorPicture)
	return &h, nil
}

// List returns help requests, newest first, optionally narrowed by course and status
func (r *HelpRequestRepository) List(ctx context.Context, courseID *int64, status models.HelpRequestStatus) ([]models.HelpRequest, error) {
	q := r.selectRequests().OrderBy("h.created_at DESC", "h.id DESC")
	if courseID != nil {
		q = q.Where(squirrel.Eq{"h.course_id": *courseID})
	}
	if status != "" {
		q = q.Where(squirrel.Eq{"h.status": status})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list help requests SQL")
		return nil, fmt.Errorf("failed to build list help requests query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing help requests")
		return nil, fmt.Errorf("error listing help requests: %w", err)
	}
	defer rows.Close()

	requests := make([]models.HelpRequest, 0)
	for rows.Next() {
		h, err := scanHelpRequest(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning help request row")
			return nil, err
		}
		requests = append(requests, *h)
	}
	return requests, rows.Err()
}

// GetByID retrieves a help request
func (r *HelpRequestRepository) GetByID(ctx context.Context, id int64) (*models.HelpRequest, error) {
	sql, args, err := r.selectRequests().Where(squirrel.Eq{"h.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get help request SQL")
		return nil, fmt.Errorf("failed to build get help request query: %w", err)
	}
	return scanHelpRequest(r.db.QueryRow(ctx, sql, args...))
}

// Create stores a help request
func (r *HelpRequestRepository) Create(ctx context.Context, h *models.HelpRequest) error {
	sql, args, err := r.sb.Insert("help_requests").
		Columns("title", "details", "course_id", "author_id").
		Values(h.Title, h.Details, h.CourseID, h.AuthorID).
		Suffix("RETURNING id, status, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create help request SQL")
		return fmt.Errorf("failed to build create help request query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&h.ID, &h.Status, &h.CreatedAt, &h.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Msg("Error creating help request")
		return fmt.Errorf("error creating help request: %w", err)
	}
	return nil
}

// UpdateStatus sets the status of a help request
func (r *HelpRequestRepository) UpdateStatus(ctx context.Context, id int64, status models.HelpRequestStatus) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE help_requests SET status = $1, updated_at = $2 WHERE id = $3", status, time.Now(), id)
	if err != nil {
		logger.Error().Err(err).Int64("helpRequestID", id).Msg("Error updating help request status")
		return fmt.Errorf("error updating help request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrHelpRequestNotFound
	}
	return nil
}

// Delete removes a help request
func (r *HelpRequestRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM help_requests WHERE id = $1", id)
	if err != nil {
		logger.Error().Err(err).Int64("helpRequestID", id).Msg("Error deleting help request")
		return fmt.Errorf("error deleting help request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrHelpRequestNotFound
	}
	return nil
}
