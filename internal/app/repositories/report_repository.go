package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/dberrors"
	"github.com/studyhub-il/studyhub/internal/pkg/logger"
)

// ReportRepository handles moderation reports on forum posts
type ReportRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db, sb: statementBuilder()}
}

// Create stores a report
func (r *ReportRepository) Create(ctx context.Context, rep *models.Report) error {
	sql, args, err := r.sb.Insert("reports").
		Columns("post_id", "reporter_id", "reason").
		Values(rep.PostID, rep.ReporterID, rep.Reason).
		Suffix("RETURNING id, status, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create report SQL")
		return fmt.Errorf("failed to build create report query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&rep.ID, &rep.Status, &rep.CreatedAt); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrForumPostNotFound
		}
		logger.Error().Err(err).Msg("Error creating report")
		return fmt.Errorf("error creating report: %w", err)
	}
	return nil
}

// List returns reports, newest first, optionally narrowed by status
func (r *ReportRepository) List(ctx context.Context, status models.ReportStatus) ([]models.Report, error) {
	q := r.sb.Select(
		"r.id", "r.post_id", "r.reporter_id", "r.reason", "r.status", "r.created_at",
		"u.full_name", "u.profile_picture", "p.title",
	).From("reports r").
		Join("users u ON u.id = r.reporter_id").
		Join("forum_posts p ON p.id = r.post_id").
		OrderBy("r.created_at DESC", "r.id DESC")
	if status != "" {
		q = q.Where(squirrel.Eq{"r.status": status})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list reports SQL")
		return nil, fmt.Errorf("failed to build list reports query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing reports")
		return nil, fmt.Errorf("error listing reports: %w", err)
	}
	defer rows.Close()

	reports := make([]models.Report, 0)
	for rows.Next() {
		var (
			rep     models.Report
			name    string
			picture *string
		)
		if err := rows.Scan(&rep.ID, &rep.PostID, &rep.ReporterID, &rep.Reason, &rep.Status, &rep.CreatedAt,
			&name, &picture, &rep.PostTitle); err != nil {
			logger.Error().Err(err).Msg("Error scanning report row")
			return nil, err
		}
		rep.Reporter = userRef(rep.ReporterID, name, picture)
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// UpdateStatus sets the moderation status of a report
func (r *ReportRepository) UpdateStatus(ctx context.Context, id int64, status models.ReportStatus) error {
	tag, err := r.db.Exec(ctx, "UPDATE reports SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		logger.Error().Err(err).Int64("reportID", id).Msg("Error updating report status")
		return fmt.Errorf("error updating report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrReportNotFound
	}
	return nil
}
