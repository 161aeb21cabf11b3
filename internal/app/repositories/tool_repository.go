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
	"github.com/studyhub-il/studyhub/internal/pkg/logger"
)

// ToolRepository handles database operations for shared tools
type ToolRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewToolRepository creates a new ToolRepository
func NewToolRepository(db *pgxpool.Pool) *ToolRepository {
	return &ToolRepository{db: db, sb: statementBuilder()}
}

func (r *ToolRepository) selectTools() squirrel.SelectBuilder {
	return r.sb.Select(
		"t.id", "t.title", "t.url", "t.description", "t.category", "t.added_by_id",
		"t.avg_rating", "t.rating_count", "t.rating_version", "t.created_at", "t.updated_at",
		"u.full_name", "u.profile_picture",
	).From("tools t").
		Join("users u ON u.id = t.added_by_id")
}

func scanTool(row pgx.Row) (*models.Tool, error) {
	var (
		t          models.Tool
		adderName  string
		adderImage *string
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.URL, &t.Description, &t.Category, &t.AddedByID,
		&t.AvgRating, &t.RatingCount, &t.RatingVersion, &t.CreatedAt, &t.UpdatedAt,
		&adderName, &adderImage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrToolNotFound
		}
		return nil, err
	}
	t.AddedBy = userRef(t.AddedByID, adderName, adderImage)
	return &t, nil
}

// List returns tools, newest first; addedBy narrows to one user when set
func (r *ToolRepository) List(ctx context.Context, addedBy *int64) ([]models.Tool, error) {
	q := r.selectTools().OrderBy("t.created_at DESC", "t.id DESC")
	if addedBy != nil {
		q = q.Where(squirrel.Eq{"t.added_by_id": *addedBy})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list tools SQL")
		return nil, fmt.Errorf("failed to build list tools query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing tools")
		return nil, fmt.Errorf("error listing tools: %w", err)
	}
	defer rows.Close()

	tools := make([]models.Tool, 0)
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning tool row")
			return nil, err
		}
		tools = append(tools, *t)
	}
	return tools, rows.Err()
}

// GetByID retrieves a tool
func (r *ToolRepository) GetByID(ctx context.Context, id int64) (*models.Tool, error) {
	sql, args, err := r.selectTools().Where(squirrel.Eq{"t.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get tool SQL")
		return nil, fmt.Errorf("failed to build get tool query: %w", err)
	}
	return scanTool(r.db.QueryRow(ctx, sql, args...))
}

// Create inserts a tool
func (r *ToolRepository) Create(ctx context.Context, t *models.Tool) error {
	sql, args, err := r.sb.Insert("tools").
		Columns("title", "url", "description", "category", "added_by_id").
		Values(t.Title, t.URL, t.Description, t.Category, t.AddedByID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create tool SQL")
		return fmt.Errorf("failed to build create tool query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		logger.Error().Err(err).Msg("Error creating tool")
		return fmt.Errorf("error creating tool: %w", err)
	}
	return nil
}

// Update writes the editable fields of t
func (r *ToolRepository) Update(ctx context.Context, t *models.Tool) error {
	sql, args, err := r.sb.Update("tools").
		Set("title", t.Title).
		Set("url", t.URL).
		Set("description", t.Description).
		Set("category", t.Category).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": t.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update tool SQL")
		return fmt.Errorf("failed to build update tool query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("toolID", t.ID).Msg("Error updating tool")
		return fmt.Errorf("error updating tool: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrToolNotFound
	}
	return nil
}

// Delete removes a tool
func (r *ToolRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM tools WHERE id = $1", id)
	if err != nil {
		logger.Error().Err(err).Int64("toolID", id).Msg("Error deleting tool")
		return fmt.Errorf("error deleting tool: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrToolNotFound
	}
	return nil
}
