package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/dberrors"
	"github.com/studyhub-il/studyhub/internal/pkg/logger"
)

// CourseFilter narrows the course catalog
type CourseFilter struct {
	Search      string
	Institution string
}

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db, sb: statementBuilder()}
}

func (r *CourseRepository) selectCourses() squirrel.SelectBuilder {
	return r.sb.Select(
		"c.id", "c.course_code", "c.course_name", "c.institution", "c.semester", "c.created_at",
		"(SELECT COUNT(*) FROM summaries s WHERE s.course_id = c.id)",
		"(SELECT COUNT(*) FROM forum_posts f WHERE f.course_id = c.id)",
	).From("courses c")
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var c models.Course
	err := row.Scan(&c.ID, &c.CourseCode, &c.CourseName, &c.Institution, &c.Semester, &c.CreatedAt,
		&c.SummaryCount, &c.ForumPostCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns courses ordered by institution then name
func (r *CourseRepository) List(ctx context.Context, f CourseFilter) ([]models.Course, error) {
	q := r.selectCourses().OrderBy("c.institution ASC", "c.course_name ASC")
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"c.course_name": pattern},
			squirrel.ILike{"c.course_code": pattern},
		})
	}
	if f.Institution != "" {
		q = q.Where(squirrel.Eq{"c.institution": f.Institution})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list courses SQL")
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing courses")
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	courses := make([]models.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning course row")
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// Institutions returns the distinct non-empty institutions, ascending
func (r *CourseRepository) Institutions(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		"SELECT DISTINCT institution FROM courses WHERE institution <> '' ORDER BY institution ASC")
	if err != nil {
		logger.Error().Err(err).Msg("Error listing institutions")
		return nil, fmt.Errorf("error listing institutions: %w", err)
	}
	institutions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	return institutions, nil
}

// GetByID retrieves a course with its content counts
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := r.selectCourses().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get course SQL")
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}
	return scanCourse(r.db.QueryRow(ctx, sql, args...))
}

// GetByCode retrieves a course by its unique code
func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	sql, args, err := r.selectCourses().Where(squirrel.Eq{"c.course_code": code}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get course by code SQL")
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}
	return scanCourse(r.db.QueryRow(ctx, sql, args...))
}

// Create inserts a course
func (r *CourseRepository) Create(ctx context.Context, c *models.Course) error {
	if c.Institution == "" {
		c.Institution = models.DefaultInstitution
	}
	sql, args, err := r.sb.Insert("courses").
		Columns("course_code", "course_name", "institution", "semester").
		Values(c.CourseCode, c.CourseName, c.Institution, c.Semester).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create course SQL")
		return fmt.Errorf("failed to build create course query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "courses_course_code_key") {
			return apperrors.ErrCourseCodeAlreadyExists
		}
		logger.Error().Err(err).Str("code", c.CourseCode).Msg("Error creating course")
		return fmt.Errorf("error creating course: %w", err)
	}
	return nil
}

// Delete removes a course and, by cascade, its content
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", id).Msg("Error deleting course")
		return fmt.Errorf("error deleting course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}
