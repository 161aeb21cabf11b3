package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/pkg/logger"
)

// StatsRepository computes site-wide totals
type StatsRepository struct {
	db *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// Totals counts summaries, forum posts, tools and users
func (r *StatsRepository) Totals(ctx context.Context) (models.SiteStats, error) {
	var s models.SiteStats
	err := r.db.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM summaries),
		       (SELECT COUNT(*) FROM forum_posts),
		       (SELECT COUNT(*) FROM tools),
		       (SELECT COUNT(*) FROM users)`).
		Scan(&s.Summaries, &s.ForumPosts, &s.Tools, &s.Users)
	if err != nil {
		logger.Error().Err(err).Msg("Error computing site stats")
		return s, fmt.Errorf("error computing site stats: %w", err)
	}
	return s, nil
}
