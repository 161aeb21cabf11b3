package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
)

// UserService serves public user profiles
type UserService interface {
	Profile(ctx context.Context, userID int64) (*dto.ProfileResponse, error)
}

type userServiceImpl struct {
	users  UserStore
	logger zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(users UserStore, logger zerolog.Logger) UserService {
	return &userServiceImpl{users: users, logger: logger}
}

func (s *userServiceImpl) Profile(ctx context.Context, userID int64) (*dto.ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.users.Counts(ctx, userID)
	if err != nil {
		return nil, err
	}
	avg, err := s.users.AverageReceivedRating(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileResponse{
		User:          user,
		Counts:        counts,
		AverageRating: avg,
		Achievements:  Achievements(counts),
	}, nil
}

type achievementRule struct {
	key, title, description string
	earned                  func(models.UserCounts) bool
}

var achievementRules = []achievementRule{
	{"first_summary", "סיכום ראשון", "העלית את הסיכום הראשון שלך",
		func(c models.UserCounts) bool { return c.Summaries >= 1 }},
	{"five_summaries", "כותב פורה", "העלית 5 סיכומים",
		func(c models.UserCounts) bool { return c.Summaries >= 5 }},
	{"first_forum_post", "שאלה ראשונה", "פרסמת את הדיון הראשון שלך בפורום",
		func(c models.UserCounts) bool { return c.ForumPosts >= 1 }},
	{"ten_forum_posts", "משתתף פעיל", "פרסמת 10 דיונים בפורום",
		func(c models.UserCounts) bool { return c.ForumPosts >= 10 }},
	{"first_rating", "מדרג ראשון", "דירגת תוכן בפעם הראשונה",
		func(c models.UserCounts) bool { return c.RatingsGiven >= 1 }},
	{"helpful_answerer", "עוזר מצטיין", "כתבת 10 תגובות",
		func(c models.UserCounts) bool { return c.Comments >= 10 }},
}

// Achievements lists every badge with whether the counts earn it
func Achievements(c models.UserCounts) []dto.Achievement {
	out := make([]dto.Achievement, 0, len(achievementRules))
	for _, r := range achievementRules {
		out = append(out, dto.Achievement{
			Key:         r.key,
			Title:       r.title,
			Description: r.description,
			Earned:      r.earned(c),
		})
	}
	return out
}
