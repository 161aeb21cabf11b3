package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyhub-il/studyhub/internal/app/models"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	TokenRepository        *TokenRepository
	CourseRepository       *CourseRepository
	SummaryRepository      *SummaryRepository
	ForumRepository        *ForumRepository
	ToolRepository         *ToolRepository
	EngagementRepository   *EngagementRepository
	FavoriteRepository     *FavoriteRepository
	MessageRepository      *MessageRepository
	NotificationRepository *NotificationRepository
	HelpRequestRepository  *HelpRequestRepository
	ReportRepository       *ReportRepository
	SubscriptionRepository *SubscriptionRepository
	StatsRepository        *StatsRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		TokenRepository:        NewTokenRepository(db),
		CourseRepository:       NewCourseRepository(db),
		SummaryRepository:      NewSummaryRepository(db),
		ForumRepository:        NewForumRepository(db),
		ToolRepository:         NewToolRepository(db),
		EngagementRepository:   NewEngagementRepository(db),
		FavoriteRepository:     NewFavoriteRepository(db),
		MessageRepository:      NewMessageRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		HelpRequestRepository:  NewHelpRequestRepository(db),
		ReportRepository:       NewReportRepository(db),
		SubscriptionRepository: NewSubscriptionRepository(db),
		StatsRepository:        NewStatsRepository(db),
	}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// userRef assembles the embedded author projection from joined columns
func userRef(id int64, fullName string, picture *string) *models.UserRef {
	return &models.UserRef{ID: id, FullName: fullName, ProfilePicture: picture}
}

func courseRef(id int64, code, name, institution string) *models.CourseRef {
	return &models.CourseRef{ID: id, CourseCode: code, CourseName: name, Institution: institution}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
