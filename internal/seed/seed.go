package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/studyhub-il/studyhub/internal/app/models"
	appRepos "github.com/studyhub-il/studyhub/internal/app/repositories"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/auth"
)

const (
	adminEmail    = "admin@studyhub.local"
	adminPassword = "password123"
	adminName     = "מנהל המערכת"
	allSemesters  = "כל סמסטר"
)

// defaultCourses is the computer science catalog, in COURSEnn order
var defaultCourses = []string{
	"מבוא למדעי המחשב",
	"תכנות מונחה עצמים",
	"מבני נתונים",
	"אלגוריתמים וניתוח סיבוכיות",
	"מתמטיקה דיסקרטית",
	"אלגברה לינארית",
	`חדו"א / חשבון דיפרנציאלי ואינטגרלי`,
	"מערכות הפעלה",
	"בסיסי נתונים",
	"רשתות מחשבים",
	"קומפיילרים",
	"הנדסת תוכנה",
	"אבטחת מידע",
	"תכנות מתקדם",
	"פיתוח מערכות מבוזרות",
	"פיתוח Web",
	"פיתוח אפליקציות",
	"תכנות מקבילי",
	"בינה מלאכותית",
	"למידת מכונה",
	"מדעי הנתונים",
}

// CourseCode returns the seeded code for the 1-based catalog position
func CourseCode(n int) string {
	return fmt.Sprintf("COURSE%02d", n)
}

// CreateDefaultData creates the admin account and the course catalog if they
// don't exist. It is safe to run on every start.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	courseRepo := appRepos.NewCourseRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (admin, courses)...")
	var finalErr error

	exists, err := userRepo.EmailExists(ctx, adminEmail)
	switch {
	case err != nil:
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		finalErr = errors.Join(finalErr, err)
	case exists:
		lgr.Info().Msg("Admin user already exists, skipping creation")
	default:
		hash, err := auth.HashPassword(adminPassword)
		if err != nil {
			return errors.Join(finalErr, err)
		}
		admin := &appModels.User{
			FullName:      adminName,
			Email:         adminEmail,
			Password:      hash,
			Role:          appModels.RoleAdmin,
			EmailVerified: true,
			Interests:     []string{},
		}
		if err := userRepo.Create(ctx, admin); err != nil && !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			lgr.Error().Err(err).Msg("Error creating admin user")
			finalErr = errors.Join(finalErr, err)
		} else if err == nil {
			lgr.Info().Int64("adminID", admin.ID).Str("email", adminEmail).Msg("Default admin user created")
		}
	}

	created := 0
	semester := allSemesters
	for i, name := range defaultCourses {
		course := &appModels.Course{
			CourseCode:  CourseCode(i + 1),
			CourseName:  name,
			Institution: appModels.DefaultInstitution,
			Semester:    &semester,
		}
		err := courseRepo.Create(ctx, course)
		switch {
		case errors.Is(err, apperrors.ErrCourseCodeAlreadyExists):
		case err != nil:
			lgr.Error().Err(err).Str("code", course.CourseCode).Msg("Error creating course")
			finalErr = errors.Join(finalErr, err)
		default:
			created++
		}
	}
	lgr.Info().Int("created", created).Int("catalog", len(defaultCourses)).Msg("Default course catalog ensured")

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}
