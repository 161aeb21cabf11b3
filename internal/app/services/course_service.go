package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	appauth "github.com/studyhub-il/studyhub/internal/app/auth"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/app/repositories"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
)

// Sizes of the content previews on the course page
const (
	courseSummaryPreview = 10
	courseForumPreview   = 5
)

// CourseService manages the course catalog
type CourseService interface {
	List(ctx context.Context, search, institution string) ([]models.Course, error)
	Institutions(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id int64) (*dto.CourseDetailResponse, error)
	Create(ctx context.Context, actor *appauth.Actor, req dto.CreateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, actor *appauth.Actor, id int64) error
	// ResolveForInstitution returns the course content should be filed under
	// for an uploader from institution
	ResolveForInstitution(ctx context.Context, courseID int64, institution string) (*models.Course, error)
}

type courseServiceImpl struct {
	courses   CourseStore
	summaries SummaryStore
	forum     ForumStore
	logger    zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(courses CourseStore, summaries SummaryStore, forum ForumStore, logger zerolog.Logger) CourseService {
	return &courseServiceImpl{courses: courses, summaries: summaries, forum: forum, logger: logger}
}

func (s *courseServiceImpl) List(ctx context.Context, search, institution string) ([]models.Course, error) {
	return s.courses.List(ctx, repositories.CourseFilter{
		Search:      strings.TrimSpace(search),
		Institution: strings.TrimSpace(institution),
	})
}

func (s *courseServiceImpl) Institutions(ctx context.Context) ([]string, error) {
	return s.courses.Institutions(ctx)
}

func (s *courseServiceImpl) Get(ctx context.Context, id int64) (*dto.CourseDetailResponse, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summaries.List(ctx, repositories.SummaryFilter{CourseID: &id, Limit: courseSummaryPreview})
	if err != nil {
		return nil, fmt.Errorf("failed to load course summaries: %w", err)
	}
	posts, err := s.forum.List(ctx, repositories.ForumFilter{CourseID: &id, Limit: courseForumPreview})
	if err != nil {
		return nil, fmt.Errorf("failed to load course posts: %w", err)
	}
	return &dto.CourseDetailResponse{Course: course, Summaries: summaries, ForumPosts: posts}, nil
}

func (s *courseServiceImpl) Create(ctx context.Context, actor *appauth.Actor, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	course := &models.Course{
		CourseCode:  strings.TrimSpace(req.CourseCode),
		CourseName:  strings.TrimSpace(req.CourseName),
		Institution: strings.TrimSpace(req.Institution),
		Semester:    req.Semester,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("courseID", course.ID).Str("code", course.CourseCode).Msg("Course created")
	return course, nil
}

func (s *courseServiceImpl) Delete(ctx context.Context, actor *appauth.Actor, id int64) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("courseID", id).Int64("adminID", actor.UserID).Msg("Course deleted")
	return nil
}

// ResolveForInstitution keeps the course when the uploader has no
// institution or shares the course's. Otherwise it finds or creates the
// institution-specific copy "<PREFIX>-<code>".
func (s *courseServiceImpl) ResolveForInstitution(ctx context.Context, courseID int64, institution string) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	institution = strings.TrimSpace(institution)
	if institution == "" || institution == course.Institution {
		return course, nil
	}

	code := models.InstitutionCourseCode(institution, course.CourseCode)
	existing, err := s.courses.GetByCode(ctx, code)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrCourseNotFound) {
		return nil, err
	}

	copyCourse := &models.Course{
		CourseCode:  code,
		CourseName:  course.CourseName,
		Institution: institution,
		Semester:    course.Semester,
	}
	if err := s.courses.Create(ctx, copyCourse); err != nil {
		// a concurrent upload created it first
		if errors.Is(err, apperrors.ErrCourseCodeAlreadyExists) {
			return s.courses.GetByCode(ctx, code)
		}
		return nil, err
	}
	s.logger.Info().Str("code", code).Str("institution", institution).Msg("Institution course created")
	return copyCourse, nil
}
