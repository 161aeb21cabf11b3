package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	appauth "github.com/studyhub-il/studyhub/internal/app/auth"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
)

// HelpRequestService manages peer help requests
type HelpRequestService interface {
	List(ctx context.Context, courseID *int64, status models.HelpRequestStatus) ([]models.HelpRequest, error)
	Create(ctx context.Context, actor *appauth.Actor, req dto.CreateHelpRequestRequest) (*models.HelpRequest, error)
	UpdateStatus(ctx context.Context, actor *appauth.Actor, id int64, status models.HelpRequestStatus) (*models.HelpRequest, error)
	Delete(ctx context.Context, actor *appauth.Actor, id int64) error
}

type helpRequestServiceImpl struct {
	requests HelpRequestStore
	logger   zerolog.Logger
}

// NewHelpRequestService creates a new HelpRequestService
func NewHelpRequestService(requests HelpRequestStore, logger zerolog.Logger) HelpRequestService {
	return &helpRequestServiceImpl{requests: requests, logger: logger}
}

func (s *helpRequestServiceImpl) List(ctx context.Context, courseID *int64, status models.HelpRequestStatus) ([]models.HelpRequest, error) {
	return s.requests.List(ctx, courseID, status)
}

func (s *helpRequestServiceImpl) Create(ctx context.Context, actor *appauth.Actor, req dto.CreateHelpRequestRequest) (*models.HelpRequest, error) {
	h := &models.HelpRequest{
		Title:    strings.TrimSpace(req.Title),
		Details:  strings.TrimSpace(req.Details),
		Status:   models.HelpRequestOpen,
		CourseID: req.CourseID,
		AuthorID: actor.UserID,
	}
	if err := s.requests.Create(ctx, h); err != nil {
		return nil, err
	}
	return s.requests.GetByID(ctx, h.ID)
}

// UpdateStatus opens or closes a request; only its author may do so
func (s *helpRequestServiceImpl) UpdateStatus(ctx context.Context, actor *appauth.Actor, id int64, status models.HelpRequestStatus) (*models.HelpRequest, error) {
	h, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(h.AuthorID) {
		return nil, apperrors.NewForbiddenError("רק מבקש העזרה יכול לשנות את הסטטוס")
	}
	if err := s.requests.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	h.Status = status
	return h, nil
}

func (s *helpRequestServiceImpl) Delete(ctx context.Context, actor *appauth.Actor, id int64) error {
	h, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.RequireOwnerOrAdmin(h.AuthorID, "אין לך הרשאה למחוק בקשה זו"); err != nil {
		return err
	}
	return s.requests.Delete(ctx, id)
}

// SubscriptionService follows forum posts for reply notifications
type SubscriptionService interface {
	Subscribe(ctx context.Context, actor *appauth.Actor, postID int64) (*models.Subscription, error)
	Unsubscribe(ctx context.Context, actor *appauth.Actor, postID int64) error
	List(ctx context.Context, actor *appauth.Actor) ([]models.Subscription, error)
}

type subscriptionServiceImpl struct {
	subscriptions SubscriptionStore
	logger        zerolog.Logger
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(subscriptions SubscriptionStore, logger zerolog.Logger) SubscriptionService {
	return &subscriptionServiceImpl{subscriptions: subscriptions, logger: logger}
}

func (s *subscriptionServiceImpl) Subscribe(ctx context.Context, actor *appauth.Actor, postID int64) (*models.Subscription, error) {
	sub := &models.Subscription{UserID: actor.UserID, PostID: postID}
	if err := s.subscriptions.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionServiceImpl) Unsubscribe(ctx context.Context, actor *appauth.Actor, postID int64) error {
	return s.subscriptions.Delete(ctx, actor.UserID, postID)
}

func (s *subscriptionServiceImpl) List(ctx context.Context, actor *appauth.Actor) ([]models.Subscription, error) {
	return s.subscriptions.ListByUser(ctx, actor.UserID)
}

// ReportService handles moderation reports on forum posts
type ReportService interface {
	Create(ctx context.Context, actor *appauth.Actor, req dto.CreateReportRequest) (*models.Report, error)
	List(ctx context.Context, actor *appauth.Actor, status models.ReportStatus) ([]models.Report, error)
	UpdateStatus(ctx context.Context, actor *appauth.Actor, id int64, status models.ReportStatus) error
}

type reportServiceImpl struct {
	reports ReportStore
	logger  zerolog.Logger
}

// NewReportService creates a new ReportService
func NewReportService(reports ReportStore, logger zerolog.Logger) ReportService {
	return &reportServiceImpl{reports: reports, logger: logger}
}

func (s *reportServiceImpl) Create(ctx context.Context, actor *appauth.Actor, req dto.CreateReportRequest) (*models.Report, error) {
	r := &models.Report{
		PostID:     req.PostID,
		ReporterID: actor.UserID,
		Reason:     strings.TrimSpace(req.Reason),
		Status:     models.ReportPending,
	}
	if err := s.reports.Create(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("reportID", r.ID).Int64("postID", r.PostID).Msg("Forum post reported")
	return r, nil
}

func (s *reportServiceImpl) List(ctx context.Context, actor *appauth.Actor, status models.ReportStatus) ([]models.Report, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	reports, err := s.reports.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func (s *reportServiceImpl) UpdateStatus(ctx context.Context, actor *appauth.Actor, id int64, status models.ReportStatus) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	return s.reports.UpdateStatus(ctx, id, status)
}
