package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/app/services"
	"github.com/studyhub-il/studyhub/internal/middleware"
)

// CommunityController handles help requests, post subscriptions and reports
type CommunityController struct {
	helpService         services.HelpRequestService
	subscriptionService services.SubscriptionService
	reportService       services.ReportService
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(
	helpService services.HelpRequestService,
	subscriptionService services.SubscriptionService,
	reportService services.ReportService,
) *CommunityController {
	return &CommunityController{
		helpService:         helpService,
		subscriptionService: subscriptionService,
		reportService:       reportService,
	}
}

// ListHelpRequests godoc
// @Summary List help requests
// @Tags help-requests
// @Produce json
// @Param courseId query int false "Course ID"
// @Param status query string false "open or closed"
// @Success 200 {object} dto.APIResponse{data=[]models.HelpRequest} "Help requests"
// @Router /help-requests [get]
func (c *CommunityController) ListHelpRequests(ctx *gin.Context) {
	requests, err := c.helpService.List(ctx.Request.Context(),
		queryInt64(ctx, "courseId"), models.HelpRequestStatus(ctx.Query("status")))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(requests))
}

// CreateHelpRequest godoc
// @Summary Open help request
// @Tags help-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateHelpRequestRequest true "Help request"
// @Success 201 {object} dto.APIResponse{data=models.HelpRequest} "Created"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Router /help-requests [post]
func (c *CommunityController) CreateHelpRequest(ctx *gin.Context) {
	var req dto.CreateHelpRequestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	request, err := c.helpService.Create(ctx.Request.Context(), middleware.CurrentActor(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(request))
}

// UpdateHelpRequestStatus godoc
// @Summary Open or close a help request
// @Description Author only
// @Tags help-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Help request ID"
// @Param request body dto.UpdateHelpStatusRequest true "Status"
// @Success 200 {object} dto.APIResponse{data=models.HelpRequest} "Updated"
// @Failure 403 {object} dto.APIResponse "Not the author"
// @Router /help-requests/{id}/status [patch]
func (c *CommunityController) UpdateHelpRequestStatus(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.UpdateHelpStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	request, err := c.helpService.UpdateStatus(ctx.Request.Context(), middleware.CurrentActor(ctx), id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(request))
}

// DeleteHelpRequest godoc
// @Summary Delete help request
// @Tags help-requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Help request ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Deleted"
// @Failure 403 {object} dto.APIResponse "Not the author"
// @Router /help-requests/{id} [delete]
func (c *CommunityController) DeleteHelpRequest(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.helpService.Delete(ctx.Request.Context(), middleware.CurrentActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "בקשת העזרה נמחקה"}))
}

// ListSubscriptions godoc
// @Summary List followed posts
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Subscription} "Subscriptions"
// @Router /subscriptions [get]
func (c *CommunityController) ListSubscriptions(ctx *gin.Context) {
	subs, err := c.subscriptionService.List(ctx.Request.Context(), middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(subs))
}

// Subscribe godoc
// @Summary Follow a forum post
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Forum post ID"
// @Success 201 {object} dto.APIResponse{data=models.Subscription} "Subscribed"
// @Failure 400 {object} dto.APIResponse "Already subscribed"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /subscriptions/{postId} [post]
func (c *CommunityController) Subscribe(ctx *gin.Context) {
	postID, err := parseIDParam(ctx, "postId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	sub, err := c.subscriptionService.Subscribe(ctx.Request.Context(), middleware.CurrentActor(ctx), postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(sub))
}

// Unsubscribe godoc
// @Summary Unfollow a forum post
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Forum post ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Unsubscribed"
// @Router /subscriptions/{postId} [delete]
func (c *CommunityController) Unsubscribe(ctx *gin.Context) {
	postID, err := parseIDParam(ctx, "postId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.subscriptionService.Unsubscribe(ctx.Request.Context(), middleware.CurrentActor(ctx), postID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "המעקב הוסר"}))
}

// CreateReport godoc
// @Summary Report a forum post
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateReportRequest true "Report"
// @Success 201 {object} dto.APIResponse{data=models.Report} "Reported"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /reports [post]
func (c *CommunityController) CreateReport(ctx *gin.Context) {
	var req dto.CreateReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	report, err := c.reportService.Create(ctx.Request.Context(), middleware.CurrentActor(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(report))
}

// ListReports godoc
// @Summary List reports
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, reviewed or resolved"
// @Success 200 {object} dto.APIResponse{data=[]models.Report} "Reports"
// @Failure 403 {object} dto.APIResponse "Admin only"
// @Router /reports [get]
func (c *CommunityController) ListReports(ctx *gin.Context) {
	reports, err := c.reportService.List(ctx.Request.Context(), middleware.CurrentActor(ctx), models.ReportStatus(ctx.Query("status")))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(reports))
}

// UpdateReportStatus godoc
// @Summary Update report status
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Param request body dto.UpdateReportStatusRequest true "Status"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Updated"
// @Failure 403 {object} dto.APIResponse "Admin only"
// @Router /reports/{id}/status [patch]
func (c *CommunityController) UpdateReportStatus(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.UpdateReportStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.reportService.UpdateStatus(ctx.Request.Context(), middleware.CurrentActor(ctx), id, req.Status); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "סטטוס הדיווח עודכן"}))
}
