package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/app/services"
	"github.com/studyhub-il/studyhub/internal/middleware"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
)

// EngagementController serves ratings and comments. Each handler is bound
// to one target type when routes are registered.
type EngagementController struct {
	engagementService services.EngagementService
}

// NewEngagementController creates a new EngagementController
func NewEngagementController(engagementService services.EngagementService) *EngagementController {
	return &EngagementController{engagementService: engagementService}
}

// Rate godoc
// @Summary Rate content
// @Description Upserts the caller's 1-5 rating and returns the recomputed aggregate
// @Tags engagement
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Target ID"
// @Param request body dto.RateRequest true "Rating"
// @Success 200 {object} dto.APIResponse{data=dto.RateResponse} "Rating stored"
// @Failure 400 {object} dto.APIResponse "Rating out of range"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Target not found"
// @Router /summaries/{id}/rate [post]
// @Router /forum/{id}/ratings [post]
// @Router /forum/{id}/rate [post]
// @Router /tools/{id}/rate [post]
func (c *EngagementController) Rate(target models.TargetType) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, err := parseIDParam(ctx, "id")
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		var req dto.RateRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(ctx, err)
			return
		}
		if req.Rating == nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("rating", "הדירוג חייב להיות מספר שלם בין 1 ל-5"))
			return
		}

		resp, err := c.engagementService.Rate(ctx.Request.Context(), middleware.CurrentActor(ctx), target, id, *req.Rating)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
	}
}

// Ratings godoc
// @Summary List ratings
// @Description userRating is null for anonymous callers
// @Tags engagement
// @Produce json
// @Param id path int true "Target ID"
// @Success 200 {object} dto.APIResponse{data=dto.RatingsResponse} "Ratings"
// @Failure 404 {object} dto.APIResponse "Target not found"
// @Router /summaries/{id}/ratings [get]
// @Router /forum/{id}/ratings [get]
// @Router /tools/{id}/ratings [get]
func (c *EngagementController) Ratings(target models.TargetType) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, err := parseIDParam(ctx, "id")
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}

		resp, err := c.engagementService.Ratings(ctx.Request.Context(), middleware.CurrentActor(ctx), target, id)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
	}
}

// AddComment godoc
// @Summary Add comment
// @Tags engagement
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Target ID"
// @Param request body dto.CommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=models.Comment} "Comment added"
// @Failure 400 {object} dto.APIResponse "Empty comment"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Target not found"
// @Router /summaries/{id}/comments [post]
// @Router /forum/{id}/comments [post]
func (c *EngagementController) AddComment(target models.TargetType) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, err := parseIDParam(ctx, "id")
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		var req dto.CommentRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(ctx, err)
			return
		}

		comment, err := c.engagementService.Comment(ctx.Request.Context(), middleware.CurrentActor(ctx), target, id, req.Text)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(comment))
	}
}

// Comments godoc
// @Summary List comments
// @Description Oldest first
// @Tags engagement
// @Produce json
// @Param id path int true "Target ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Comment} "Comments"
// @Failure 404 {object} dto.APIResponse "Target not found"
// @Router /summaries/{id}/comments [get]
// @Router /forum/{id}/comments [get]
func (c *EngagementController) Comments(target models.TargetType) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, err := parseIDParam(ctx, "id")
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}

		comments, err := c.engagementService.Comments(ctx.Request.Context(), target, id)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(comments))
	}
}
