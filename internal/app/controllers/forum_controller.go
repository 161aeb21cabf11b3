package controllers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/app/services"
	"github.com/studyhub-il/studyhub/internal/middleware"
	"github.com/studyhub-il/studyhub/internal/pkg/helpers"
)

// ForumController handles forum posts
type ForumController struct {
	forumService services.ForumService
}

// NewForumController creates a new ForumController
func NewForumController(forumService services.ForumService) *ForumController {
	return &ForumController{forumService: forumService}
}

// ListPosts godoc
// @Summary List forum posts
// @Tags forum
// @Produce json
// @Param search query string false "Matches title, content or tags"
// @Param category query string false "Exact category"
// @Param courseId query int false "Course ID"
// @Param answered query bool false "Answered state"
// @Param mine query bool false "Only the caller's posts"
// @Param window query string false "day, week, month or year"
// @Param sortBy query string false "newest, oldest, rating, views or title"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param seq query int false "Client sequence number"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse[models.ForumPost]} "Posts"
// @Router /forum [get]
func (c *ForumController) ListPosts(ctx *gin.Context) {
	var params dto.ListParams
	if err := ctx.ShouldBindQuery(&params); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.forumService.List(ctx.Request.Context(), middleware.CurrentActor(ctx), params, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	resp.RequestSeq = helpers.ParseSeq(ctx)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// MyPosts godoc
// @Summary My forum posts
// @Tags forum
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ForumPost} "Posts"
// @Router /forum/my-posts [get]
func (c *ForumController) MyPosts(ctx *gin.Context) {
	posts, err := c.forumService.MyPosts(ctx.Request.Context(), middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(posts))
}

// GetPost godoc
// @Summary Get forum post
// @Description Increments the view counter
// @Tags forum
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.ForumPostDetailResponse} "Post"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /forum/{id} [get]
func (c *ForumController) GetPost(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	post, err := c.forumService.Get(ctx.Request.Context(), middleware.CurrentActor(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post))
}

// CreatePost godoc
// @Summary Create forum post
// @Description Up to 5 images (JPEG, PNG, GIF or WebP, 5MB each) in the "images" field
// @Tags forum
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param content formData string true "Content"
// @Param courseId formData int true "Course ID"
// @Param category formData string false "Category"
// @Param tags formData string false "JSON array or comma separated"
// @Param isUrgent formData bool false "Urgent"
// @Param images formData file false "Images"
// @Success 201 {object} dto.APIResponse{data=models.ForumPost} "Post created"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /forum [post]
func (c *ForumController) CreatePost(ctx *gin.Context) {
	var req dto.CreateForumPostRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}
	var images []*multipart.FileHeader
	if form, err := ctx.MultipartForm(); err == nil {
		images = form.File["images"]
	}

	post, err := c.forumService.Create(ctx.Request.Context(), middleware.CurrentActor(ctx), req, images)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(post))
}

// UpdatePost godoc
// @Summary Update forum post
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.UpdateForumPostRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.ForumPost} "Post updated"
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /forum/{id} [put]
func (c *ForumController) UpdatePost(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.UpdateForumPostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	post, err := c.forumService.Update(ctx.Request.Context(), middleware.CurrentActor(ctx), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post))
}

// MarkAnswered godoc
// @Summary Mark post answered
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.MarkAnsweredRequest false "Answered flag, default true"
// @Success 200 {object} dto.APIResponse{data=models.ForumPost} "Post updated"
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Router /forum/{id}/answer [patch]
func (c *ForumController) MarkAnswered(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.MarkAnsweredRequest
	_ = ctx.ShouldBindJSON(&req)
	answered := req.IsAnswered == nil || *req.IsAnswered

	post, err := c.forumService.SetAnswered(ctx.Request.Context(), middleware.CurrentActor(ctx), id, answered)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post))
}

// DeletePost godoc
// @Summary Delete forum post
// @Tags forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Post deleted"
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /forum/{id} [delete]
func (c *ForumController) DeletePost(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.forumService.Delete(ctx.Request.Context(), middleware.CurrentActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "הפוסט נמחק"}))
}
