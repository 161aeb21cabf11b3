package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/app/services"
	"github.com/studyhub-il/studyhub/internal/middleware"
	"github.com/studyhub-il/studyhub/internal/pkg/helpers"
)

// Default page size of the summaries grid
const summaryPageSize = 9

// SummaryController handles uploaded summaries
type SummaryController struct {
	summaryService services.SummaryService
	logger         zerolog.Logger
}

// NewSummaryController creates a new SummaryController
func NewSummaryController(summaryService services.SummaryService, logger zerolog.Logger) *SummaryController {
	return &SummaryController{summaryService: summaryService, logger: logger}
}

// ListSummaries godoc
// @Summary List summaries
// @Description Filtered, sorted and paginated summaries. seq is echoed back as requestSeq.
// @Tags summaries
// @Produce json
// @Param search query string false "Matches title, description or course"
// @Param category query string false "Exact category"
// @Param courseId query int false "Course ID"
// @Param institution query string false "Course institution"
// @Param fileType query string false "pdf, docx or doc"
// @Param window query string false "day, week, month or year"
// @Param sortBy query string false "newest, oldest, rating, downloads, views or title"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(9)
// @Param seq query int false "Client sequence number"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse[dto.SummaryItem]} "Summaries"
// @Router /summaries [get]
func (c *SummaryController) ListSummaries(ctx *gin.Context) {
	var params dto.ListParams
	if err := ctx.ShouldBindQuery(&params); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}
	page, size := helpers.ParsePaginationParamsWithDefault(ctx, summaryPageSize)

	resp, err := c.summaryService.List(ctx.Request.Context(), middleware.CurrentActor(ctx), params, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	resp.RequestSeq = helpers.ParseSeq(ctx)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// MyContent godoc
// @Summary My summaries
// @Tags summaries
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.SummaryItem} "Summaries uploaded by the caller"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /summaries/my-content [get]
func (c *SummaryController) MyContent(ctx *gin.Context) {
	items, err := c.summaryService.MyContent(ctx.Request.Context(), middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(items))
}

// GetSummary godoc
// @Summary Get summary
// @Description Increments the view counter and includes ratings, the caller's rating and comments
// @Tags summaries
// @Produce json
// @Param id path int true "Summary ID"
// @Success 200 {object} dto.APIResponse{data=dto.SummaryDetailResponse} "Summary"
// @Failure 404 {object} dto.APIResponse "Summary not found"
// @Router /summaries/{id} [get]
func (c *SummaryController) GetSummary(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	summary, err := c.summaryService.Get(ctx.Request.Context(), middleware.CurrentActor(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(summary))
}

// DownloadSummary godoc
// @Summary Download summary file
// @Description Increments the download counter, then serves the file or redirects to object storage
// @Tags summaries
// @Produce octet-stream
// @Param id path int true "Summary ID"
// @Success 200 {file} file "Summary document"
// @Success 302 "Redirect to the stored object"
// @Failure 404 {object} dto.APIResponse "Summary not found"
// @Router /summaries/{id}/download [get]
func (c *SummaryController) DownloadSummary(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	target, err := c.summaryService.Download(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if target.LocalPath != "" {
		ctx.FileAttachment(target.LocalPath, target.FileName)
		return
	}
	ctx.Redirect(http.StatusFound, target.URL)
}

// CreateSummary godoc
// @Summary Upload summary
// @Description PDF, DOCX or DOC up to 50MB. The course is moved to the uploader's institution when it differs.
// @Tags summaries
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param courseId formData int true "Course ID"
// @Param file formData file true "Document"
// @Success 201 {object} dto.APIResponse{data=models.Summary} "Summary created"
// @Failure 400 {object} dto.APIResponse "Invalid request or file"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Course not found"
// @Router /summaries [post]
func (c *SummaryController) CreateSummary(ctx *gin.Context) {
	var req dto.CreateSummaryRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}
	file, _ := ctx.FormFile("file")

	summary, err := c.summaryService.Create(ctx.Request.Context(), middleware.CurrentActor(ctx), req, file)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Summary upload failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(summary))
}

// UpdateSummary godoc
// @Summary Update summary
// @Tags summaries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Summary ID"
// @Param request body dto.UpdateSummaryRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Summary} "Summary updated"
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Failure 404 {object} dto.APIResponse "Summary not found"
// @Failure 429 {object} dto.APIResponse "Too many updates"
// @Router /summaries/{id} [put]
func (c *SummaryController) UpdateSummary(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.UpdateSummaryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	summary, err := c.summaryService.Update(ctx.Request.Context(), middleware.CurrentActor(ctx), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(summary))
}

// DeleteSummary godoc
// @Summary Delete summary
// @Description Removes the summary and its stored file
// @Tags summaries
// @Produce json
// @Security BearerAuth
// @Param id path int true "Summary ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Summary deleted"
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Failure 404 {object} dto.APIResponse "Summary not found"
// @Router /summaries/{id} [delete]
func (c *SummaryController) DeleteSummary(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.summaryService.Delete(ctx.Request.Context(), middleware.CurrentActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "הסיכום נמחק"}))
}
