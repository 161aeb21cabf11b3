package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/app/services"
	"github.com/studyhub-il/studyhub/internal/middleware"
	"github.com/studyhub-il/studyhub/internal/pkg/helpers"
)

// ToolController handles shared study tools
type ToolController struct {
	toolService services.ToolService
}

// NewToolController creates a new ToolController
func NewToolController(toolService services.ToolService) *ToolController {
	return &ToolController{toolService: toolService}
}

// ListTools godoc
// @Summary List tools
// @Tags tools
// @Produce json
// @Param search query string false "Matches title or description"
// @Param category query string false "Exact category"
// @Param sortBy query string false "newest, oldest, rating or title"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param seq query int false "Client sequence number"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse[dto.ToolItem]} "Tools"
// @Router /tools [get]
func (c *ToolController) ListTools(ctx *gin.Context) {
	var params dto.ListParams
	if err := ctx.ShouldBindQuery(&params); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.toolService.List(ctx.Request.Context(), middleware.CurrentActor(ctx), params, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	resp.RequestSeq = helpers.ParseSeq(ctx)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// MyContent godoc
// @Summary My tools
// @Tags tools
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ToolItem} "Tools shared by the caller"
// @Router /tools/my-content [get]
func (c *ToolController) MyContent(ctx *gin.Context) {
	tools, err := c.toolService.MyContent(ctx.Request.Context(), middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(tools))
}

// GetTool godoc
// @Summary Get tool
// @Tags tools
// @Produce json
// @Param id path int true "Tool ID"
// @Success 200 {object} dto.APIResponse{data=dto.ToolItem} "Tool"
// @Failure 404 {object} dto.APIResponse "Tool not found"
// @Router /tools/{id} [get]
func (c *ToolController) GetTool(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	tool, err := c.toolService.Get(ctx.Request.Context(), middleware.CurrentActor(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(tool))
}

// CreateTool godoc
// @Summary Share tool
// @Tags tools
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateToolRequest true "Tool"
// @Success 201 {object} dto.APIResponse{data=models.Tool} "Tool created"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 429 {object} dto.APIResponse "Too many tools created"
// @Router /tools [post]
func (c *ToolController) CreateTool(ctx *gin.Context) {
	var req dto.CreateToolRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	tool, err := c.toolService.Create(ctx.Request.Context(), middleware.CurrentActor(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(tool))
}

// UpdateTool godoc
// @Summary Update tool
// @Tags tools
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tool ID"
// @Param request body dto.UpdateToolRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Tool} "Tool updated"
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Failure 404 {object} dto.APIResponse "Tool not found"
// @Router /tools/{id} [put]
func (c *ToolController) UpdateTool(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.UpdateToolRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	tool, err := c.toolService.Update(ctx.Request.Context(), middleware.CurrentActor(ctx), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(tool))
}

// DeleteTool godoc
// @Summary Delete tool
// @Tags tools
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tool ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Tool deleted"
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Failure 429 {object} dto.APIResponse "Too many deletions"
// @Router /tools/{id} [delete]
func (c *ToolController) DeleteTool(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.toolService.Delete(ctx.Request.Context(), middleware.CurrentActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "הכלי נמחק"}))
}
