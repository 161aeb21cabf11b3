package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/app/services"
	"github.com/studyhub-il/studyhub/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminController serves the admin dashboard and the public site stats
type AdminController struct {
	adminService services.AdminService
	statsService services.StatsService
	logger       zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService services.AdminService, statsService services.StatsService, logger zerolog.Logger) *AdminController {
	return &AdminController{adminService: adminService, statsService: statsService, logger: logger}
}

// SiteStats godoc
// @Summary Site statistics
// @Description Public totals, cached for one minute when Redis is enabled
// @Tags stats
// @Produce json
// @Success 200 {object} dto.APIResponse{data=models.SiteStats} "Totals"
// @Router /stats [get]
func (c *AdminController) SiteStats(ctx *gin.Context) {
	totals, err := c.statsService.Totals(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(totals))
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]repositories.UserWithCounts} "Users with counts"
// @Failure 403 {object} dto.APIResponse "Admin only"
// @Router /admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	users, err := c.adminService.Users(ctx.Request.Context(), middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(users))
}

// UpdateUserRole godoc
// @Summary Change user role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateRoleRequest true "Role"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Role updated"
// @Failure 403 {object} dto.APIResponse "Admin only"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /admin/users/{id}/role [patch]
func (c *AdminController) UpdateUserRole(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.adminService.UpdateRole(ctx.Request.Context(), middleware.CurrentActor(ctx), id, req.Role); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "התפקיד עודכן"}))
}

// DeleteUser godoc
// @Summary Delete user
// @Description Admins cannot delete themselves
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "User deleted"
// @Failure 400 {object} dto.APIResponse "Cannot delete self"
// @Failure 403 {object} dto.APIResponse "Admin only"
// @Router /admin/users/{id} [delete]
func (c *AdminController) DeleteUser(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.adminService.DeleteUser(ctx.Request.Context(), middleware.CurrentActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "המשתמש נמחק"}))
}

// AdminStats godoc
// @Summary Admin dashboard
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AdminStatsResponse} "Totals and recent summaries"
// @Failure 403 {object} dto.APIResponse "Admin only"
// @Router /admin/stats [get]
func (c *AdminController) AdminStats(ctx *gin.Context) {
	stats, err := c.adminService.Stats(ctx.Request.Context(), middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats))
}

// Export godoc
// @Summary Export users and stats
// @Description XLSX workbook with "Users" and "Stats" sheets
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file "Workbook"
// @Failure 403 {object} dto.APIResponse "Admin only"
// @Router /admin/export [get]
func (c *AdminController) Export(ctx *gin.Context) {
	data, err := c.adminService.Export(ctx.Request.Context(), middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	name := fmt.Sprintf("studyhub-export-%s.xlsx", time.Now().Format("20060102"))
	c.logger.Info().Int("bytes", len(data)).Msg("Admin export generated")
	ctx.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	ctx.Data(http.StatusOK, xlsxContentType, data)
}
