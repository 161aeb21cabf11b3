package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/app/services"
	"github.com/studyhub-il/studyhub/internal/middleware"
)

// SocialController handles favorites, direct messages and notifications
type SocialController struct {
	favoriteService     services.FavoriteService
	messageService      services.MessageService
	notificationService services.NotificationService
}

// NewSocialController creates a new SocialController
func NewSocialController(
	favoriteService services.FavoriteService,
	messageService services.MessageService,
	notificationService services.NotificationService,
) *SocialController {
	return &SocialController{
		favoriteService:     favoriteService,
		messageService:      messageService,
		notificationService: notificationService,
	}
}

// ListFavorites godoc
// @Summary List favorites
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Favorite} "Favorites, newest first"
// @Router /favorites [get]
func (c *SocialController) ListFavorites(ctx *gin.Context) {
	favorites, err := c.favoriteService.List(ctx.Request.Context(), middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(favorites))
}

// AddFavorite godoc
// @Summary Add favorite
// @Description Exactly one of summaryId or toolId
// @Tags favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AddFavoriteRequest true "Favorite"
// @Success 201 {object} dto.APIResponse{data=models.Favorite} "Favorite added"
// @Failure 400 {object} dto.APIResponse "Already in favorites"
// @Failure 404 {object} dto.APIResponse "Target not found"
// @Router /favorites [post]
func (c *SocialController) AddFavorite(ctx *gin.Context) {
	var req dto.AddFavoriteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	favorite, err := c.favoriteService.Add(ctx.Request.Context(), middleware.CurrentActor(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(favorite))
}

// RemoveFavorite godoc
// @Summary Remove favorite
// @Description Idempotent
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param type path string true "summary or tool"
// @Param id path int true "Target ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Favorite removed"
// @Router /favorites/{type}/{id} [delete]
func (c *SocialController) RemoveFavorite(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	target := models.TargetType(ctx.Param("type"))
	if err := c.favoriteService.Remove(ctx.Request.Context(), middleware.CurrentActor(ctx), target, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "הוסר מהמועדפים"}))
}

// Conversations godoc
// @Summary List conversations
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Conversation} "Conversations, newest first"
// @Router /messages/conversations [get]
func (c *SocialController) Conversations(ctx *gin.Context) {
	conversations, err := c.messageService.Conversations(ctx.Request.Context(), middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(conversations))
}

// Conversation godoc
// @Summary Conversation with a user
// @Description Oldest first. Marks incoming messages as read.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Partner user ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Message} "Messages"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /messages/conversation/{userId} [get]
func (c *SocialController) Conversation(ctx *gin.Context) {
	partnerID, err := parseIDParam(ctx, "userId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	messages, err := c.messageService.Conversation(ctx.Request.Context(), middleware.CurrentActor(ctx), partnerID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(messages))
}

// SendMessage godoc
// @Summary Send message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=models.Message} "Message sent"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "Receiver not found"
// @Router /messages [post]
func (c *SocialController) SendMessage(ctx *gin.Context) {
	var req dto.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	message, err := c.messageService.Send(ctx.Request.Context(), middleware.CurrentActor(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(message))
}

// UnreadMessages godoc
// @Summary Unread message count
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Count"
// @Router /messages/unread-count [get]
func (c *SocialController) UnreadMessages(ctx *gin.Context) {
	count, err := c.messageService.UnreadCount(ctx.Request.Context(), middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CountResponse{Count: count}))
}

// Notifications godoc
// @Summary Latest notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.NotificationsResponse} "Latest 50 notifications"
// @Router /notifications [get]
func (c *SocialController) Notifications(ctx *gin.Context) {
	resp, err := c.notificationService.Latest(ctx.Request.Context(), middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// UnreadNotifications godoc
// @Summary Unread notification count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Count"
// @Router /notifications/unread-count [get]
func (c *SocialController) UnreadNotifications(ctx *gin.Context) {
	count, err := c.notificationService.UnreadCount(ctx.Request.Context(), middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CountResponse{Count: count}))
}

// MarkNotificationRead godoc
// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Marked"
// @Failure 404 {object} dto.APIResponse "Not found"
// @Router /notifications/{id}/read [patch]
func (c *SocialController) MarkNotificationRead(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.notificationService.MarkRead(ctx.Request.Context(), middleware.CurrentActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "ההתראה סומנה כנקראה"}))
}

// MarkAllNotificationsRead godoc
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Marked"
// @Router /notifications/read-all [patch]
func (c *SocialController) MarkAllNotificationsRead(ctx *gin.Context) {
	if err := c.notificationService.MarkAllRead(ctx.Request.Context(), middleware.CurrentActor(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "כל ההתראות סומנו כנקראו"}))
}

// DeleteNotification godoc
// @Summary Delete notification
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Deleted"
// @Failure 404 {object} dto.APIResponse "Not found"
// @Router /notifications/{id} [delete]
func (c *SocialController) DeleteNotification(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.notificationService.Delete(ctx.Request.Context(), middleware.CurrentActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "ההתראה נמחקה"}))
}
