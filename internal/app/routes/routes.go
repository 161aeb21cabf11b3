package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studyhub-il/studyhub/internal/app/controllers"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/middleware"
	"github.com/studyhub-il/studyhub/internal/pkg/ratelimit"
)

// Controllers groups every HTTP controller of the API
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Course     *controllers.CourseController
	Summary    *controllers.SummaryController
	Forum      *controllers.ForumController
	Tool       *controllers.ToolController
	Engagement *controllers.EngagementController
	Social     *controllers.SocialController
	Community  *controllers.CommunityController
	Admin      *controllers.AdminController
	System     *controllers.SystemController
}

// Per-user write quotas
const (
	toolCreateLimit    = 10
	toolDeleteLimit    = 20
	summaryUpdateLimit = 30
	quotaWindow        = time.Hour
)

// SetupRouter configures all application routes under /api
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware, quota ratelimit.Quota) {
	api := router.Group("/api")

	requireAuth := authMiddleware.JWTAuth()
	optionalAuth := authMiddleware.OptionalAuth()
	requireAdmin := authMiddleware.RoleRequired(models.RoleAdmin)

	api.GET("/health", c.System.Health)
	api.GET("/ws", authMiddleware.WebSocketAuth(), c.System.Realtime)
	api.GET("/stats", c.Admin.SiteStats)

	auth := api.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/forgot-password", c.Auth.ForgotPassword)
		auth.POST("/reset-password", c.Auth.ResetPassword)
		auth.POST("/verify-email", c.Auth.VerifyEmail)

		auth.POST("/logout", requireAuth, c.Auth.Logout)
		auth.GET("/me", requireAuth, c.Auth.Me)
		auth.PUT("/profile", requireAuth, c.Auth.UpdateProfile)
		auth.POST("/profile/avatar", requireAuth, c.Auth.UpdateAvatar)
	}

	api.GET("/users/:id/profile", c.User.GetProfile)

	courses := api.Group("/courses")
	{
		courses.GET("", c.Course.ListCourses)
		courses.GET("/institutions", c.Course.ListInstitutions)
		courses.GET("/:id", c.Course.GetCourse)
		courses.POST("", requireAuth, requireAdmin, c.Course.CreateCourse)
		courses.DELETE("/:id", requireAuth, requireAdmin, c.Course.DeleteCourse)
	}

	summaries := api.Group("/summaries")
	{
		summaries.GET("", optionalAuth, c.Summary.ListSummaries)
		summaries.GET("/my-content", requireAuth, c.Summary.MyContent)
		summaries.GET("/:id", optionalAuth, c.Summary.GetSummary)
		summaries.GET("/:id/download", c.Summary.DownloadSummary)
		summaries.POST("", requireAuth, c.Summary.CreateSummary)
		summaries.PUT("/:id", requireAuth,
			middleware.QuotaLimit(quota, "summary-update", summaryUpdateLimit, quotaWindow, "יותר מדי עדכונים, נסה שוב בעוד שעה"),
			c.Summary.UpdateSummary)
		summaries.DELETE("/:id", requireAuth, c.Summary.DeleteSummary)

		summaries.POST("/:id/rate", requireAuth, c.Engagement.Rate(models.TargetSummary))
		summaries.GET("/:id/ratings", optionalAuth, c.Engagement.Ratings(models.TargetSummary))
		summaries.POST("/:id/comments", requireAuth, c.Engagement.AddComment(models.TargetSummary))
		summaries.GET("/:id/comments", c.Engagement.Comments(models.TargetSummary))
	}

	forum := api.Group("/forum")
	{
		forum.GET("", optionalAuth, c.Forum.ListPosts)
		forum.GET("/my-posts", requireAuth, c.Forum.MyPosts)
		forum.GET("/:id", optionalAuth, c.Forum.GetPost)
		forum.POST("", requireAuth, c.Forum.CreatePost)
		forum.PUT("/:id", requireAuth, c.Forum.UpdatePost)
		forum.PATCH("/:id/answer", requireAuth, c.Forum.MarkAnswered)
		forum.DELETE("/:id", requireAuth, c.Forum.DeletePost)

		forum.POST("/:id/ratings", requireAuth, c.Engagement.Rate(models.TargetForumPost))
		forum.POST("/:id/rate", requireAuth, c.Engagement.Rate(models.TargetForumPost))
		forum.GET("/:id/ratings", optionalAuth, c.Engagement.Ratings(models.TargetForumPost))
		forum.POST("/:id/comments", requireAuth, c.Engagement.AddComment(models.TargetForumPost))
		forum.GET("/:id/comments", c.Engagement.Comments(models.TargetForumPost))
	}

	tools := api.Group("/tools")
	{
		tools.GET("", optionalAuth, c.Tool.ListTools)
		tools.GET("/my-content", requireAuth, c.Tool.MyContent)
		tools.GET("/:id", optionalAuth, c.Tool.GetTool)
		tools.POST("", requireAuth,
			middleware.QuotaLimit(quota, "tool-create", toolCreateLimit, quotaWindow, "הגעת למגבלת הכלים לשעה"),
			c.Tool.CreateTool)
		tools.PUT("/:id", requireAuth, c.Tool.UpdateTool)
		tools.DELETE("/:id", requireAuth,
			middleware.QuotaLimit(quota, "tool-delete", toolDeleteLimit, quotaWindow, "יותר מדי מחיקות, נסה שוב בעוד שעה"),
			c.Tool.DeleteTool)

		tools.POST("/:id/rate", requireAuth, c.Engagement.Rate(models.TargetTool))
		tools.GET("/:id/ratings", optionalAuth, c.Engagement.Ratings(models.TargetTool))
	}

	favorites := api.Group("/favorites", requireAuth)
	{
		favorites.GET("", c.Social.ListFavorites)
		favorites.POST("", c.Social.AddFavorite)
		favorites.DELETE("/:type/:id", c.Social.RemoveFavorite)
	}

	messages := api.Group("/messages", requireAuth)
	{
		messages.GET("/conversations", c.Social.Conversations)
		messages.GET("/conversation/:userId", c.Social.Conversation)
		messages.GET("/unread-count", c.Social.UnreadMessages)
		messages.POST("", c.Social.SendMessage)
	}

	notifications := api.Group("/notifications", requireAuth)
	{
		notifications.GET("", c.Social.Notifications)
		notifications.GET("/unread-count", c.Social.UnreadNotifications)
		notifications.PATCH("/read-all", c.Social.MarkAllNotificationsRead)
		notifications.PATCH("/:id/read", c.Social.MarkNotificationRead)
		notifications.DELETE("/:id", c.Social.DeleteNotification)
	}

	help := api.Group("/help-requests")
	{
		help.GET("", c.Community.ListHelpRequests)
		help.POST("", requireAuth, c.Community.CreateHelpRequest)
		help.PATCH("/:id/status", requireAuth, c.Community.UpdateHelpRequestStatus)
		help.DELETE("/:id", requireAuth, c.Community.DeleteHelpRequest)
	}

	subscriptions := api.Group("/subscriptions", requireAuth)
	{
		subscriptions.GET("", c.Community.ListSubscriptions)
		subscriptions.POST("/:postId", c.Community.Subscribe)
		subscriptions.DELETE("/:postId", c.Community.Unsubscribe)
	}

	reports := api.Group("/reports", requireAuth)
	{
		reports.POST("", c.Community.CreateReport)
		reports.GET("", requireAdmin, c.Community.ListReports)
		reports.PATCH("/:id/status", requireAdmin, c.Community.UpdateReportStatus)
	}

	admin := api.Group("/admin", requireAuth, requireAdmin)
	{
		admin.GET("/users", c.Admin.ListUsers)
		admin.PATCH("/users/:id/role", c.Admin.UpdateUserRole)
		admin.DELETE("/users/:id", c.Admin.DeleteUser)
		admin.GET("/stats", c.Admin.AdminStats)
		admin.GET("/export", c.Admin.Export)
	}
}
