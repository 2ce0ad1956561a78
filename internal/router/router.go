package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/handlers"
	"github.com/taskhive-dev/taskhive/internal/middleware"
	"github.com/taskhive-dev/taskhive/internal/notifications"
	"github.com/taskhive-dev/taskhive/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Stored notifications are mirrored onto open feed connections.
	notifications.Default().OnEmit = handlers.PushNotification

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), handlers.NotificationFeed)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", handlers.Signup)
			auth.POST("/login", handlers.Login)
			auth.POST("/forgot-password", handlers.ForgotPassword)
			auth.POST("/reset-password", handlers.ResetPassword)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.PATCH("/me", middleware.AuthMiddleware(), handlers.UpdateMe)
			auth.DELETE("/me", middleware.AuthMiddleware(), handlers.DeleteMe)
		}

		users := api.Group("/users", middleware.AuthMiddleware())
		{
			users.GET("", handlers.ListUsers)
			users.GET("/:user_id", handlers.GetUser)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.GET("/:project_id", handlers.GetProject)
			projects.PUT("/:project_id", handlers.UpdateProject)
			projects.DELETE("/:project_id", handlers.DeleteProject)

			projects.GET("/:project_id/members", handlers.ListMembers)
			projects.POST("/:project_id/members", handlers.AddMember)
			projects.DELETE("/:project_id/members/:user_id", handlers.RemoveMember)
		}

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.POST("", handlers.CreateTask)
			tasks.GET("", handlers.ListTasks)
			tasks.GET("/:task_id", handlers.GetTask)
			tasks.PUT("/:task_id", handlers.UpdateTask)
			tasks.DELETE("/:task_id", handlers.DeleteTask)

			tasks.GET("/:task_id/comments", handlers.ListComments)
			tasks.POST("/:task_id/comments", handlers.CreateComment)
			tasks.GET("/:task_id/attachments", handlers.ListAttachments)
			tasks.POST("/:task_id/attachments", handlers.CreateAttachment)
		}

		comments := api.Group("/comments", middleware.AuthMiddleware())
		{
			comments.GET("/:comment_id", handlers.GetComment)
			comments.PUT("/:comment_id", handlers.UpdateComment)
			comments.DELETE("/:comment_id", handlers.DeleteComment)
		}

		attachments := api.Group("/attachments", middleware.AuthMiddleware())
		{
			attachments.GET("/:attachment_id", handlers.GetAttachment)
			attachments.PUT("/:attachment_id", handlers.UpdateAttachment)
			attachments.DELETE("/:attachment_id", handlers.DeleteAttachment)
		}

		notificationRoutes := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notificationRoutes.GET("", handlers.ListNotifications)
			notificationRoutes.PATCH("/read-all", handlers.MarkAllNotificationsRead)
			notificationRoutes.PATCH("/:notification_id/read", handlers.MarkNotificationRead)
			notificationRoutes.DELETE("/:notification_id", handlers.DeleteNotification)
		}
	}

	return r
}
