package routes

import (
	"github.com/gin-gonic/gin"

	"taskly/internal/handlers"
	"taskly/internal/middleware"
	"taskly/internal/services"
)

func SetupRoutes(
	r *gin.Engine,
	authService services.AuthService,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	workspaceHandler *handlers.WorkspaceHandler,
	taskListHandler *handlers.TaskListHandler,
	taskHandler *handlers.TaskHandler,
	assignmentHandler *handlers.AssignmentHandler,
	commentHandler *handlers.CommentHandler,
	notificationHandler *handlers.NotificationHandler,
) *gin.Engine {

	// ---- public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/auth/refresh", authHandler.RefreshToken)
	r.POST("/password-reset/request", authHandler.RequestPasswordReset)
	r.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)
	r.GET("/tasks/featured", taskHandler.Featured)

	// ---- protected (middleware skips the public paths above)
	r.Use(middleware.AuthMiddleware(authService))

	r.POST("/logout", authHandler.Logout)

	// USERS
	users := r.Group("/users")
	{
		users.GET("/me", userHandler.Me)
		users.GET("/", userHandler.List)
		users.GET("/:id", userHandler.GetByID)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
	}

	// WORKSPACES
	workspaces := r.Group("/workspaces")
	{
		workspaces.GET("/:id", workspaceHandler.Get)
		workspaces.DELETE("/:id", workspaceHandler.Delete)
		workspaces.GET("/:id/members", workspaceHandler.ListMembers)
		workspaces.GET("/:id/invites", workspaceHandler.ListInvites)
		workspaces.POST("/:id/invites", workspaceHandler.CreateInvite)
		workspaces.POST("/:id/invites/link", workspaceHandler.CreateLinkInvite)
		workspaces.POST("/leave", workspaceHandler.Leave)
	}
	r.POST("/invites/accept", workspaceHandler.AcceptInvite)

	// TASK LISTS
	tasklists := r.Group("/tasklists")
	{
		tasklists.POST("/", taskListHandler.Create)
		tasklists.GET("/", taskListHandler.ListMine)
		tasklists.GET("/templates", taskListHandler.ListTemplates)
		tasklists.GET("/:id", taskListHandler.Get)
		tasklists.PUT("/:id", taskListHandler.Rename)
		tasklists.DELETE("/:id", taskListHandler.Delete)
		tasklists.GET("/:id/export", taskListHandler.Export)
		tasklists.POST("/:id/tasks", taskHandler.Create)
	}

	// TASKS
	tasks := r.Group("/tasks")
	{
		tasks.GET("/", taskHandler.List)
		tasks.GET("/stats", taskHandler.Stats)
		tasks.GET("/upcoming", taskHandler.Upcoming)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.PATCH("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)

		tasks.GET("/:id/assignments", assignmentHandler.ListAssignees)
		tasks.POST("/:id/assignments", assignmentHandler.Assign)
		tasks.DELETE("/:id/assignments/:userID", assignmentHandler.Remove)

		tasks.GET("/:id/comments", commentHandler.ListByTask)
		tasks.POST("/:id/comments", commentHandler.Create)
	}

	// COMMENTS
	comments := r.Group("/comments")
	{
		comments.PUT("/:id", commentHandler.Update)
		comments.DELETE("/:id", commentHandler.Delete)
	}

	// NOTIFICATIONS
	notifications := r.Group("/notifications")
	{
		notifications.GET("/", notificationHandler.List)
		notifications.POST("/", notificationHandler.Create)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
		notifications.DELETE("/:id", notificationHandler.Delete)
	}

	return r
}
