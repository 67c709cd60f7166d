package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskpulse/backend/api/handler"
)

type Handlers struct {
	Task         *apiHandler.TaskHandler
	Series       *apiHandler.SeriesHandler
	Notification *apiHandler.NotificationHandler
	Health       *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Task routes
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	r.POST("/api/v1/tasks/{id}/complete", authMiddleware(handlers.Task.CompleteTask))

	// Series routes
	r.GET("/api/v1/series", authMiddleware(handlers.Series.GetSeries))
	r.POST("/api/v1/series", authMiddleware(handlers.Series.CreateSeries))
	r.GET("/api/v1/series/{id}", authMiddleware(handlers.Series.GetSeriesByID))
	r.PUT("/api/v1/series/{id}/pattern", authMiddleware(handlers.Series.UpdatePattern))
	r.DELETE("/api/v1/series/{id}", authMiddleware(handlers.Series.DeleteSeries))

	// Notification audit
	r.GET("/api/v1/notifications", authMiddleware(handlers.Notification.GetNotifications))

	return r
}
