package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/tasktracker/api/handler"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/", handlers.Health.Root)
	r.GET("/health", handlers.Health.Check)

	// Public routes
	r.POST("/users/", handlers.Auth.Register)
	r.POST("/token", handlers.Auth.Login)

	// Protected routes
	r.GET("/tasks/", authMiddleware(handlers.Task.GetTasks))
	r.POST("/tasks/", authMiddleware(handlers.Task.CreateTask))
	r.PUT("/tasks/{task_id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/tasks/{task_id}", authMiddleware(handlers.Task.DeleteTask))

	return r
}
