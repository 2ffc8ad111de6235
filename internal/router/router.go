package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskhive/backend/api/handler"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Task   *apiHandler.TaskHandler
	AI     *apiHandler.AIHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, sessionAuth func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Session issuance routes stay outside the gate.
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/logout", handlers.Auth.Logout)

	// Everything else resolves the current user first.
	r.GET("/api/v1/auth/me", sessionAuth(handlers.Auth.Me))

	r.GET("/api/v1/tasks", sessionAuth(handlers.Task.ListTasks))
	r.POST("/api/v1/tasks", sessionAuth(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/stats", sessionAuth(handlers.Task.TaskStats))
	r.GET("/api/v1/tasks/{id}", sessionAuth(handlers.Task.GetTask))
	r.PUT("/api/v1/tasks/{id}", sessionAuth(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", sessionAuth(handlers.Task.DeleteTask))

	r.POST("/api/v1/ai/priority", sessionAuth(handlers.AI.SuggestPriority))
	r.POST("/api/v1/ai/suggestions", sessionAuth(handlers.AI.Suggest))

	return r
}
