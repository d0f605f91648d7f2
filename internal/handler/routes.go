package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/taskdeck/backend/internal/observability"
)

type RouterConfig struct {
	Logger               zerolog.Logger
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
}

// Store - what the router needs from persistence directly.
type Store interface {
	Ping(ctx context.Context) error
}

// NewRouter wires middleware and every route. /todos and /auth/me require a
// bearer token.
func NewRouter(cfg RouterConfig, authSvc authService, todoSvc todoService, store Store) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.Use(
		observability.RequestLogger(cfg.Logger),
		observability.Recovery(),
		CORSMiddleware(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials),
	)

	health := NewHealthHandler(store)
	authHandler := NewAuthHandler(authSvc)
	todoHandler := NewTodoHandler(todoSvc)
	requireAuth := AuthMiddleware(authSvc)

	r.GET("/", health.Root)
	r.GET("/health", health.Health)
	r.GET("/openapi.json", OpenAPIDoc)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/me", requireAuth, authHandler.Me)
	}

	todos := r.Group("/todos", requireAuth)
	{
		todos.GET("", todoHandler.ListTodos)
		todos.POST("", todoHandler.CreateTodo)
		todos.GET("/:id", todoHandler.GetTodo)
		todos.PUT("/:id", todoHandler.UpdateTodo)
		todos.DELETE("/:id", todoHandler.DeleteTodo)
	}

	return r
}
