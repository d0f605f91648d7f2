package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck/backend/internal/model"
)

type todoService interface {
	List(ctx context.Context, userID int64, skip, limit int) ([]model.Todo, error)
	Get(ctx context.Context, userID, id int64) (*model.Todo, error)
	Create(ctx context.Context, userID int64, req model.TodoCreateRequest) (*model.Todo, error)
	Update(ctx context.Context, userID, id int64, upd model.TodoUpdate) (*model.Todo, error)
	Delete(ctx context.Context, userID, id int64) error
}

// TodoHandler - todo endpoints; every route runs behind AuthMiddleware.
type TodoHandler struct {
	svc todoService
}

func NewTodoHandler(svc todoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// ListTodos godoc
// @Summary List the caller's todos
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Items to skip" default(0)
// @Param limit query int false "Max items" default(100)
// @Success 200 {array} model.Todo
// @Failure 400,401,500 {object} model.ErrorResponse
// @Router /todos [get]
func (h *TodoHandler) ListTodos(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var q model.TodoListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	todos, err := h.svc.List(c.Request.Context(), user.ID, q.Skip, q.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

// GetTodo godoc
// @Summary Get a todo by ID
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Todo ID"
// @Success 200 {object} model.Todo
// @Failure 400,401,404,500 {object} model.ErrorResponse
// @Router /todos/{id} [get]
func (h *TodoHandler) GetTodo(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := todoID(c)
	if !ok {
		return
	}

	todo, err := h.svc.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// CreateTodo godoc
// @Summary Create a todo
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.TodoCreateRequest true "Todo"
// @Success 201 {object} model.Todo
// @Failure 400,401,500 {object} model.ErrorResponse
// @Router /todos [post]
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req model.TodoCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	todo, err := h.svc.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

// UpdateTodo godoc
// @Summary Partially update a todo
// @Description Only fields present in the body change. "description": null clears it.
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Todo ID"
// @Param request body model.TodoUpdate true "Fields to change"
// @Success 200 {object} model.Todo
// @Failure 400,401,404,500 {object} model.ErrorResponse
// @Router /todos/{id} [put]
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := todoID(c)
	if !ok {
		return
	}

	var upd model.TodoUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		writeBindError(c, err)
		return
	}

	todo, err := h.svc.Update(c.Request.Context(), user.ID, id, upd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// DeleteTodo godoc
// @Summary Delete a todo
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Todo ID"
// @Success 200 {object} model.MessageResponse
// @Failure 400,401,404,500 {object} model.ErrorResponse
// @Router /todos/{id} [delete]
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := todoID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), user.ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Todo deleted successfully"})
}

func requireUser(c *gin.Context) (*model.User, bool) {
	user := GetAuthUser(c)
	if user == nil {
		writeUnauthorized(c, credentialsError)
		return nil, false
	}
	return user, true
}

func todoID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}
