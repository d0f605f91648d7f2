package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskdeck/backend/internal/db"
	"github.com/taskdeck/backend/internal/model"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

var ErrTodoNotFound = errors.New("todo not found")

type todoRepo interface {
	ListTodos(ctx context.Context, userID int64, skip, limit int) ([]model.Todo, error)
	GetTodo(ctx context.Context, userID, id int64) (*model.Todo, error)
	CreateTodo(ctx context.Context, nt model.NewTodo) (*model.Todo, error)
	UpdateTodo(ctx context.Context, userID, id int64, upd model.TodoUpdate) (*model.Todo, error)
	DeleteTodo(ctx context.Context, userID, id int64) error
}

// TodoService - todo CRUD scoped to the owning user. Another user's todo
// looks exactly like a missing one.
type TodoService struct {
	db todoRepo
}

func NewTodoService(db todoRepo) *TodoService {
	return &TodoService{db: db}
}

func (s *TodoService) List(ctx context.Context, userID int64, skip, limit int) ([]model.Todo, error) {
	if err := validateRequest(model.TodoListQuery{Skip: skip, Limit: limit}); err != nil {
		return nil, err
	}

	todos, err := s.db.ListTodos(ctx, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (s *TodoService) Get(ctx context.Context, userID, id int64) (*model.Todo, error) {
	todo, err := s.db.GetTodo(ctx, userID, id)
	if err != nil {
		return nil, mapTodoError(err)
	}
	return todo, nil
}

func (s *TodoService) Create(ctx context.Context, userID int64, req model.TodoCreateRequest) (*model.Todo, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	todo, err := s.db.CreateTodo(ctx, model.NewTodo{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return todo, nil
}

// Update applies only the fields present in upd.
func (s *TodoService) Update(ctx context.Context, userID, id int64, upd model.TodoUpdate) (*model.Todo, error) {
	if err := upd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	todo, err := s.db.UpdateTodo(ctx, userID, id, upd)
	if err != nil {
		return nil, mapTodoError(err)
	}
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.db.DeleteTodo(ctx, userID, id); err != nil {
		return mapTodoError(err)
	}
	return nil
}

func mapTodoError(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return ErrTodoNotFound
	}
	return err
}
