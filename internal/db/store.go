package db

import (
	"context"

	"github.com/taskdeck/backend/internal/model"
)

// Store - everything the services need from persistence.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, nu model.NewUser) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	ListTodos(ctx context.Context, userID int64, skip, limit int) ([]model.Todo, error)
	GetTodo(ctx context.Context, userID, id int64) (*model.Todo, error)
	CreateTodo(ctx context.Context, nt model.NewTodo) (*model.Todo, error)
	UpdateTodo(ctx context.Context, userID, id int64, upd model.TodoUpdate) (*model.Todo, error)
	DeleteTodo(ctx context.Context, userID, id int64) error
}

var (
	_ Store = (*Postgres)(nil)
	_ Store = (*Memory)(nil)
)
