package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/taskdeck/backend/internal/model"
)

// Memory is a process-local store with the same behaviour as Postgres:
// unique usernames and emails, owner-scoped todos, ids ordered by insertion.
// Data is lost on restart.
type Memory struct {
	mu sync.RWMutex

	now func() time.Time

	users      map[int64]model.User
	byUsername map[string]int64
	byEmail    map[string]int64
	todos      map[int64]model.Todo

	nextUserID int64
	nextTodoID int64
}

func NewMemory() *Memory {
	return &Memory{
		now:        time.Now,
		users:      make(map[int64]model.User),
		byUsername: make(map[string]int64),
		byEmail:    make(map[string]int64),
		todos:      make(map[int64]model.Todo),
	}
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *Memory) CreateUser(ctx context.Context, nu model.NewUser) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byUsername[nu.Username]; ok {
		return nil, fmt.Errorf("insert user: %w", &UniqueViolationError{Constraint: ConstraintUsersUsername})
	}
	if _, ok := m.byEmail[nu.Email]; ok {
		return nil, fmt.Errorf("insert user: %w", &UniqueViolationError{Constraint: ConstraintUsersEmail})
	}

	m.nextUserID++
	user := model.User{
		ID:           m.nextUserID,
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		CreatedAt:    m.now().UTC(),
	}
	m.users[user.ID] = user
	m.byUsername[user.Username] = user.ID
	m.byEmail[user.Email] = user.ID

	return &user, nil
}

func (m *Memory) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byUsername[username]
	if !ok {
		return nil, fmt.Errorf("get user by username: %w", ErrNotFound)
	}
	user := m.users[id]
	return &user, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("get user by email: %w", ErrNotFound)
	}
	user := m.users[id]
	return &user, nil
}

func (m *Memory) ListTodos(ctx context.Context, userID int64, skip, limit int) ([]model.Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owned := []model.Todo{}
	for _, todo := range m.todos {
		if todo.UserID == userID {
			owned = append(owned, copyTodo(todo))
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].ID < owned[j].ID })

	if skip >= len(owned) {
		return []model.Todo{}, nil
	}
	owned = owned[skip:]
	if limit >= 0 && limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (m *Memory) GetTodo(ctx context.Context, userID, id int64) (*model.Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	todo, ok := m.todos[id]
	if !ok || todo.UserID != userID {
		return nil, fmt.Errorf("get todo %d: %w", id, ErrNotFound)
	}
	out := copyTodo(todo)
	return &out, nil
}

func (m *Memory) CreateTodo(ctx context.Context, nt model.NewTodo) (*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[nt.UserID]; !ok {
		return nil, fmt.Errorf("insert todo: unknown user %d", nt.UserID)
	}

	m.nextTodoID++
	now := m.now().UTC()
	todo := copyTodo(model.Todo{
		ID:          m.nextTodoID,
		UserID:      nt.UserID,
		Title:       nt.Title,
		Description: nt.Description,
		Completed:   nt.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	m.todos[todo.ID] = todo

	out := copyTodo(todo)
	return &out, nil
}

func (m *Memory) UpdateTodo(ctx context.Context, userID, id int64, upd model.TodoUpdate) (*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	todo, ok := m.todos[id]
	if !ok || todo.UserID != userID {
		return nil, fmt.Errorf("lock todo %d: %w", id, ErrNotFound)
	}

	upd.Apply(&todo, m.now().UTC())
	m.todos[id] = copyTodo(todo)

	out := copyTodo(todo)
	return &out, nil
}

func (m *Memory) DeleteTodo(ctx context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	todo, ok := m.todos[id]
	if !ok || todo.UserID != userID {
		return fmt.Errorf("delete todo %d: %w", id, ErrNotFound)
	}
	delete(m.todos, id)
	return nil
}

// copyTodo detaches the description pointer from stored state.
func copyTodo(t model.Todo) model.Todo {
	if t.Description != nil {
		desc := *t.Description
		t.Description = &desc
	}
	return t
}
