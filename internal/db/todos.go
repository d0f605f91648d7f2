package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/taskdeck/backend/internal/model"
)

const todoColumns = `id, user_id, title, description, completed, created_at, updated_at`

func scanTodo(row pgx.Row) (*model.Todo, error) {
	var todo model.Todo
	err := row.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&todo.Description,
		&todo.Completed,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &todo, nil
}

// ListTodos - the owner's todos ordered by id, windowed by skip/limit.
func (p *Postgres) ListTodos(ctx context.Context, userID int64, skip, limit int) ([]model.Todo, error) {
	rows, err := p.Conn.Query(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE user_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`, userID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, *todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return todos, nil
}

// GetTodo - a todo owned by userID. Someone else's todo is ErrNotFound.
func (p *Postgres) GetTodo(ctx context.Context, userID, id int64) (*model.Todo, error) {
	todo, err := scanTodo(p.Conn.QueryRow(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE id = $1 AND user_id = $2
	`, id, userID))
	if err != nil {
		return nil, fmt.Errorf("get todo %d: %w", id, err)
	}
	return todo, nil
}

func (p *Postgres) CreateTodo(ctx context.Context, nt model.NewTodo) (*model.Todo, error) {
	todo, err := scanTodo(p.Conn.QueryRow(ctx, `
		INSERT INTO todos (user_id, title, description, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING `+todoColumns,
		nt.UserID, nt.Title, nt.Description, nt.Completed))
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	return todo, nil
}

// UpdateTodo locks the row, merges the present fields and writes it back in
// one transaction.
func (p *Postgres) UpdateTodo(ctx context.Context, userID, id int64, upd model.TodoUpdate) (*model.Todo, error) {
	tx, err := p.Conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin todo update: %w", err)
	}

	todo, err := updateTodoTx(ctx, tx, userID, id, upd)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit todo update: %w", err)
	}
	return todo, nil
}

func updateTodoTx(ctx context.Context, tx pgx.Tx, userID, id int64, upd model.TodoUpdate) (*model.Todo, error) {
	current, err := scanTodo(tx.QueryRow(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, id, userID))
	if err != nil {
		return nil, fmt.Errorf("lock todo %d: %w", id, err)
	}

	upd.Apply(current, time.Now())

	updated, err := scanTodo(tx.QueryRow(ctx, `
		UPDATE todos
		SET title = $1, description = $2, completed = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5
		RETURNING `+todoColumns,
		current.Title, current.Description, current.Completed, id, userID))
	if err != nil {
		return nil, fmt.Errorf("update todo %d: %w", id, err)
	}
	return updated, nil
}

func (p *Postgres) DeleteTodo(ctx context.Context, userID, id int64) error {
	tag, err := p.Conn.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete todo %d: %w", id, ErrNotFound)
	}
	return nil
}
