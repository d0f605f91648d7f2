package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/taskdeck/backend/internal/model"
)

const userColumns = `id, username, email, password_hash, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// CreateUser inserts a user. Duplicate usernames or emails fail with a
// *UniqueViolationError naming the constraint.
func (p *Postgres) CreateUser(ctx context.Context, nu model.NewUser) (*model.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING ` + userColumns
	user, err := scanUser(p.Conn.QueryRow(ctx, query, nu.Username, nu.Email, nu.PasswordHash))
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (p *Postgres) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(p.Conn.QueryRow(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(p.Conn.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

