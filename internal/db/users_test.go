package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/backend/internal/model"
)

var userCols = []string{"id", "username", "email", "password_hash", "created_at"}

func TestCreateUser_Success(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(sqlLike("INSERT INTO users (username, email, password_hash, created_at)")).
		WithArgs("alice", "a@x.com", "$argon2id$hash").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(int64(1), "alice", "a@x.com", "$argon2id$hash", created))

	user, err := store.CreateUser(context.Background(), model.NewUser{
		Username:     "alice",
		Email:        "a@x.com",
		PasswordHash: "$argon2id$hash",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, created, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_Duplicate(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
	}{
		{"username", ConstraintUsersUsername},
		{"email", ConstraintUsersEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)

			mock.ExpectQuery(sqlLike("INSERT INTO users")).
				WithArgs("alice", "a@x.com", "h").
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			_, err := store.CreateUser(context.Background(), model.NewUser{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
			require.ErrorIs(t, err, ErrUniqueViolation)
			assert.Equal(t, tt.constraint, ViolatedConstraint(err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetUserByUsername(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(sqlLike("FROM users WHERE username = $1")).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(int64(1), "alice", "a@x.com", "$argon2id$hash", created))

	user, err := store.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "$argon2id$hash", user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(sqlLike("FROM users WHERE username = $1")).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := store.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail_StoreFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(sqlLike("FROM users WHERE email = $1")).
		WithArgs("a@x.com").
		WillReturnError(errors.New("connection reset"))

	_, err := store.GetUserByEmail(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

