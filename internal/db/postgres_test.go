package db

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/backend/internal/config"
)

// sqlLike matches a whitespace-insensitive SQL fragment.
func sqlLike(fragment string) string {
	parts := strings.Fields(fragment)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return `(?s)` + strings.Join(parts, `\s+`)
}

func newMockStore(t *testing.T) (*Postgres, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgres(mock), mock
}

func TestBuildPostgresURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.PostgresConfig
		want    string
		wantErr bool
	}{
		{
			name: "database url wins",
			cfg:  config.PostgresConfig{DatabaseURL: "postgres://u:p@db:5432/app", User: "ignored", Database: "ignored"},
			want: "postgres://u:p@db:5432/app",
		},
		{
			name: "assembled with password",
			cfg:  config.PostgresConfig{Host: "db", Port: "6543", User: "todo", Password: "s3cr@t", Database: "todos", SSLMode: "require"},
			want: "postgres://todo:s3cr%40t@db:6543/todos?sslmode=require",
		},
		{
			name: "defaults without password",
			cfg:  config.PostgresConfig{User: "todo", Database: "todos"},
			want: "postgres://todo@localhost:5432/todos?sslmode=disable",
		},
		{
			name:    "missing user",
			cfg:     config.PostgresConfig{Database: "todos"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildPostgresURL(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)

	err := translate(&pgconn.PgError{Code: "23505", ConstraintName: ConstraintUsersEmail})
	assert.ErrorIs(t, err, ErrUniqueViolation)
	assert.Equal(t, ConstraintUsersEmail, ViolatedConstraint(fmt.Errorf("insert user: %w", err)))

	other := &pgconn.PgError{Code: "23503"}
	assert.Same(t, other, translate(other))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, translate(plain))
	assert.Empty(t, ViolatedConstraint(plain))
}
