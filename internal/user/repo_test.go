package user

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*PGRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPGRepo(mock), mock
}

func TestPGRepo_Create(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()
	u := &User{ID: "b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b", Username: "amina", Email: "amina@example.com", PasswordHash: "x"}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(u.ID, u.Username, u.FirstName, u.Email, u.PasswordHash).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, now, u.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepo_Create_Duplicate(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &User{ID: "id", Username: "amina"})
	assert.ErrorIs(t, err, ErrAlreadyExist)
}

func TestPGRepo_GetByUsername_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("FROM users WHERE username").
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepo_GetByEmail(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM users WHERE lower").
		WithArgs("amina@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "first_name", "email", "password_hash", "created_at", "updated_at"}).
			AddRow("u-1", "amina", "Amina", "amina@example.com", "hash", now, now))

	u, err := repo.GetByEmail(context.Background(), "amina@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Amina", u.DisplayName())
}
