package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookCols = []string{"id", "category_id", "category", "name", "author", "description", "image", "price", "created_at"}

func newTestRepo(t *testing.T) (*PGRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPGRepo(mock), mock
}

func TestPGRepo_GetByID(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM books b JOIN categories c").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(bookCols).
			AddRow(int64(7), int64(1), "Fiction", "Things Fall Apart", "Chinua Achebe", "", "", "520.00", now))

	b, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), b.ID)
	assert.Equal(t, "Fiction", b.CategoryName)
	assert.Equal(t, "520", b.Price.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepo_GetByID_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("FROM books b JOIN categories c").
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	b, err := repo.GetByID(context.Background(), 404)
	assert.Nil(t, b)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepo_GetMany(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("WHERE b.id = ANY").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(bookCols).
			AddRow(int64(1), int64(1), "Fiction", "A", "", "", "", "10.00", now).
			AddRow(int64(2), int64(1), "Fiction", "B", "", "", "", "5.00", now))

	got, err := repo.GetMany(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[2].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepo_GetMany_EmptyIDsSkipsQuery(t *testing.T) {
	repo, mock := newTestRepo(t)

	got, err := repo.GetMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepo_List_NormalizesPaging(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("ORDER BY b.created_at DESC").
		WithArgs("go", "", 20, 0).
		WillReturnRows(pgxmock.NewRows(bookCols))

	books, err := repo.List(context.Background(), Query{Q: "  go ", Limit: 500, Offset: -3})
	require.NoError(t, err)
	assert.Empty(t, books)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepo_Categories(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("FROM categories").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "slug"}).
			AddRow(int64(1), "Fiction", "fiction").
			AddRow(int64(2), "Science", "science"))

	cats, err := repo.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "science", cats[1].Slug)
}
