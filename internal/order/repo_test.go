package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
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

var orderCols = []string{"id", "customer_id", "name", "email", "phone", "address", "country", "zip_code",
	"payment_method", "account_no", "transaction_id", "payable", "totalbook", "paid", "created_at", "updated_at"}

func TestPGRepo_Create(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	o := &Order{
		CustomerID: "cust-1", Name: "Amina", Email: "amina@example.com", Country: "KE",
		PaymentMethod: MethodPayPal, Payable: decimal.RequireFromString("126"), TotalBook: 3,
	}
	items := []Item{
		{BookID: 3, Price: decimal.NewFromInt(10), Quantity: 2},
		{BookID: 4, Price: decimal.NewFromInt(6), Quantity: 1},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("cust-1", "Amina", "amina@example.com", "", "", "KE", "", MethodPayPal, "", "", "126.00", 3, false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(41), now, now))
	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(int64(41), int64(3), "10.00", 2).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(int64(41), int64(4), "6.00", 1).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), o, items))
	assert.Equal(t, int64(41), o.ID)
	assert.Equal(t, int64(41), items[1].OrderID)
	assert.Equal(t, int64(2), items[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepo_Create_ItemFailureRollsBack(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))
	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &Order{Payable: decimal.Zero}, []Item{{BookID: 99, Price: decimal.Zero, Quantity: 1}})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepo_GetByID(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM orders WHERE id").
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(orderCols).AddRow(
			int64(5), "cust-1", "Amina", "amina@example.com", "0700", "Nairobi", "KE", "00100",
			MethodCard, "", "", "125.50", 2, true, now, now))

	o, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, o.Paid)
	assert.True(t, decimal.RequireFromString("125.5").Equal(o.Payable))
}

func TestPGRepo_GetByID_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectQuery("FROM orders WHERE id").WithArgs(int64(404)).WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepo_Items(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectQuery("FROM order_items").
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "book_id", "name", "price", "quantity"}).
			AddRow(int64(1), int64(5), int64(3), "Dune", "10.00", 2))

	items, err := repo.Items(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Dune", items[0].BookName)
	assert.True(t, decimal.NewFromInt(20).Equal(items[0].Cost()))
}

func TestPGRepo_ListAndCount(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM orders WHERE customer_id").
		WithArgs("cust-1", 5, 5).
		WillReturnRows(pgxmock.NewRows(orderCols).AddRow(
			int64(2), "cust-1", "Amina", "amina@example.com", "", "", "KE", "",
			MethodCard, "", "", "10.00", 1, false, now, now))
	mock.ExpectQuery("SELECT count").
		WithArgs("cust-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(6))

	list, err := repo.ListByCustomer(context.Background(), "cust-1", 5, 5)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	n, err := repo.CountByCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepo_MarkPaid(t *testing.T) {
	repo, mock := newTestRepo(t)
	txn := "9AB12345CD678901E"

	mock.ExpectQuery("UPDATE orders").
		WithArgs(int64(5), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"changed"}).AddRow(true))
	mock.ExpectQuery("UPDATE orders").
		WithArgs(int64(5), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"changed"}).AddRow(false))
	mock.ExpectQuery("UPDATE orders").
		WithArgs(int64(6), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	changed, err := repo.MarkPaid(context.Background(), 5, &txn)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = repo.MarkPaid(context.Background(), 5, nil)
	require.NoError(t, err)
	assert.False(t, changed, "already paid")
	_, err = repo.MarkPaid(context.Background(), 6, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
