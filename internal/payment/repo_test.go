package payment

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGIPNRepo(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewPGIPNRepo(mock)
	now := time.Now().UTC()

	n := &IPN{TxnID: "T1", PaymentStatus: StatusCompleted, Custom: "12", Flag: true, FlagInfo: "x"}
	mock.ExpectQuery("INSERT INTO paypal_ipn").
		WithArgs("T1", "", StatusCompleted, "", "", "", "", "", "12", true, "x", "").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), now))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("T1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	require.NoError(t, repo.Save(context.Background(), n))
	assert.Equal(t, int64(3), n.ID)

	seen, err := repo.CompletedTxnExists(context.Background(), "T1")
	require.NoError(t, err)
	assert.False(t, seen)
	require.NoError(t, mock.ExpectationsWereMet())
}
