package receipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/bookstore/internal/order"
)

func TestRender(t *testing.T) {
	o := &order.Order{
		ID: 7, Name: "Zoë Wambui", Email: "zoe@example.com", Country: "KE",
		PaymentMethod: order.MethodCard, Payable: decimal.NewFromInt(125), Paid: true,
		TransactionID: "123456", CreatedAt: time.Now(),
	}
	items := []order.Item{
		{BookID: 1, BookName: "The River Between", Price: decimal.NewFromInt(10), Quantity: 2},
		{BookID: 2, Price: decimal.NewFromInt(5), Quantity: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, o, items, decimal.NewFromInt(100)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}
