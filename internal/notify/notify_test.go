package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/bookstore/internal/config"
	"github.com/MikeMC777/bookstore/internal/order"
)

type recordingMailer struct {
	sent []Message
	err  error
}

func (r *recordingMailer) Send(_ context.Context, m Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, m)
	return nil
}

func paidOrder() (*order.Order, []order.Item) {
	o := &order.Order{
		ID: 42, Name: "Amina Njeri", Email: "amina@example.com", Country: "KE",
		PaymentMethod: order.MethodPayPal, Payable: decimal.NewFromInt(125), Paid: true,
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	items := []order.Item{
		{BookID: 1, BookName: "Things Fall Apart", Price: decimal.NewFromInt(10), Quantity: 2},
		{BookID: 2, BookName: "Petals of Blood", Price: decimal.NewFromInt(5), Quantity: 1},
	}
	return o, items
}

func TestOrderConfirmation(t *testing.T) {
	o, items := paidOrder()
	msg, err := OrderConfirmation(o, items, decimal.NewFromInt(100), "shop@example.com")
	require.NoError(t, err)

	assert.Equal(t, "Order Confirmation - Your Bookstore Purchase #42", msg.Subject)
	assert.Equal(t, []string{"amina@example.com"}, msg.To)
	assert.Contains(t, msg.HTML, "Things Fall Apart")
	assert.Contains(t, msg.HTML, "25.00")
	assert.Contains(t, msg.Text, "Dear Amina Njeri,")
	assert.Contains(t, msg.Text, "125.00")
	assert.NotContains(t, msg.Text, "<td>")
	assert.NotContains(t, msg.Text, "font-family")
}

func TestNotifier_OrderPaid(t *testing.T) {
	o, items := paidOrder()

	m := &recordingMailer{}
	n := NewNotifier(m, "shop@example.com", decimal.NewFromInt(100))
	assert.True(t, n.OrderPaid(context.Background(), o, items))
	require.Len(t, m.sent, 1)

	failing := NewNotifier(&recordingMailer{err: errors.New("smtp down")}, "shop@example.com", decimal.Zero)
	assert.False(t, failing.OrderPaid(context.Background(), o, items))
}

func TestStripTags(t *testing.T) {
	in := `<html><head><style>p{color:red}</style></head><body>
<h1>Hello</h1>


<p>Line &amp; more</p><script>alert(1)</script><p>Bye<br>now</p></body></html>`
	assert.Equal(t, "Hello\n\nLine & more\n\nBye\nnow", StripTags(in))
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(config.Email{Backend: "console"})
	require.NoError(t, err)
	assert.IsType(t, ConsoleMailer{}, m)
	require.NoError(t, m.Send(context.Background(), Message{To: []string{"x@example.com"}}))

	m, err = NewMailer(config.Email{Backend: "smtp", Host: "localhost", Port: 2525})
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, m)

	_, err = NewMailer(config.Email{Backend: "pigeon"})
	assert.Error(t, err)
}
