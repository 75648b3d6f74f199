package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/bookstore/internal/order"
)

//go:embed templates/*.html
var templateFS embed.FS

var tmpl = template.Must(template.New("").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}).ParseFS(templateFS, "templates/*.html"))

var emailsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bookstore_emails_total",
		Help: "Order confirmation emails, by outcome.",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(emailsTotal)
}

type confirmationData struct {
	Order        *order.Order
	Items        []order.Item
	Subtotal     decimal.Decimal
	Shipping     decimal.Decimal
	Total        decimal.Decimal
	CustomerName string
}

func ConfirmationSubject(orderID int64) string {
	return fmt.Sprintf("Order Confirmation - Your Bookstore Purchase #%d", orderID)
}

// OrderConfirmation renders the confirmation email for a paid order.
func OrderConfirmation(o *order.Order, items []order.Item, shipping decimal.Decimal, from string) (Message, error) {
	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, "order_confirmation.html", confirmationData{
		Order:        o,
		Items:        items,
		Subtotal:     o.Subtotal(shipping),
		Shipping:     shipping,
		Total:        o.Payable,
		CustomerName: o.Name,
	})
	if err != nil {
		return Message{}, fmt.Errorf("render confirmation: %w", err)
	}
	html := buf.String()
	return Message{
		To:      []string{o.Email},
		From:    from,
		Subject: ConfirmationSubject(o.ID),
		HTML:    html,
		Text:    StripTags(html),
	}, nil
}

// Notifier sends order emails synchronously. Failures are logged and
// reported, never returned.
type Notifier struct {
	mailer   Mailer
	from     string
	shipping decimal.Decimal
}

func NewNotifier(m Mailer, from string, shipping decimal.Decimal) *Notifier {
	return &Notifier{mailer: m, from: from, shipping: shipping}
}

func (n *Notifier) OrderPaid(ctx context.Context, o *order.Order, items []order.Item) bool {
	l := zerolog.Ctx(ctx)

	msg, err := OrderConfirmation(o, items, n.shipping, n.from)
	if err != nil {
		emailsTotal.WithLabelValues("error").Inc()
		l.Error().Err(err).Int64("order_id", o.ID).Msg("failed to render order confirmation email")
		return false
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		emailsTotal.WithLabelValues("error").Inc()
		l.Error().Err(err).Int64("order_id", o.ID).Msg("failed to send order confirmation email")
		return false
	}
	emailsTotal.WithLabelValues("sent").Inc()
	l.Info().Int64("order_id", o.ID).Str("to", o.Email).Msg("order confirmation email sent")
	return true
}
