package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MikeMC777/bookstore/internal/cart"
	"github.com/MikeMC777/bookstore/internal/order"
)

// Notifier sends the confirmation email and reports whether it went out.
type Notifier interface {
	OrderPaid(ctx context.Context, o *order.Order, items []order.Item) bool
}

// Placer turns a cart into a persisted order.
type Placer interface {
	Place(ctx context.Context, customerID string, f order.Form, c *cart.Cart) (*order.Order, []order.Item, error)
}

// IPN outcomes, also used as metric labels.
const (
	IPNCompleted    = "completed"
	IPNIgnored      = "ignored"
	IPNFlagged      = "flagged"
	IPNUnknownOrder = "unknown_order"
	IPNError        = "error"
)

type Service struct {
	orders   order.Repository
	ipns     IPNStore
	verifier Verifier
	notifier Notifier
	placer   Placer
	settings Settings
	builder  FormBuilder

	// trustReturn marks orders paid on the browser return. When false only
	// a verified IPN does.
	trustReturn bool
}

type Options struct {
	Orders      order.Repository
	IPNs        IPNStore
	Verifier    Verifier
	Notifier    Notifier
	Placer      Placer
	Settings    Settings
	TrustReturn bool
}

func NewService(o Options) *Service {
	return &Service{
		orders:      o.Orders,
		ipns:        o.IPNs,
		verifier:    o.Verifier,
		notifier:    o.Notifier,
		placer:      o.Placer,
		settings:    o.Settings,
		trustReturn: o.TrustReturn,
	}
}

func (s *Service) Settings() Settings { return s.settings }

// PaymentForm builds the redirect form for orderID. If the form fails its
// checks the raw field set is used as is.
func (s *Service) PaymentForm(ctx context.Context, orderID int64, urls URLs) (*order.Order, Form, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, Form{}, err
	}
	raw := BuildForm(o, urls, s.settings, InvoiceID(o.ID))

	l := zerolog.Ctx(ctx)
	ev := l.Debug().Int64("order_id", o.ID).Str("action", raw.ActionURL)
	for _, f := range raw.Fields {
		ev = ev.Str(f.Name, f.Value)
	}
	ev.Msg("paypal form")

	form, err := s.builder.Build(raw)
	if err != nil {
		l.Warn().Err(err).Int64("order_id", o.ID).Msg("paypal form rejected, using raw fields")
		return o, raw, nil
	}
	return o, form, nil
}

func (s *Service) DebugForm(ctx context.Context, orderID int64, urls URLs) (*order.Order, Form, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, Form{}, err
	}
	return o, DebugForm(o, urls, s.settings, InvoiceID(o.ID)), nil
}

type ReturnResult struct {
	Order     *order.Order
	EmailSent bool
	// Pending is set when the return was not trusted and no verified IPN
	// has marked the order paid yet.
	Pending bool
}

// ConfirmReturn handles the browser coming back from PayPal. Whichever of
// the return and the IPN marks the order paid sends the email; a later call
// changes nothing and sends no second one.
func (s *Service) ConfirmReturn(ctx context.Context, orderID int64) (ReturnResult, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return ReturnResult{}, err
	}
	if o.Paid {
		return ReturnResult{Order: o}, nil
	}
	if !s.trustReturn {
		return ReturnResult{Order: o, Pending: true}, nil
	}

	changed, err := s.orders.MarkPaid(ctx, o.ID, nil)
	if err != nil {
		return ReturnResult{}, fmt.Errorf("mark paid: %w", err)
	}
	o.Paid = true
	if !changed {
		// an IPN got there first and sent the email
		return ReturnResult{Order: o}, nil
	}
	transitionsTotal.WithLabelValues("return").Inc()
	zerolog.Ctx(ctx).Info().Int64("order_id", o.ID).Msg("order paid on return")

	return ReturnResult{Order: o, EmailSent: s.sendConfirmation(ctx, o)}, nil
}

// Cancel is the browser coming back without paying. The order is untouched.
func (s *Service) Cancel(ctx context.Context, orderID int64) (*order.Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

func (s *Service) Status(ctx context.Context, orderID int64) (order.PaymentStatus, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return order.PaymentStatus{}, err
	}
	st := order.PaymentStatus{Paid: o.Paid, OrderID: o.ID}
	if o.Paid {
		txn := o.TransactionID
		st.TransactionID = &txn
	}
	return st, nil
}

// CreateFromCart places a PayPal order straight from the cart.
func (s *Service) CreateFromCart(ctx context.Context, customerID string, f order.Form, c *cart.Cart) (*order.Order, error) {
	f.PaymentMethod = order.MethodPayPal
	f.AccountNo = ""
	f.TransactionID = ""
	if f.Country == "" {
		f.Country = "KE"
	}
	o, _, err := s.placer.Place(ctx, customerID, f, c)
	return o, err
}

// HandleIPN records, verifies and applies one notification. The returned
// outcome is informational; PayPal always gets a 200.
func (s *Service) HandleIPN(ctx context.Context, body []byte) (string, error) {
	l := zerolog.Ctx(ctx)

	n, err := ParseIPN(body)
	if err != nil {
		ipnMessagesTotal.WithLabelValues(IPNError).Inc()
		return IPNError, err
	}

	if err := s.verifier.Verify(ctx, body); err != nil {
		n.SetFlag("Invalid postback. (" + err.Error() + ")")
	}
	if !n.Flag && !strings.EqualFold(n.ReceiverEmail, s.settings.ReceiverEmail) {
		n.SetFlag("Invalid receiver_email. (" + n.ReceiverEmail + ")")
	}
	if !n.Flag && n.PaymentStatus == StatusCompleted && n.TxnID != "" {
		seen, err := s.ipns.CompletedTxnExists(ctx, n.TxnID)
		if err != nil {
			ipnMessagesTotal.WithLabelValues(IPNError).Inc()
			return IPNError, fmt.Errorf("check txn: %w", err)
		}
		if seen {
			n.SetFlag("Duplicate txn_id. (" + n.TxnID + ")")
		}
	}

	if err := s.ipns.Save(ctx, n); err != nil {
		ipnMessagesTotal.WithLabelValues(IPNError).Inc()
		return IPNError, fmt.Errorf("save ipn: %w", err)
	}

	result, err := s.applyIPN(ctx, n)
	ipnMessagesTotal.WithLabelValues(result).Inc()
	l.Info().
		Int64("ipn_id", n.ID).
		Str("txn_id", n.TxnID).
		Str("status", n.PaymentStatus).
		Str("custom", n.Custom).
		Str("result", result).
		Str("flag_info", n.FlagInfo).
		Msg("ipn received")
	return result, err
}

func (s *Service) applyIPN(ctx context.Context, n *IPN) (string, error) {
	if n.Flag {
		return IPNFlagged, nil
	}
	if n.PaymentStatus != StatusCompleted {
		return IPNIgnored, nil
	}
	id, ok := n.OrderID()
	if !ok {
		return IPNUnknownOrder, nil
	}
	txn := n.TxnID
	changed, err := s.orders.MarkPaid(ctx, id, &txn)
	if errors.Is(err, order.ErrNotFound) {
		return IPNUnknownOrder, nil
	}
	if err != nil {
		return IPNError, fmt.Errorf("mark paid: %w", err)
	}
	if !changed {
		return IPNCompleted, nil
	}

	transitionsTotal.WithLabelValues("ipn").Inc()
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("order_id", id).Msg("load paid order for confirmation email")
		return IPNCompleted, nil
	}
	s.sendConfirmation(ctx, o)
	return IPNCompleted, nil
}

func (s *Service) sendConfirmation(ctx context.Context, o *order.Order) bool {
	if s.notifier == nil {
		return false
	}
	items, err := s.orders.Items(ctx, o.ID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("order_id", o.ID).Msg("load items for confirmation email")
		return false
	}
	return s.notifier.OrderPaid(ctx, o, items)
}
