// Package payment drives the PayPal Payments Standard flow: the hosted-page
// redirect form, the browser return/cancel callbacks, IPN notifications and
// the status poll.
package payment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/bookstore/internal/order"
)

type Settings struct {
	ReceiverEmail string
	Currency      string
	ActionURL     string
	Shipping      decimal.Decimal
}

// URLs are the absolute callback addresses handed to PayPal.
type URLs struct {
	Notify string
	Return string
	Cancel string
}

type Field struct {
	Name  string
	Value string
}

// Form is rendered as an auto-submitting POST to ActionURL.
type Form struct {
	ActionURL string
	Fields    []Field
}

func (f Form) Get(name string) string {
	for _, fl := range f.Fields {
		if fl.Name == name {
			return fl.Value
		}
	}
	return ""
}

// InvoiceID is unique per redirect so PayPal never rejects a retry as a
// duplicate invoice.
func InvoiceID(orderID int64) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("INV-%d-%s", orderID, hex[:8])
}

// BuildForm lays out the _xclick fields for o. amount is the books-only part
// so that amount + shipping equals the stored payable. rm=1 brings the buyer
// back with a GET, which carries the SameSite=Lax session cookie.
func BuildForm(o *order.Order, urls URLs, s Settings, invoice string) Form {
	id := strconv.FormatInt(o.ID, 10)
	return Form{
		ActionURL: s.ActionURL,
		Fields: []Field{
			{"cmd", "_xclick"},
			{"business", s.ReceiverEmail},
			{"amount", o.Subtotal(s.Shipping).StringFixed(2)},
			{"shipping", s.Shipping.StringFixed(2)},
			{"item_name", "Bookstore Order #" + id},
			{"item_number", id},
			{"invoice", invoice},
			{"currency_code", s.Currency},
			{"no_note", "1"},
			{"notify_url", urls.Notify},
			{"return", urls.Return},
			{"cancel_return", urls.Cancel},
			{"custom", id},
			{"rm", "1"},
			{"charset", "utf-8"},
			{"lc", "US"},
			{"bn", "PP-BuyNowBF:btn_buynowCC_LG.gif:NonHostedGuest"},
		},
	}
}

// DebugForm is the reduced field set shown on the debug page.
func DebugForm(o *order.Order, urls URLs, s Settings, invoice string) Form {
	id := strconv.FormatInt(o.ID, 10)
	return Form{
		ActionURL: s.ActionURL,
		Fields: []Field{
			{"cmd", "_xclick"},
			{"business", s.ReceiverEmail},
			{"amount", o.Subtotal(s.Shipping).StringFixed(2)},
			{"shipping", s.Shipping.StringFixed(2)},
			{"item_name", "Bookstore Order #" + id},
			{"invoice", invoice},
			{"currency_code", s.Currency},
			{"notify_url", urls.Notify},
			{"return", urls.Return},
			{"cancel_return", urls.Cancel},
			{"custom", id},
		},
	}
}

var ErrInvalidForm = errors.New("invalid payment form")

var requiredFields = []string{"cmd", "business", "amount", "currency_code", "return", "cancel_return"}

// FormBuilder checks a laid-out form before it is rendered: required keys
// present, amounts parseable and not negative, empty optional fields
// dropped.
type FormBuilder struct{}

func (FormBuilder) Build(f Form) (Form, error) {
	if f.ActionURL == "" {
		return f, fmt.Errorf("%w: no action url", ErrInvalidForm)
	}
	for _, name := range requiredFields {
		if f.Get(name) == "" {
			return f, fmt.Errorf("%w: missing %s", ErrInvalidForm, name)
		}
	}
	for _, name := range []string{"amount", "shipping"} {
		v := f.Get(name)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, fmt.Errorf("%w: %s %q", ErrInvalidForm, name, v)
		}
		if d.IsNegative() {
			return f, fmt.Errorf("%w: negative %s", ErrInvalidForm, name)
		}
	}

	out := Form{ActionURL: f.ActionURL, Fields: make([]Field, 0, len(f.Fields))}
	for _, fl := range f.Fields {
		if strings.TrimSpace(fl.Value) == "" {
			continue
		}
		out.Fields = append(out.Fields, fl)
	}
	return out, nil
}
