package payment

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const StatusCompleted = "Completed"

// IPN is one Instant Payment Notification as posted by PayPal.
type IPN struct {
	ID            int64
	TxnID         string
	TxnType       string
	PaymentStatus string
	ReceiverEmail string
	PayerEmail    string
	McGross       string
	McCurrency    string
	Invoice       string
	Custom        string
	Flag          bool
	FlagInfo      string
	Query         string
	CreatedAt     time.Time
}

// ParseIPN reads the form-encoded notification body. The raw body is kept
// verbatim for the verification postback.
func ParseIPN(body []byte) (*IPN, error) {
	raw := string(body)
	v, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("parse ipn: %w", err)
	}
	return &IPN{
		TxnID:         v.Get("txn_id"),
		TxnType:       v.Get("txn_type"),
		PaymentStatus: v.Get("payment_status"),
		ReceiverEmail: v.Get("receiver_email"),
		PayerEmail:    v.Get("payer_email"),
		McGross:       v.Get("mc_gross"),
		McCurrency:    v.Get("mc_currency"),
		Invoice:       v.Get("invoice"),
		Custom:        v.Get("custom"),
		Query:         raw,
	}, nil
}

// OrderID is the order carried in the custom field.
func (i *IPN) OrderID() (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(i.Custom), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (i *IPN) SetFlag(info string) {
	i.Flag = true
	if i.FlagInfo != "" {
		i.FlagInfo += "; "
	}
	i.FlagInfo += info
}
