package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MethodCard   = "Card Payment"
	MethodPayPal = "PayPal"
)

type Order struct {
	ID            int64           `json:"id"`
	CustomerID    string          `json:"customer_id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Address       string          `json:"address"`
	Country       string          `json:"country"`
	ZipCode       string          `json:"zip_code"`
	PaymentMethod string          `json:"payment_method"`
	AccountNo     string          `json:"account_no,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Payable       decimal.Decimal `json:"payable"`
	TotalBook     int             `json:"totalbook"`
	Paid          bool            `json:"paid"`
	CreatedAt     time.Time       `json:"created"`
	UpdatedAt     time.Time       `json:"updated"`
}

// Subtotal is the books-only part of the payable amount.
func (o *Order) Subtotal(shipping decimal.Decimal) decimal.Decimal {
	return o.Payable.Sub(shipping)
}

type Item struct {
	ID       int64           `json:"id"`
	OrderID  int64           `json:"order_id"`
	BookID   int64           `json:"book_id"`
	BookName string          `json:"book_name,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (it Item) Cost() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
