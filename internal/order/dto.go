package order

// Form is the checkout (shipping) form.
type Form struct {
	Name          string `form:"name" validate:"required,max=200"`
	Email         string `form:"email" validate:"required,email,max=254"`
	Phone         string `form:"phone" validate:"required,max=20"`
	Address       string `form:"address" validate:"required,max=300"`
	Country       string `form:"country" validate:"required,iso3166_1_alpha2"`
	ZipCode       string `form:"zip_code" validate:"required,max=20"`
	PaymentMethod string `form:"payment_method" validate:"required,oneof='Card Payment' PayPal"`
	AccountNo     string `form:"account_no" validate:"max=30"`
	TransactionID string `form:"transaction_id" validate:"omitempty,numeric,max=30"`
}

// DefaultForm is what an empty checkout page starts from.
func DefaultForm() Form {
	return Form{Country: "KE", PaymentMethod: MethodCard}
}

// PaymentStatus is the answer of the payment status poll.
// swagger:model PaymentStatus
type PaymentStatus struct {
	Paid          bool    `json:"paid" example:"true"`
	OrderID       int64   `json:"order_id" example:"42"`
	TransactionID *string `json:"transaction_id" example:"9AB12345CD678901E"`
}

// CreatePaymentResponse answers the AJAX "pay with PayPal" call.
// swagger:model CreatePaymentResponse
type CreatePaymentResponse struct {
	Success    bool   `json:"success" example:"true"`
	PaymentURL string `json:"payment_url,omitempty" example:"/order/paypal/payment/42/"`
	OrderID    int64  `json:"order_id,omitempty" example:"42"`
	Error      string `json:"error,omitempty"`
}
