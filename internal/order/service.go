package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/bookstore/internal/cart"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
)

// PerPage is the page size of the order history.
const PerPage = 5

type Service struct {
	repo     Repository
	books    cart.Books
	shipping decimal.Decimal
	validate *validator.Validate
}

func NewService(repo Repository, books cart.Books, shipping decimal.Decimal) *Service {
	return &Service{repo: repo, books: books, shipping: shipping, validate: validator.New()}
}

func (s *Service) Shipping() decimal.Decimal { return s.shipping }

// Validate checks the checkout form. The returned error is a
// validator.ValidationErrors when the input is at fault.
func (s *Service) Validate(f *Form) error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Country = strings.ToUpper(strings.TrimSpace(f.Country))
	return s.validate.Struct(f)
}

// Checkout turns the cart into a persisted order. The cart is cleared only
// once the order and all its items are stored.
func (s *Service) Checkout(ctx context.Context, customerID string, f Form, c *cart.Cart) (*Order, []Item, error) {
	if c.Empty() {
		return nil, nil, ErrEmptyCart
	}
	if err := s.Validate(&f); err != nil {
		return nil, nil, err
	}
	return s.Place(ctx, customerID, f, c)
}

// Place persists the cart as an order without validating f. The PayPal
// shortcut uses it with whatever contact details the page sent.
func (s *Service) Place(ctx context.Context, customerID string, f Form, c *cart.Cart) (*Order, []Item, error) {
	if c.Empty() {
		return nil, nil, ErrEmptyCart
	}

	lines, err := c.Items(ctx, s.books)
	if err != nil {
		return nil, nil, err
	}
	if len(lines) == 0 {
		return nil, nil, ErrEmptyCart
	}

	subtotal := cart.Total(lines)
	totalBook := 0
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, Item{
			BookID:   l.Book.ID,
			BookName: l.Book.Name,
			Price:    l.Price,
			Quantity: l.Quantity,
		})
		totalBook += l.Quantity
	}

	o := &Order{
		CustomerID:    customerID,
		Name:          f.Name,
		Email:         f.Email,
		Phone:         f.Phone,
		Address:       f.Address,
		Country:       f.Country,
		ZipCode:       f.ZipCode,
		PaymentMethod: f.PaymentMethod,
		AccountNo:     f.AccountNo,
		TransactionID: f.TransactionID,
		Payable:       subtotal.Add(s.shipping),
		TotalBook:     totalBook,
	}
	if err := s.repo.Create(ctx, o, items); err != nil {
		return nil, nil, fmt.Errorf("create order: %w", err)
	}
	c.Clear()

	zerolog.Ctx(ctx).Info().
		Int64("order_id", o.ID).
		Str("customer_id", customerID).
		Str("payable", o.Payable.StringFixed(2)).
		Int("totalbook", o.TotalBook).
		Msg("order created")
	return o, items, nil
}

// Get returns the order and its items.
func (s *Service) Get(ctx context.Context, id int64) (*Order, []Item, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repo.Items(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return o, items, nil
}

type Page struct {
	Orders  []Order
	Number  int
	Pages   int
	HasPrev bool
	HasNext bool
}

// History returns one page (1-based) of the customer's orders. Out of range
// pages are clamped to the nearest valid one.
func (s *Service) History(ctx context.Context, customerID string, page int) (Page, error) {
	total, err := s.repo.CountByCustomer(ctx, customerID)
	if err != nil {
		return Page{}, err
	}
	pages := (total + PerPage - 1) / PerPage
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	orders, err := s.repo.ListByCustomer(ctx, customerID, PerPage, (page-1)*PerPage)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Orders:  orders,
		Number:  page,
		Pages:   pages,
		HasPrev: page > 1,
		HasNext: page < pages,
	}, nil
}
