package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/bookstore/internal/database"
)

var (
	ErrNotFound = errors.New("order not found")
)

type Repository interface {
	Create(ctx context.Context, o *Order, items []Item) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	Items(ctx context.Context, orderID int64) ([]Item, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]Order, error)
	CountByCustomer(ctx context.Context, customerID string) (int, error)
	MarkPaid(ctx context.Context, id int64, txnID *string) (bool, error)
}

type PGRepo struct{ db database.DBTX }

func NewPGRepo(db database.DBTX) *PGRepo { return &PGRepo{db: db} }

const orderColumns = `id, customer_id, name, email, phone, address, country, zip_code,
	payment_method, account_no, transaction_id, payable::text, totalbook, paid, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o       Order
		payable string
	)
	if err := row.Scan(&o.ID, &o.CustomerID, &o.Name, &o.Email, &o.Phone, &o.Address,
		&o.Country, &o.ZipCode, &o.PaymentMethod, &o.AccountNo, &o.TransactionID,
		&payable, &o.TotalBook, &o.Paid, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return Order{}, err
	}
	p, err := decimal.NewFromString(payable)
	if err != nil {
		return Order{}, fmt.Errorf("order %d payable %q: %w", o.ID, payable, err)
	}
	o.Payable = p
	return o, nil
}

// Create stores the order and its items in one transaction and fills in the
// generated id and timestamps.
func (r *PGRepo) Create(ctx context.Context, o *Order, items []Item) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, `
    INSERT INTO orders (customer_id, name, email, phone, address, country, zip_code,
      payment_method, account_no, transaction_id, payable, totalbook, paid)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    RETURNING id, created_at, updated_at
  `, o.CustomerID, o.Name, o.Email, o.Phone, o.Address, o.Country, o.ZipCode,
		o.PaymentMethod, o.AccountNo, o.TransactionID, o.Payable.StringFixed(2), o.TotalBook, o.Paid,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range items {
		items[i].OrderID = o.ID
		if err := tx.QueryRow(ctx, `
      INSERT INTO order_items (order_id, book_id, price, quantity)
      VALUES ($1,$2,$3,$4)
      RETURNING id
    `, o.ID, items[i].BookID, items[i].Price.StringFixed(2), items[i].Quantity,
		).Scan(&items[i].ID); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *PGRepo) Items(ctx context.Context, orderID int64) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
    SELECT i.id, i.order_id, i.book_id, COALESCE(b.name, ''), i.price::text, i.quantity
    FROM order_items i LEFT JOIN books b ON b.id = i.book_id
    WHERE i.order_id = $1
    ORDER BY i.id
  `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.BookID, &it.BookName, &price, &it.Quantity); err != nil {
			return nil, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("order item %d price %q: %w", it.ID, price, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListByCustomer returns the customer's orders, newest first.
func (r *PGRepo) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `
    SELECT `+orderColumns+`
    FROM orders WHERE customer_id = $1
    ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3
  `, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PGRepo) CountByCustomer(ctx context.Context, customerID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM orders WHERE customer_id = $1`, customerID).Scan(&n)
	return n, err
}

// MarkPaid flips paid on and, when txnID is given, records the gateway
// transaction id. It never touches items. The result is true only for the
// call that moved the order from unpaid to paid; the row lock makes that
// exactly one caller.
func (r *PGRepo) MarkPaid(ctx context.Context, id int64, txnID *string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var changed bool
	err := r.db.QueryRow(ctx, `
    UPDATE orders o
    SET paid = TRUE, transaction_id = COALESCE($2, o.transaction_id), updated_at = NOW()
    FROM (SELECT id, paid FROM orders WHERE id = $1 FOR UPDATE) prev
    WHERE o.id = prev.id
    RETURNING NOT prev.paid
  `, id, txnID).Scan(&changed)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return changed, nil
}
