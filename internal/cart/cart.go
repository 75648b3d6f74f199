// Package cart is a view over the cart lines kept in the customer's session.
// A Cart is built per request; two concurrent requests on one session both
// save their copy and the later save wins.
package cart

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/bookstore/internal/catalog"
	"github.com/MikeMC777/bookstore/internal/session"
)

// Books resolves cart lines to catalog rows.
type Books interface {
	GetMany(ctx context.Context, ids []int64) (map[int64]catalog.Book, error)
}

type Item struct {
	Book       catalog.Book
	Quantity   int
	Price      decimal.Decimal
	TotalPrice decimal.Decimal
}

type Cart struct {
	sess *session.Session
}

func New(sess *session.Session) *Cart {
	if sess.Cart == nil {
		sess.Cart = map[string]session.CartLine{}
	}
	return &Cart{sess: sess}
}

func key(bookID int64) string { return strconv.FormatInt(bookID, 10) }

// Add puts one copy of book in the cart, or one more if it is already there.
// The stored price is refreshed from the catalog row.
func (c *Cart) Add(book catalog.Book) {
	k := key(book.ID)
	line := c.sess.Cart[k]
	line.Quantity++
	line.Price = book.Price.StringFixed(2)
	c.sess.Cart[k] = line
	c.sess.MarkModified()
}

// Update sets the quantity of book. Zero or less removes the line.
func (c *Cart) Update(book catalog.Book, quantity int) {
	if quantity <= 0 {
		c.Remove(book.ID)
		return
	}
	c.sess.Cart[key(book.ID)] = session.CartLine{
		Quantity: quantity,
		Price:    book.Price.StringFixed(2),
	}
	c.sess.MarkModified()
}

func (c *Cart) Remove(bookID int64) {
	k := key(bookID)
	if _, ok := c.sess.Cart[k]; !ok {
		return
	}
	delete(c.sess.Cart, k)
	c.sess.MarkModified()
}

func (c *Cart) Clear() {
	c.sess.Cart = map[string]session.CartLine{}
	c.sess.MarkModified()
}

// Quantity of bookID currently in the cart.
func (c *Cart) Quantity(bookID int64) int {
	return c.sess.Cart[key(bookID)].Quantity
}

// Len is the number of individual books, not distinct lines.
func (c *Cart) Len() int {
	n := 0
	for _, l := range c.sess.Cart {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Lines() int { return len(c.sess.Cart) }

func (c *Cart) Empty() bool { return c.Len() == 0 }

// TotalPrice sums price × quantity over the stored lines. Lines with an
// unreadable price count as zero.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.sess.Cart {
		p, err := decimal.NewFromString(l.Price)
		if err != nil {
			continue
		}
		total = total.Add(p.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// ItemTotal is price × quantity for one line, zero if absent.
func (c *Cart) ItemTotal(bookID int64) decimal.Decimal {
	l, ok := c.sess.Cart[key(bookID)]
	if !ok {
		return decimal.Zero
	}
	p, err := decimal.NewFromString(l.Price)
	if err != nil {
		return decimal.Zero
	}
	return p.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total sums resolved items. This is what an order placed from them will
// charge before shipping.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return total
}

// Items resolves every line against the catalog, ordered by book id. Lines
// whose book no longer exists are skipped. Prices are the ones stored in the
// cart, not the current catalog price.
func (c *Cart) Items(ctx context.Context, books Books) ([]Item, error) {
	if len(c.sess.Cart) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(c.sess.Cart))
	for k := range c.sess.Cart {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	found, err := books.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load cart books: %w", err)
	}

	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		b, ok := found[id]
		if !ok {
			continue
		}
		l := c.sess.Cart[key(id)]
		price, err := decimal.NewFromString(l.Price)
		if err != nil {
			price = b.Price
		}
		items = append(items, Item{
			Book:       b,
			Quantity:   l.Quantity,
			Price:      price,
			TotalPrice: price.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	return items, nil
}
