package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/MikeMC777/bookstore/internal/cart"
	"github.com/MikeMC777/bookstore/internal/httpx"
	"github.com/MikeMC777/bookstore/internal/order"
	"github.com/MikeMC777/bookstore/internal/receipt"
	"github.com/MikeMC777/bookstore/internal/session"
)

// checkoutView renders the shipping form next to the cart summary.
func checkoutView(c *gin.Context, p *pages, orders *order.Service, f order.Form, errs []string) {
	items, err := cartOf(c).Items(c.Request.Context(), p.books)
	if err != nil {
		fail(c, err, "load cart")
		return
	}
	total := cart.Total(items)
	p.render(c, http.StatusOK, "order/create.html", "Checkout", gin.H{
		"Form":       f,
		"Errors":     errs,
		"Items":      items,
		"Total":      total,
		"Shipping":   orders.Shipping(),
		"GrandTotal": total.Add(orders.Shipping()),
	})
}

func checkoutHandler(p *pages, orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sess := httpx.Session(c)
		ct := cartOf(c)

		if ct.Empty() {
			c.Redirect(http.StatusFound, "/books/")
			return
		}

		if c.Request.Method != http.MethodPost {
			f := order.DefaultForm()
			if u, err := p.users.Get(ctx, sess.UserID); err == nil {
				f.Name, f.Email = u.FirstName, u.Email
			}
			checkoutView(c, p, orders, f, nil)
			return
		}

		var f order.Form
		if err := c.ShouldBind(&f); err != nil {
			sess.AddMessage(session.LevelError, "Fill out your information correctly.")
			checkoutView(c, p, orders, f, []string{"Invalid form submission."})
			return
		}

		o, _, err := orders.Checkout(ctx, sess.UserID, f, ct)
		var verrs validator.ValidationErrors
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			c.Redirect(http.StatusFound, "/books/")
		case errors.As(err, &verrs):
			sess.AddMessage(session.LevelError, "Fill out your information correctly.")
			checkoutView(c, p, orders, f, fieldErrors(err))
		case err != nil:
			fail(c, err, "checkout")
		default:
			p.render(c, http.StatusOK, "order/created.html", "Order placed", gin.H{"Order": o})
		}
	}
}

func orderListHandler(p *pages, orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.Query("page"))
		pg, err := orders.History(c.Request.Context(), httpx.Session(c).UserID, page)
		if err != nil {
			fail(c, err, "order history")
			return
		}
		p.render(c, http.StatusOK, "order/list.html", "My orders", gin.H{"Page": pg})
	}
}

// ownedOrder loads :id and checks it belongs to the signed-in customer.
// It writes the response itself when it returns false.
func ownedOrder(c *gin.Context, p *pages, orders *order.Service) (*order.Order, []order.Item, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		notFoundHandler(p)(c)
		return nil, nil, false
	}
	o, items, err := orders.Get(c.Request.Context(), id)
	if errors.Is(err, order.ErrNotFound) {
		notFoundHandler(p)(c)
		return nil, nil, false
	}
	if err != nil {
		fail(c, err, "get order")
		return nil, nil, false
	}
	if o.CustomerID != httpx.Session(c).UserID {
		c.Redirect(http.StatusFound, "/")
		return nil, nil, false
	}
	return o, items, true
}

func orderDetailsHandler(p *pages, orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, items, ok := ownedOrder(c, p, orders)
		if !ok {
			return
		}
		p.render(c, http.StatusOK, "order/details.html", fmt.Sprintf("Order #%d", o.ID), gin.H{
			"Order":    o,
			"Items":    items,
			"Subtotal": o.Subtotal(orders.Shipping()),
			"Shipping": orders.Shipping(),
		})
	}
}

func orderPDFHandler(p *pages, orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, items, ok := ownedOrder(c, p, orders)
		if !ok {
			return
		}
		var buf bytes.Buffer
		if err := receipt.Render(&buf, o, items, orders.Shipping()); err != nil {
			fail(c, err, "render receipt")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="order-%d.pdf"`, o.ID))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	}
}
