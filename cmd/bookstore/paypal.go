package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/bookstore/internal/httpx"
	"github.com/MikeMC777/bookstore/internal/order"
	"github.com/MikeMC777/bookstore/internal/payment"
	"github.com/MikeMC777/bookstore/internal/session"
)

const maxIPNBody = 64 << 10

// baseURL is the absolute origin of the current request, as the buyer's
// browser sees it.
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

func callbackURLs(c *gin.Context, orderID int64) payment.URLs {
	base := baseURL(c)
	return payment.URLs{
		Notify: base + "/paypal/",
		Return: fmt.Sprintf("%s/order/paypal/success/%d/", base, orderID),
		Cancel: fmt.Sprintf("%s/order/paypal/cancel/%d/", base, orderID),
	}
}

func paymentURL(orderID int64) string {
	return fmt.Sprintf("/order/paypal/payment/%d/", orderID)
}

// orderIDParam parses :order_id and answers 404 on garbage.
func orderIDParam(c *gin.Context, p *pages) (int64, bool) {
	id, ok := idParam(c, "order_id")
	if !ok {
		notFoundHandler(p)(c)
	}
	return id, ok
}

// orderErr answers a failed order lookup.
func orderErr(c *gin.Context, p *pages, err error) {
	if errors.Is(err, order.ErrNotFound) {
		notFoundHandler(p)(c)
		return
	}
	fail(c, err, "load order")
}

// notice puts a message on the page about to be rendered. PayPal's return
// may arrive without the session cookie; the session is then left untouched
// so the browser keeps the one it has.
func notice(c *gin.Context, extra gin.H, level, text string) {
	if httpx.HasSessionCookie(c) {
		httpx.Session(c).AddMessage(level, text)
		return
	}
	extra["Messages"] = []session.Message{{Level: level, Text: text}}
}

func paypalPaymentHandler(p *pages, payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderIDParam(c, p)
		if !ok {
			return
		}
		o, form, err := payments.PaymentForm(c.Request.Context(), id, callbackURLs(c, id))
		if err != nil {
			orderErr(c, p, err)
			return
		}
		p.render(c, http.StatusOK, "order/paypal_payment.html", "PayPal", gin.H{"Order": o, "Form": form})
	}
}

func paypalDebugHandler(p *pages, payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderIDParam(c, p)
		if !ok {
			return
		}
		o, form, err := payments.DebugForm(c.Request.Context(), id, callbackURLs(c, id))
		if err != nil {
			orderErr(c, p, err)
			return
		}
		p.render(c, http.StatusOK, "order/paypal_debug.html", "PayPal debug", gin.H{"Order": o, "Form": form})
	}
}

// paypalSuccessHandler is PayPal's return URL. It may be reached cross-site
// without the session cookie, so it relies on neither the session login nor
// a CSRF token.
func paypalSuccessHandler(p *pages, payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderIDParam(c, p)
		if !ok {
			return
		}
		res, err := payments.ConfirmReturn(c.Request.Context(), id)
		if err != nil {
			orderErr(c, p, err)
			return
		}

		extra := gin.H{
			"Order":     res.Order,
			"EmailSent": res.EmailSent,
			"Pending":   res.Pending,
		}
		switch {
		case res.Pending:
			notice(c, extra, session.LevelInfo, "Thank you! Your payment is being confirmed by PayPal.")
		case res.EmailSent:
			notice(c, extra, session.LevelSuccess, "Your payment was successful! Order has been confirmed. A confirmation email has been sent.")
		default:
			notice(c, extra, session.LevelSuccess, "Your payment was successful! Order has been confirmed.")
		}
		p.render(c, http.StatusOK, "order/paypal_success.html", "Payment", extra)
	}
}

func paypalCancelHandler(p *pages, payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderIDParam(c, p)
		if !ok {
			return
		}
		o, err := payments.Cancel(c.Request.Context(), id)
		if err != nil {
			orderErr(c, p, err)
			return
		}
		extra := gin.H{"Order": o}
		notice(c, extra, session.LevelWarning, "Payment was cancelled. You can try again.")
		p.render(c, http.StatusOK, "order/paypal_cancel.html", "Payment cancelled", extra)
	}
}

// paypalCreateHandler godoc
// @Summary      Create a PayPal order
// @Description  Creates a PayPal order from the session cart and returns the redirect page URL.
// @Tags         payment
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Success      200  {object}  order.CreatePaymentResponse
// @Failure      401
// @Router       /order/paypal/create/ [post]
func paypalCreateHandler(payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f order.Form
		if err := c.ShouldBind(&f); err != nil {
			c.JSON(http.StatusOK, order.CreatePaymentResponse{Error: "invalid form submission"})
			return
		}

		o, err := payments.CreateFromCart(c.Request.Context(), httpx.Session(c).UserID, f, cartOf(c))
		if errors.Is(err, order.ErrEmptyCart) {
			c.JSON(http.StatusOK, order.CreatePaymentResponse{Error: "Your cart is empty."})
			return
		}
		if err != nil {
			logger(c).Error().Err(err).Msg("create paypal order")
			c.JSON(http.StatusOK, order.CreatePaymentResponse{Error: "Could not create the order."})
			return
		}
		c.JSON(http.StatusOK, order.CreatePaymentResponse{
			Success:    true,
			PaymentURL: paymentURL(o.ID),
			OrderID:    o.ID,
		})
	}
}

// paymentStatusHandler godoc
// @Summary      Payment status of an order
// @Tags         payment
// @Produce      json
// @Param        order_id  path  int  true  "Order ID"
// @Success      200  {object}  order.PaymentStatus
// @Router       /order/check-payment-status/{order_id}/ [get]
func paymentStatusHandler(payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "order_id")
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"paid": false, "error": "Order not found"})
			return
		}
		st, err := payments.Status(c.Request.Context(), id)
		if errors.Is(err, order.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"paid": false, "error": "Order not found"})
			return
		}
		if err != nil {
			logger(c).Error().Err(err).Int64("order_id", id).Msg("payment status")
			c.JSON(http.StatusInternalServerError, gin.H{"paid": false, "error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

// ipnHandler always answers 200 so PayPal stops retrying; the outcome is in
// the paypal_ipn table and the logs.
func ipnHandler(payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIPNBody))
		if err != nil {
			logger(c).Error().Err(err).Msg("read ipn body")
			c.Status(http.StatusOK)
			return
		}
		if _, err := payments.HandleIPN(c.Request.Context(), body); err != nil {
			logger(c).Error().Err(err).Msg("handle ipn")
		}
		c.String(http.StatusOK, "OK")
	}
}
