package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/bookstore/docs"
	"github.com/MikeMC777/bookstore/internal/catalog"
	"github.com/MikeMC777/bookstore/internal/config"
	"github.com/MikeMC777/bookstore/internal/httpx"
	"github.com/MikeMC777/bookstore/internal/order"
	"github.com/MikeMC777/bookstore/internal/payment"
	"github.com/MikeMC777/bookstore/internal/session"
	"github.com/MikeMC777/bookstore/internal/user"
	"github.com/MikeMC777/bookstore/internal/web"
)

const signinPath = "/accounts/signin/"

type deps struct {
	cfg      config.Config
	books    catalog.Repository
	users    *user.Service
	orders   *order.Service
	payments *payment.Service
	sessions *session.Store
}

func newRouter(d deps) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)

	pc := &pages{books: d.books, users: d.users}
	r.Use(
		httpx.RequestID(),
		httpx.Logger(),
		httpx.Recovery(serverErrorHandler()),
		httpx.AllowedHosts(d.cfg.AllowedHosts),
		httpx.Metrics(),
	)

	// ops
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.StaticFS("/static", http.FS(web.Static()))

	// PayPal posts IPNs server to server, without a session.
	r.POST("/paypal/", ipnHandler(d.payments))

	sessions := httpx.Sessions(d.sessions, d.cfg.SecretKey, !d.cfg.Debug)
	site := r.Group("/", sessions)
	auth := httpx.RequireAuth(signinPath)

	site.GET("/", indexHandler(pc))
	site.GET("/books/", booksHandler(pc))
	site.GET("/books/:id", bookHandler(pc))

	accounts := site.Group("/accounts")
	accounts.GET("/signin/", signinFormHandler(pc))
	accounts.POST("/signin/", httpx.Throttle(1, 5), signinHandler(pc, d.users))
	accounts.GET("/signup/", signupFormHandler(pc))
	accounts.POST("/signup/", signupHandler(pc, d.users))
	accounts.GET("/signout/", signoutHandler())

	cartGroup := site.Group("/cart")
	cartGroup.GET("/", cartDetailsHandler(pc))
	cartGroup.Match([]string{http.MethodGet, http.MethodPost}, "/add/:bookid/", cartAddHandler(d.books))
	cartGroup.Match([]string{http.MethodGet, http.MethodPost}, "/update/:bookid/:quantity/", cartUpdateHandler(d.books))
	cartGroup.Match([]string{http.MethodGet, http.MethodPost}, "/remove/:bookid/", cartRemoveHandler(d.books))
	cartGroup.GET("/total/", cartTotalHandler())
	cartGroup.GET("/summary/", cartSummaryHandler(d.books, d.orders.Shipping()))

	orders := site.Group("/order")
	orders.GET("/", auth, orderListHandler(pc, d.orders))
	orders.GET("/:id", auth, orderDetailsHandler(pc, d.orders))
	orders.Match([]string{http.MethodGet, http.MethodPost}, "/shipping/", auth, checkoutHandler(pc, d.orders))
	orders.GET("/pdf/:id", auth, orderPDFHandler(pc, d.orders))

	orders.GET("/paypal/payment/:order_id/", paypalPaymentHandler(pc, d.payments))
	orders.GET("/paypal/debug/:order_id/", paypalDebugHandler(pc, d.payments))
	orders.Match([]string{http.MethodGet, http.MethodPost}, "/paypal/success/:order_id/", paypalSuccessHandler(pc, d.payments))
	orders.Match([]string{http.MethodGet, http.MethodPost}, "/paypal/cancel/:order_id/", paypalCancelHandler(pc, d.payments))
	orders.POST("/paypal/create/", auth, paypalCreateHandler(d.payments))
	orders.GET("/check-payment-status/:order_id/", paymentStatusHandler(d.payments))

	r.NoRoute(sessions, notFoundHandler(pc))
	return r, nil
}

// pages assembles the data every full page shares: the signed-in customer,
// the cart badge, flash messages and the category sidebar.
type pages struct {
	books catalog.Repository
	users *user.Service
}

func (p *pages) data(c *gin.Context, title string) gin.H {
	ctx := c.Request.Context()
	sess := httpx.Session(c)

	h := gin.H{
		"Title":    title,
		"Query":    "",
		"CartLen":  cartOf(c).Len(),
		"Messages": sess.PopMessages(),
	}
	if sess.IsAuthenticated() {
		if u, err := p.users.Get(ctx, sess.UserID); err == nil {
			h["User"] = u
		} else {
			logger(c).Warn().Err(err).Str("user_id", sess.UserID).Msg("session user not found")
		}
	}
	if cats, err := p.books.Categories(ctx); err == nil {
		h["Categories"] = cats
	} else {
		logger(c).Error().Err(err).Msg("load categories")
	}
	return h
}

func (p *pages) render(c *gin.Context, status int, name, title string, extra gin.H) {
	h := p.data(c, title)
	for k, v := range extra {
		h[k] = v
	}
	c.HTML(status, name, h)
}

func notFoundHandler(p *pages) gin.HandlerFunc {
	return func(c *gin.Context) {
		p.render(c, http.StatusNotFound, "errors/404.html", "Not found", nil)
	}
}

// The 500 page skips the shared lookups, which may be what failed.
func serverErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusInternalServerError, "errors/500.html", gin.H{"Title": "Server error", "Query": "", "CartLen": 0})
	}
}

// fail logs err and answers with the 500 page.
func fail(c *gin.Context, err error, msg string) {
	logger(c).Error().Err(err).Msg(msg)
	serverErrorHandler()(c)
}
