package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/bookstore/internal/cart"
	"github.com/MikeMC777/bookstore/internal/catalog"
	"github.com/MikeMC777/bookstore/internal/httpx"
)

type cartAddResponse struct {
	Status    string `json:"status" example:"success"`
	Message   string `json:"message" example:"Book added to cart successfully!"`
	CartTotal int    `json:"cart_total" example:"3"`
	BookTitle string `json:"book_title" example:"Things Fall Apart"`
}

type cartUpdateResponse struct {
	Status         string `json:"status" example:"success"`
	NewPrice       string `json:"new_price" example:"20.00"`
	CartTotal      int    `json:"cart_total" example:"3"`
	CartTotalPrice string `json:"cart_total_price" example:"25.00"`
}

// lookupBook resolves the :bookid parameter, answering 404 itself when the
// book does not exist.
func lookupBook(c *gin.Context, books catalog.Repository) (*catalog.Book, bool) {
	id, ok := idParam(c, "bookid")
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return nil, false
	}
	book, err := books.GetByID(c.Request.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		c.AbortWithStatus(http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		fail(c, err, "get book")
		return nil, false
	}
	return book, true
}

// cartAddHandler godoc
// @Summary      Add a book to the cart
// @Tags         cart
// @Produce      json
// @Param        bookid            path    int     true   "Book ID"
// @Param        X-Requested-With  header  string  false  "XMLHttpRequest"
// @Success      200  {object}  cartAddResponse
// @Failure      404
// @Router       /cart/add/{bookid}/ [post]
func cartAddHandler(books catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		book, ok := lookupBook(c, books)
		if !ok {
			return
		}
		ct := cartOf(c)
		ct.Add(*book)

		if httpx.IsAJAX(c) {
			c.JSON(http.StatusOK, cartAddResponse{
				Status:    "success",
				Message:   "Book added to cart successfully!",
				CartTotal: ct.Len(),
				BookTitle: book.Name,
			})
			return
		}
		c.Redirect(http.StatusFound, "/")
	}
}

// cartUpdateHandler godoc
// @Summary      Update a cart line
// @Description  Sets the quantity of a cart line; zero removes it.
// @Tags         cart
// @Produce      json
// @Param        bookid    path  int  true  "Book ID"
// @Param        quantity  path  int  true  "New quantity"
// @Success      200  {object}  cartUpdateResponse
// @Failure      404
// @Router       /cart/update/{bookid}/{quantity}/ [post]
func cartUpdateHandler(books catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		quantity, err := strconv.Atoi(c.Param("quantity"))
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		book, ok := lookupBook(c, books)
		if !ok {
			return
		}
		ct := cartOf(c)
		ct.Update(*book, quantity)

		price := decimal.Zero
		if quantity > 0 {
			price = book.Price.Mul(decimal.NewFromInt(int64(quantity)))
		}
		if httpx.IsAJAX(c) {
			c.JSON(http.StatusOK, cartUpdateResponse{
				Status:         "success",
				NewPrice:       price.StringFixed(2),
				CartTotal:      ct.Len(),
				CartTotalPrice: ct.TotalPrice().StringFixed(2),
			})
			return
		}
		c.HTML(http.StatusOK, "cart/price.html", price)
	}
}

func cartRemoveHandler(books catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		book, ok := lookupBook(c, books)
		if !ok {
			return
		}
		cartOf(c).Remove(book.ID)
		c.Redirect(http.StatusFound, "/cart/")
	}
}

func cartDetailsHandler(p *pages) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := cartOf(c).Items(c.Request.Context(), p.books)
		if err != nil {
			fail(c, err, "load cart")
			return
		}
		p.render(c, http.StatusOK, "cart/details.html", "Cart", gin.H{
			"Items": items,
			"Total": cart.Total(items),
		})
	}
}

// cartTotalHandler answers the badge fragment.
func cartTotalHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "cart/total.html", gin.H{"CartLen": cartOf(c).Len()})
	}
}

func cartSummaryHandler(books catalog.Repository, shipping decimal.Decimal) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := cartOf(c).Items(c.Request.Context(), books)
		if err != nil {
			fail(c, err, "load cart")
			return
		}
		total := cart.Total(items)
		c.HTML(http.StatusOK, "cart/summary.html", gin.H{
			"Items":      items,
			"Total":      total,
			"Shipping":   shipping,
			"GrandTotal": total.Add(shipping),
		})
	}
}
