package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/MikeMC777/bookstore/internal/cart"
	"github.com/MikeMC777/bookstore/internal/catalog"
	"github.com/MikeMC777/bookstore/internal/httpx"
)

const (
	latestBooks  = 8
	booksPerPage = 12
)

func logger(c *gin.Context) *zerolog.Logger {
	return zerolog.Ctx(c.Request.Context())
}

func cartOf(c *gin.Context) *cart.Cart {
	return cart.New(httpx.Session(c))
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func indexHandler(p *pages) gin.HandlerFunc {
	return func(c *gin.Context) {
		books, err := p.books.List(c.Request.Context(), catalog.Query{Limit: latestBooks})
		if err != nil {
			fail(c, err, "list latest books")
			return
		}
		p.render(c, http.StatusOK, "store/index.html", "Home", gin.H{"Books": books})
	}
}

func booksHandler(p *pages) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		q := catalog.Query{
			Q:        strings.TrimSpace(c.Query("q")),
			Category: c.Query("category"),
		}

		total, err := p.books.Count(ctx, q)
		if err != nil {
			fail(c, err, "count books")
			return
		}
		pageCount := (total + booksPerPage - 1) / booksPerPage
		if pageCount == 0 {
			pageCount = 1
		}
		page, _ := strconv.Atoi(c.Query("page"))
		if page < 1 {
			page = 1
		}
		if page > pageCount {
			page = pageCount
		}
		q.Limit, q.Offset = booksPerPage, (page-1)*booksPerPage

		books, err := p.books.List(ctx, q)
		if err != nil {
			fail(c, err, "list books")
			return
		}
		p.render(c, http.StatusOK, "store/books.html", "Books", gin.H{
			"Books":    books,
			"Query":    q.Q,
			"Category": q.Category,
			"Page":     page,
			"Pages":    pageCount,
		})
	}
}

func bookHandler(p *pages) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			notFoundHandler(p)(c)
			return
		}
		book, err := p.books.GetByID(c.Request.Context(), id)
		if errors.Is(err, catalog.ErrNotFound) {
			notFoundHandler(p)(c)
			return
		}
		if err != nil {
			fail(c, err, "get book")
			return
		}
		p.render(c, http.StatusOK, "store/book.html", book.Name, gin.H{"Book": book})
	}
}
