package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Book struct {
	ID           int64           `json:"id"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category,omitempty"`
	Name         string          `json:"name"`
	Author       string          `json:"author"`
	Description  string          `json:"description,omitempty"`
	Image        string          `json:"image,omitempty"`
	Price        decimal.Decimal `json:"price"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Query filters the book listing. Zero values mean "no filter".
type Query struct {
	Q        string
	Category string // category slug
	Limit    int
	Offset   int
}
