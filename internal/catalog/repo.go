// Package catalog reads books and categories. Nothing in the shop flows
// writes to it; rows come from migrations or the admin database tooling.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/bookstore/internal/database"
)

var (
	ErrNotFound = errors.New("book not found")
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Book, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]Book, error)
	List(ctx context.Context, q Query) ([]Book, error)
	Count(ctx context.Context, q Query) (int, error)
	Categories(ctx context.Context) ([]Category, error)
}

type PGRepo struct{ db database.DBTX }

func NewPGRepo(db database.DBTX) *PGRepo { return &PGRepo{db: db} }

const bookColumns = `b.id, b.category_id, c.name, b.name, b.author, b.description, b.image, b.price::text, b.created_at`

func scanBook(row pgx.Row) (Book, error) {
	var (
		b     Book
		price string
	)
	if err := row.Scan(&b.ID, &b.CategoryID, &b.CategoryName, &b.Name, &b.Author,
		&b.Description, &b.Image, &price, &b.CreatedAt); err != nil {
		return Book{}, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return Book{}, fmt.Errorf("book %d price %q: %w", b.ID, price, err)
	}
	b.Price = p
	return b, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (*Book, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	b, err := scanBook(r.db.QueryRow(ctx, `
		SELECT `+bookColumns+`
		FROM books b JOIN categories c ON c.id = b.category_id
		WHERE b.id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return &b, nil
}

func (r *PGRepo) GetMany(ctx context.Context, ids []int64) (map[int64]Book, error) {
	out := make(map[int64]Book, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+bookColumns+`
		FROM books b JOIN categories c ON c.id = b.category_id
		WHERE b.id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("get books: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out[b.ID] = b
	}
	return out, rows.Err()
}

func normalize(q Query) Query {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	q.Q = strings.TrimSpace(q.Q)
	q.Category = strings.TrimSpace(q.Category)
	return q
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Book, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = normalize(q)
	rows, err := r.db.Query(ctx, `
		SELECT `+bookColumns+`
		FROM books b JOIN categories c ON c.id = b.category_id
		WHERE ($1 = '' OR b.name ILIKE '%'||$1||'%' OR b.author ILIKE '%'||$1||'%')
		  AND ($2 = '' OR c.slug = $2)
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $3 OFFSET $4
	`, q.Q, q.Category, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PGRepo) Count(ctx context.Context, q Query) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = normalize(q)
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM books b JOIN categories c ON c.id = b.category_id
		WHERE ($1 = '' OR b.name ILIKE '%'||$1||'%' OR b.author ILIKE '%'||$1||'%')
		  AND ($2 = '' OR c.slug = $2)
	`, q.Q, q.Category).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

func (r *PGRepo) Categories(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
