package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/models"
)

var errGuestOwner = errors.New("postgres cart repo serves signed-in users only")

// CartRepo is the persistent cart of signed-in users.
type CartRepo struct {
	db *sql.DB
}

var _ cart.Repository = (*CartRepo)(nil)

func NewCartRepo(db *sql.DB) *CartRepo {
	return &CartRepo{db: db}
}

const cartLineColumns = `
	c.id, c.product_id, p.name, p.price, p.original_price, p.image,
	p.category, c.quantity, p.stock, c.created_at`

func scanCartLine(row interface{ Scan(...any) error }) (models.CartLine, error) {
	var l models.CartLine
	err := row.Scan(
		&l.ID, &l.ProductID, &l.Name, &l.Price, &l.OriginalPrice, &l.Image,
		&l.Category, &l.Quantity, &l.Stock, &l.CreatedAt,
	)
	return l, err
}

func (r *CartRepo) line(ctx context.Context, userID, productID int64) (models.CartLine, error) {
	query := `SELECT` + cartLineColumns + `
		FROM cart c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1 AND c.product_id = $2`
	l, err := scanCartLine(r.db.QueryRowContext(ctx, query, userID, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.CartLine{}, cart.ErrLineNotFound
	}
	return l, err
}

func (r *CartRepo) Add(ctx context.Context, owner cart.Owner, productID int64, qty int) (models.CartLine, error) {
	if owner.IsGuest() {
		return models.CartLine{}, errGuestOwner
	}

	// Upsert: a repeat add accumulates onto the existing line, capped at
	// cart.MaxQuantity.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart (user_id, product_id, quantity)
		VALUES ($1, $2, LEAST($3::int, $4::int))
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = LEAST(cart.quantity + EXCLUDED.quantity, $4::int)`,
		owner.UserID, productID, qty, cart.MaxQuantity)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return models.CartLine{}, catalog.ErrProductNotFound
		}
		return models.CartLine{}, fmt.Errorf("upsert cart line: %w", err)
	}
	return r.line(ctx, owner.UserID, productID)
}

func (r *CartRepo) SetQuantity(ctx context.Context, owner cart.Owner, productID int64, qty int) (models.CartLine, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cart SET quantity = $1 WHERE user_id = $2 AND product_id = $3`,
		qty, owner.UserID, productID)
	if err != nil {
		return models.CartLine{}, fmt.Errorf("update cart line: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return models.CartLine{}, err
	}
	if n == 0 {
		return models.CartLine{}, cart.ErrLineNotFound
	}
	return r.line(ctx, owner.UserID, productID)
}

func (r *CartRepo) Remove(ctx context.Context, owner cart.Owner, productID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart WHERE user_id = $1 AND product_id = $2`,
		owner.UserID, productID)
	if err != nil {
		return false, fmt.Errorf("delete cart line: %w", err)
	}
	n, err := affected(res)
	return n > 0, err
}

func (r *CartRepo) Clear(ctx context.Context, owner cart.Owner) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart WHERE user_id = $1`, owner.UserID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *CartRepo) List(ctx context.Context, owner cart.Owner) ([]models.CartLine, error) {
	query := `SELECT` + cartLineColumns + `
		FROM cart c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC, c.id DESC`
	rows, err := r.db.QueryContext(ctx, query, owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}
	defer rows.Close()

	lines := []models.CartLine{}
	for rows.Next() {
		l, err := scanCartLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
