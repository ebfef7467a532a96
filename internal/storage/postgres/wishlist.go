package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/wishlist"
)

type WishlistStore struct {
	db *sql.DB
}

var _ wishlist.Store = (*WishlistStore)(nil)

func NewWishlistStore(db *sql.DB) *WishlistStore {
	return &WishlistStore{db: db}
}

// Add reports whether a new row was written. A product that is already
// saved is left untouched.
func (s *WishlistStore) Add(ctx context.Context, userID, productID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO wishlist (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING`,
		userID, productID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return false, catalog.ErrProductNotFound
		}
		return false, fmt.Errorf("insert wishlist: %w", err)
	}
	n, err := affected(res)
	return n > 0, err
}

func (s *WishlistStore) Remove(ctx context.Context, userID, productID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM wishlist WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return false, fmt.Errorf("delete wishlist: %w", err)
	}
	n, err := affected(res)
	return n > 0, err
}

func (s *WishlistStore) Contains(ctx context.Context, userID, productID int64) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM wishlist WHERE user_id = $1 AND product_id = $2)`,
		userID, productID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check wishlist: %w", err)
	}
	return ok, nil
}

func (s *WishlistStore) List(ctx context.Context, userID int64) ([]models.WishlistEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.id, w.user_id, w.created_at,
			p.id, p.name, p.description, p.price, p.original_price, p.image,
			p.category, p.brand, p.stock, p.rating, p.reviews_count,
			p.is_featured, p.is_deal, p.created_at
		FROM wishlist w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC, w.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query wishlist: %w", err)
	}
	defer rows.Close()

	entries := []models.WishlistEntry{}
	for rows.Next() {
		var e models.WishlistEntry
		p := &e.Product
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.CreatedAt,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.OriginalPrice, &p.Image,
			&p.Category, &p.Brand, &p.Stock, &p.Rating, &p.ReviewsCount,
			&p.IsFeatured, &p.IsDeal, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan wishlist: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *WishlistStore) Count(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wishlist WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count wishlist: %w", err)
	}
	return n, nil
}
