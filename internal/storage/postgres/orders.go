package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/orders"
	"github.com/lib/pq"
)

// OrderStore runs checkout and status changes as single transactions.
type OrderStore struct {
	db          *sql.DB
	stmtTimeout time.Duration
}

var _ orders.Store = (*OrderStore)(nil)

func NewOrderStore(db *sql.DB, stmtTimeout time.Duration) *OrderStore {
	return &OrderStore{db: db, stmtTimeout: stmtTimeout}
}

func (s *OrderStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx orders.Tx) error) error {
	return execTX(ctx, s.db, s.stmtTimeout, func(tx *sql.Tx) error {
		return fn(ctx, &orderTx{tx: tx})
	})
}

type orderTx struct {
	tx *sql.Tx
}

// LockProducts takes row locks in id order so that two checkouts touching
// the same products cannot deadlock.
func (t *orderTx) LockProducts(ctx context.Context, ids []int64) (map[int64]models.Product, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, name, description, price, original_price, image, category,
			brand, stock, rating, reviews_count, is_featured, is_deal, created_at
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]models.Product, len(ids))
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.OriginalPrice, &p.Image, &p.Category,
			&p.Brand, &p.Stock, &p.Rating, &p.ReviewsCount, &p.IsFeatured, &p.IsDeal, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (t *orderTx) InsertOrder(ctx context.Context, o *models.Order) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, order_number, subtotal, shipping, tax, total,
			status, payment_method, payment_status, shipping_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		o.UserID, o.OrderNumber, o.Subtotal, o.Shipping, o.Tax, o.Total,
		o.Status, o.PaymentMethod, o.PaymentStatus, o.ShippingAddress,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (t *orderTx) InsertItem(ctx context.Context, it *models.OrderItem) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO order_items (order_id, product_id, product_name, product_image, quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		it.OrderID, it.ProductID, it.ProductName, it.ProductImage, it.Quantity, it.Price,
	).Scan(&it.ID, &it.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

func (t *orderTx) DecrementStock(ctx context.Context, productID int64, qty int) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE products SET stock = stock - $1 WHERE id = $2`, qty, productID)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("decrement stock: product %d does not exist", productID)
	}
	return nil
}

func (t *orderTx) ClearCart(ctx context.Context, userID int64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM cart WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (t *orderTx) AddNotification(ctx context.Context, n *models.Notification, keep int) error {
	return insertNotification(ctx, t.tx, n, keep)
}

func (t *orderTx) LockOrder(ctx context.Context, userID, orderID int64) (models.Order, error) {
	o, err := scanOrder(t.tx.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		WHERE o.id = $1 AND o.user_id = $2
		FOR UPDATE`, orderID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, orders.ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("lock order: %w", err)
	}
	return o, nil
}

func (t *orderTx) SetStatus(ctx context.Context, o *models.Order) error {
	err := t.tx.QueryRowContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING updated_at`, o.Status, o.ID).Scan(&o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return orders.ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

const orderColumns = `
	o.id, o.user_id, o.order_number, o.subtotal, o.shipping, o.tax, o.total,
	o.status, o.payment_method, o.payment_status, o.shipping_address,
	(SELECT COUNT(*) FROM order_items i WHERE i.order_id = o.id),
	o.created_at, o.updated_at`

func scanOrder(row interface{ Scan(...any) error }) (models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.OrderNumber, &o.Subtotal, &o.Shipping, &o.Tax, &o.Total,
		&o.Status, &o.PaymentMethod, &o.PaymentStatus, &o.ShippingAddress,
		&o.ItemsCount, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func (s *OrderStore) List(ctx context.Context, userID int64) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	list := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func (s *OrderStore) Get(ctx context.Context, userID, orderID int64) (models.Order, []models.OrderItem, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		WHERE o.id = $1 AND o.user_id = $2`, orderID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, nil, orders.ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, nil, fmt.Errorf("get order: %w", err)
	}

	byOrder, err := s.items(ctx, `WHERE i.order_id = $1`, o.ID)
	if err != nil {
		return models.Order{}, nil, err
	}
	items := byOrder[o.ID]
	if items == nil {
		items = []models.OrderItem{}
	}
	return o, items, nil
}

func (s *OrderStore) Items(ctx context.Context, userID int64) (map[int64][]models.OrderItem, error) {
	return s.items(ctx, `JOIN orders o ON o.id = i.order_id WHERE o.user_id = $1`, userID)
}

func (s *OrderStore) items(ctx context.Context, where string, arg int64) (map[int64][]models.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.product_name, i.product_image,
			i.quantity, i.price, i.created_at
		FROM order_items i `+where+`
		ORDER BY i.order_id, i.id`, arg)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]models.OrderItem)
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductImage,
			&it.Quantity, &it.Price, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func (s *OrderStore) Count(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}
