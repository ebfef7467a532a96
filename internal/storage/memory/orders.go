package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/orders"
)

type OrderStore struct {
	db *DB
}

var _ orders.Store = (*OrderStore)(nil)

// WithinTx runs fn against a private copy of the state and publishes the
// copy only when fn succeeds. Writers are serialized for the duration.
func (s *OrderStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx orders.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	work := s.db.st.clone()
	if err := fn(ctx, &orderTx{st: work, db: s.db}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.st = work
	return nil
}

type orderTx struct {
	st *state
	db *DB
}

func (tx *orderTx) LockProducts(ctx context.Context, ids []int64) (map[int64]models.Product, error) {
	out := make(map[int64]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := tx.st.products[id]; ok {
			out[id] = p
		}
	}
	return out, ctx.Err()
}

func (tx *orderTx) InsertOrder(ctx context.Context, o *models.Order) error {
	for _, existing := range tx.st.orders {
		if existing.OrderNumber == o.OrderNumber {
			return fmt.Errorf("order number %s already exists", o.OrderNumber)
		}
	}
	o.ID = tx.st.id()
	o.CreatedAt = tx.db.now()
	o.UpdatedAt = o.CreatedAt
	tx.st.orders[o.ID] = *o
	return ctx.Err()
}

func (tx *orderTx) InsertItem(ctx context.Context, it *models.OrderItem) error {
	if _, ok := tx.st.orders[it.OrderID]; !ok {
		return fmt.Errorf("order %d does not exist", it.OrderID)
	}
	it.ID = tx.st.id()
	it.CreatedAt = tx.db.now()
	tx.st.items[it.OrderID] = append(tx.st.items[it.OrderID], *it)
	return ctx.Err()
}

func (tx *orderTx) DecrementStock(ctx context.Context, productID int64, qty int) error {
	p, ok := tx.st.products[productID]
	if !ok {
		return fmt.Errorf("product %d does not exist", productID)
	}
	p.Stock -= qty
	tx.st.products[productID] = p
	return ctx.Err()
}

func (tx *orderTx) ClearCart(ctx context.Context, userID int64) error {
	delete(tx.st.carts, userID)
	return ctx.Err()
}

func (tx *orderTx) AddNotification(ctx context.Context, n *models.Notification, keep int) error {
	tx.st.addNote(n, keep, tx.db.now())
	return ctx.Err()
}

func (tx *orderTx) LockOrder(ctx context.Context, userID, orderID int64) (models.Order, error) {
	o, ok := tx.st.orders[orderID]
	if !ok || o.UserID == nil || *o.UserID != userID {
		return models.Order{}, orders.ErrOrderNotFound
	}
	return o, ctx.Err()
}

func (tx *orderTx) SetStatus(ctx context.Context, o *models.Order) error {
	if _, ok := tx.st.orders[o.ID]; !ok {
		return orders.ErrOrderNotFound
	}
	o.UpdatedAt = tx.db.now()
	tx.st.orders[o.ID] = *o
	return ctx.Err()
}

func (s *OrderStore) owned(userID int64) []models.Order {
	var out []models.Order
	for _, o := range s.db.st.orders {
		if o.UserID != nil && *o.UserID == userID {
			o.ItemsCount = len(s.db.st.items[o.ID])
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *OrderStore) List(_ context.Context, userID int64) ([]models.Order, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.owned(userID), nil
}

func (s *OrderStore) Get(_ context.Context, userID, orderID int64) (models.Order, []models.OrderItem, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	o, ok := s.db.st.orders[orderID]
	if !ok || o.UserID == nil || *o.UserID != userID {
		return models.Order{}, nil, orders.ErrOrderNotFound
	}
	items := append([]models.OrderItem(nil), s.db.st.items[orderID]...)
	o.ItemsCount = len(items)
	return o, items, nil
}

func (s *OrderStore) Items(_ context.Context, userID int64) (map[int64][]models.OrderItem, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make(map[int64][]models.OrderItem)
	for _, o := range s.owned(userID) {
		out[o.ID] = append([]models.OrderItem(nil), s.db.st.items[o.ID]...)
	}
	return out, nil
}

func (s *OrderStore) Count(_ context.Context, userID int64) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return int64(len(s.owned(userID))), nil
}
