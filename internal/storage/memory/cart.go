package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/models"
)

var errGuestOwner = errors.New("memory cart repo serves signed-in users only")

// CartRepo is the persistent cart of signed-in users.
type CartRepo struct {
	db *DB
}

var _ cart.Repository = (*CartRepo)(nil)

func (r *CartRepo) joined(productID int64, row cartRow) models.CartLine {
	l := models.CartLine{ID: row.id, Quantity: row.quantity, CreatedAt: row.createdAt}
	l.FillProduct(r.db.st.products[productID])
	return l
}

func (r *CartRepo) Add(_ context.Context, owner cart.Owner, productID int64, qty int) (models.CartLine, error) {
	if owner.IsGuest() {
		return models.CartLine{}, errGuestOwner
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.st.products[productID]; !ok {
		return models.CartLine{}, catalog.ErrProductNotFound
	}
	lines := r.db.st.carts[owner.UserID]
	if lines == nil {
		lines = make(map[int64]cartRow)
		r.db.st.carts[owner.UserID] = lines
	}
	row, ok := lines[productID]
	if ok {
		row.quantity = min(row.quantity+qty, cart.MaxQuantity)
	} else {
		row = cartRow{id: r.db.st.id(), quantity: min(qty, cart.MaxQuantity), createdAt: r.db.now()}
	}
	lines[productID] = row
	return r.joined(productID, row), nil
}

func (r *CartRepo) SetQuantity(_ context.Context, owner cart.Owner, productID int64, qty int) (models.CartLine, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	row, ok := r.db.st.carts[owner.UserID][productID]
	if !ok {
		return models.CartLine{}, cart.ErrLineNotFound
	}
	row.quantity = qty
	r.db.st.carts[owner.UserID][productID] = row
	return r.joined(productID, row), nil
}

func (r *CartRepo) Remove(_ context.Context, owner cart.Owner, productID int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.st.carts[owner.UserID][productID]; !ok {
		return false, nil
	}
	delete(r.db.st.carts[owner.UserID], productID)
	return true, nil
}

func (r *CartRepo) Clear(_ context.Context, owner cart.Owner) error {
	r.db.mu.Lock()
	delete(r.db.st.carts, owner.UserID)
	r.db.mu.Unlock()
	return nil
}

func (r *CartRepo) List(_ context.Context, owner cart.Owner) ([]models.CartLine, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	lines := make([]models.CartLine, 0, len(r.db.st.carts[owner.UserID]))
	for pid, row := range r.db.st.carts[owner.UserID] {
		if _, ok := r.db.st.products[pid]; !ok {
			continue
		}
		lines = append(lines, r.joined(pid, row))
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID > lines[j].ID })
	return lines, nil
}
