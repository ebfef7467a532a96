// Package memory is a process-local implementation of every store. It backs
// STORE_DRIVER=memory and the service tests.
package memory

import (
	"sync"
	"time"

	"github.com/01moynul/storefront-golang/internal/models"
)

type cartRow struct {
	id        int64
	quantity  int
	createdAt time.Time
}

type wishRow struct {
	id        int64
	createdAt time.Time
}

type state struct {
	products  map[int64]models.Product
	users     map[int64]models.User
	addresses map[int64]models.Address
	settings  map[int64]models.UserSettings
	carts     map[int64]map[int64]cartRow
	wishlist  map[int64]map[int64]wishRow
	orders    map[int64]models.Order
	items     map[int64][]models.OrderItem
	notes     map[int64][]models.Notification // per user, oldest first

	nextID int64
}

func newState() *state {
	return &state{
		products:  make(map[int64]models.Product),
		users:     make(map[int64]models.User),
		addresses: make(map[int64]models.Address),
		settings:  make(map[int64]models.UserSettings),
		carts:     make(map[int64]map[int64]cartRow),
		wishlist:  make(map[int64]map[int64]wishRow),
		orders:    make(map[int64]models.Order),
		items:     make(map[int64][]models.OrderItem),
		notes:     make(map[int64][]models.Notification),
	}
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// clone deep-copies the state so a transaction can be discarded.
func (s *state) clone() *state {
	c := newState()
	c.nextID = s.nextID
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.addresses {
		c.addresses[k] = v
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	for uid, lines := range s.carts {
		m := make(map[int64]cartRow, len(lines))
		for pid, r := range lines {
			m[pid] = r
		}
		c.carts[uid] = m
	}
	for uid, rows := range s.wishlist {
		m := make(map[int64]wishRow, len(rows))
		for pid, r := range rows {
			m[pid] = r
		}
		c.wishlist[uid] = m
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]models.OrderItem(nil), v...)
	}
	for k, v := range s.notes {
		c.notes[k] = append([]models.Notification(nil), v...)
	}
	return c
}

// DB holds all state behind one lock.
type DB struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

func New() *DB {
	return &DB{st: newState(), now: time.Now}
}

// Seed inserts products when the catalog is empty and returns them with
// their assigned ids.
func (db *DB) Seed(products []models.Product) []models.Product {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.st.products) > 0 {
		return nil
	}
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		p.ID = db.st.id()
		if p.CreatedAt.IsZero() {
			p.CreatedAt = db.now()
		}
		db.st.products[p.ID] = p
		out = append(out, p)
	}
	return out
}

// PutProduct inserts or replaces a product. A zero ID gets a fresh one.
func (db *DB) PutProduct(p models.Product) models.Product {
	db.mu.Lock()
	defer db.mu.Unlock()
	if p.ID == 0 {
		p.ID = db.st.id()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = db.now()
	}
	db.st.products[p.ID] = p
	return p
}

func (db *DB) Catalog() *CatalogStore            { return &CatalogStore{db: db} }
func (db *DB) Carts() *CartRepo                  { return &CartRepo{db: db} }
func (db *DB) Wishlist() *WishlistStore          { return &WishlistStore{db: db} }
func (db *DB) Notifications() *NotificationStore { return &NotificationStore{db: db} }
func (db *DB) Orders() *OrderStore               { return &OrderStore{db: db} }
func (db *DB) Users() *UserStore                 { return &UserStore{db: db} }
