package cart

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/models"
)

// ProductReader looks up the current catalog row for a product.
type ProductReader interface {
	Get(ctx context.Context, id int64) (models.Product, error)
}

type sessionLine struct {
	id        int64
	quantity  int
	createdAt time.Time
}

type sessionCart struct {
	lines   map[int64]*sessionLine
	touched time.Time
}

// SessionRepository holds carts in process memory. Product data is joined
// from the ProductReader at read time, so prices are always current.
type SessionRepository struct {
	products ProductReader
	ttl      time.Duration
	now      func() time.Time

	mu     sync.Mutex
	carts  map[string]*sessionCart
	nextID int64
}

// NewSessionRepository returns an empty repository. A zero ttl keeps carts
// until they are cleared.
func NewSessionRepository(products ProductReader, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		products: products,
		ttl:      ttl,
		now:      time.Now,
		carts:    make(map[string]*sessionCart),
	}
}

func (r *SessionRepository) cart(owner Owner, create bool) *sessionCart {
	c, ok := r.carts[owner.Key()]
	if !ok && create {
		c = &sessionCart{lines: make(map[int64]*sessionLine)}
		r.carts[owner.Key()] = c
	}
	if c != nil {
		c.touched = r.now()
	}
	return c
}

func (r *SessionRepository) line(ctx context.Context, productID int64, l *sessionLine) (models.CartLine, error) {
	p, err := r.products.Get(ctx, productID)
	if err != nil {
		return models.CartLine{}, err
	}
	out := models.CartLine{ID: l.id, Quantity: l.quantity, CreatedAt: l.createdAt}
	out.FillProduct(p)
	return out, nil
}

func (r *SessionRepository) Add(ctx context.Context, owner Owner, productID int64, qty int) (models.CartLine, error) {
	if _, err := r.products.Get(ctx, productID); err != nil {
		return models.CartLine{}, err
	}

	r.mu.Lock()
	c := r.cart(owner, true)
	l, ok := c.lines[productID]
	if ok {
		l.quantity = min(l.quantity+qty, MaxQuantity)
	} else {
		r.nextID++
		l = &sessionLine{id: r.nextID, quantity: min(qty, MaxQuantity), createdAt: r.now()}
		c.lines[productID] = l
	}
	snapshot := *l
	r.mu.Unlock()

	return r.line(ctx, productID, &snapshot)
}

func (r *SessionRepository) SetQuantity(ctx context.Context, owner Owner, productID int64, qty int) (models.CartLine, error) {
	r.mu.Lock()
	c := r.cart(owner, false)
	if c == nil || c.lines[productID] == nil {
		r.mu.Unlock()
		return models.CartLine{}, ErrLineNotFound
	}
	l := c.lines[productID]
	l.quantity = qty
	snapshot := *l
	r.mu.Unlock()

	return r.line(ctx, productID, &snapshot)
}

func (r *SessionRepository) Remove(_ context.Context, owner Owner, productID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.cart(owner, false)
	if c == nil {
		return false, nil
	}
	if _, ok := c.lines[productID]; !ok {
		return false, nil
	}
	delete(c.lines, productID)
	return true, nil
}

func (r *SessionRepository) Clear(_ context.Context, owner Owner) error {
	r.mu.Lock()
	delete(r.carts, owner.Key())
	r.mu.Unlock()
	return nil
}

func (r *SessionRepository) List(ctx context.Context, owner Owner) ([]models.CartLine, error) {
	r.mu.Lock()
	c := r.cart(owner, false)
	type entry struct {
		productID int64
		line      sessionLine
	}
	var entries []entry
	if c != nil {
		for pid, l := range c.lines {
			entries = append(entries, entry{pid, *l})
		}
	}
	r.mu.Unlock()

	lines := make([]models.CartLine, 0, len(entries))
	for _, e := range entries {
		line, err := r.line(ctx, e.productID, &e.line)
		if errors.Is(err, catalog.ErrProductNotFound) {
			continue // product left the catalog
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID > lines[j].ID })
	return lines, nil
}

// Sweep drops carts untouched for longer than the ttl and returns how many
// were removed.
func (r *SessionRepository) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for key, c := range r.carts {
		if c.touched.Before(cutoff) {
			delete(r.carts, key)
			removed++
		}
	}
	return removed
}

// Len is the number of live carts.
func (r *SessionRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}
