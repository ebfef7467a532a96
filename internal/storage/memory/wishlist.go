package memory

import (
	"context"
	"sort"

	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/wishlist"
)

type WishlistStore struct {
	db *DB
}

var _ wishlist.Store = (*WishlistStore)(nil)

func (s *WishlistStore) Add(_ context.Context, userID, productID int64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.st.products[productID]; !ok {
		return false, catalog.ErrProductNotFound
	}
	rows := s.db.st.wishlist[userID]
	if rows == nil {
		rows = make(map[int64]wishRow)
		s.db.st.wishlist[userID] = rows
	}
	if _, ok := rows[productID]; ok {
		return false, nil
	}
	rows[productID] = wishRow{id: s.db.st.id(), createdAt: s.db.now()}
	return true, nil
}

func (s *WishlistStore) Remove(_ context.Context, userID, productID int64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.st.wishlist[userID][productID]; !ok {
		return false, nil
	}
	delete(s.db.st.wishlist[userID], productID)
	return true, nil
}

func (s *WishlistStore) Contains(_ context.Context, userID, productID int64) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	_, ok := s.db.st.wishlist[userID][productID]
	return ok, nil
}

func (s *WishlistStore) List(_ context.Context, userID int64) ([]models.WishlistEntry, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]models.WishlistEntry, 0, len(s.db.st.wishlist[userID]))
	for pid, row := range s.db.st.wishlist[userID] {
		p, ok := s.db.st.products[pid]
		if !ok {
			continue
		}
		out = append(out, models.WishlistEntry{ID: row.id, UserID: userID, Product: p, CreatedAt: row.createdAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *WishlistStore) Count(_ context.Context, userID int64) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return int64(len(s.db.st.wishlist[userID])), nil
}
