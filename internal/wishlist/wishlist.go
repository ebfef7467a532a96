package wishlist

import (
	"context"
	"errors"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/models"
)

// Store persists (user, product) pairs. Add is idempotent and reports
// whether a new entry was created.
type Store interface {
	Add(ctx context.Context, userID, productID int64) (bool, error)
	Remove(ctx context.Context, userID, productID int64) (bool, error)
	Contains(ctx context.Context, userID, productID int64) (bool, error)
	List(ctx context.Context, userID int64) ([]models.WishlistEntry, error)
	Count(ctx context.Context, userID int64) (int64, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, userID int64) ([]models.WishlistEntry, error) {
	entries, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch wishlist", err)
	}
	if entries == nil {
		entries = []models.WishlistEntry{}
	}
	return entries, nil
}

// Add puts the product on the wishlist. Adding it again is not an error.
func (s *Service) Add(ctx context.Context, userID, productID int64) (added bool, err error) {
	if productID <= 0 {
		return false, apperr.Validation("productId is required")
	}
	added, err = s.store.Add(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return false, apperr.NotFound("Product not found")
		}
		return false, apperr.Internal("Failed to add to wishlist", err)
	}
	return added, nil
}

func (s *Service) Remove(ctx context.Context, userID, productID int64) error {
	existed, err := s.store.Remove(ctx, userID, productID)
	if err != nil {
		return apperr.Internal("Failed to remove from wishlist", err)
	}
	if !existed {
		return apperr.NotFound("Item not found in wishlist")
	}
	return nil
}

// Toggle adds the product when absent and removes it when present. It
// returns whether the product is on the wishlist afterwards.
func (s *Service) Toggle(ctx context.Context, userID, productID int64) (bool, error) {
	present, err := s.store.Contains(ctx, userID, productID)
	if err != nil {
		return false, apperr.Internal("Failed to toggle wishlist", err)
	}
	if present {
		if _, err := s.store.Remove(ctx, userID, productID); err != nil {
			return false, apperr.Internal("Failed to toggle wishlist", err)
		}
		return false, nil
	}
	if _, err := s.Add(ctx, userID, productID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) Count(ctx context.Context, userID int64) (int64, error) {
	return s.store.Count(ctx, userID)
}
