package cart

import (
	"context"
	"errors"
	"log/slog"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/models"
)

// MaxQuantity bounds a single line.
const MaxQuantity = 999

type Service struct {
	users  Repository
	guests Repository
	log    *slog.Logger
}

func NewService(users, guests Repository, log *slog.Logger) *Service {
	return &Service{users: users, guests: guests, log: log}
}

func (s *Service) repo(o Owner) Repository {
	if o.IsGuest() {
		return s.guests
	}
	return s.users
}

func (s *Service) Add(ctx context.Context, o Owner, productID int64, qty int) (models.CartLine, error) {
	if !o.Valid() {
		return models.CartLine{}, apperr.Auth("Authentication required")
	}
	if productID <= 0 {
		return models.CartLine{}, apperr.Validation("productId is required")
	}
	if qty < 1 || qty > MaxQuantity {
		return models.CartLine{}, apperr.Validation("quantity must be between 1 and 999")
	}

	line, err := s.repo(o).Add(ctx, o, productID, qty)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return models.CartLine{}, apperr.NotFound("Product not found")
		}
		return models.CartLine{}, apperr.Internal("Failed to add item to cart", err)
	}
	return line, nil
}

// SetQuantity overwrites a line. A quantity of zero or less removes it, in
// which case removed is true and the returned line is empty.
func (s *Service) SetQuantity(ctx context.Context, o Owner, productID int64, qty int) (line models.CartLine, removed bool, err error) {
	if !o.Valid() {
		return models.CartLine{}, false, apperr.Auth("Authentication required")
	}
	if qty <= 0 {
		if _, err := s.repo(o).Remove(ctx, o, productID); err != nil {
			return models.CartLine{}, false, apperr.Internal("Failed to update cart", err)
		}
		return models.CartLine{}, true, nil
	}
	if qty > MaxQuantity {
		return models.CartLine{}, false, apperr.Validation("quantity must be between 1 and 999")
	}

	line, err = s.repo(o).SetQuantity(ctx, o, productID, qty)
	if err != nil {
		if errors.Is(err, ErrLineNotFound) {
			return models.CartLine{}, false, apperr.NotFound("Item not found in cart")
		}
		return models.CartLine{}, false, apperr.Internal("Failed to update cart", err)
	}
	return line, false, nil
}

func (s *Service) Remove(ctx context.Context, o Owner, productID int64) error {
	if !o.Valid() {
		return apperr.Auth("Authentication required")
	}
	existed, err := s.repo(o).Remove(ctx, o, productID)
	if err != nil {
		return apperr.Internal("Failed to remove item", err)
	}
	if !existed {
		return apperr.NotFound("Item not found in cart")
	}
	return nil
}

func (s *Service) Clear(ctx context.Context, o Owner) error {
	if !o.Valid() {
		return nil
	}
	if err := s.repo(o).Clear(ctx, o); err != nil {
		return apperr.Internal("Failed to clear cart", err)
	}
	return nil
}

// List never fails: a storage error is logged and an empty cart returned so
// the storefront stays browsable.
func (s *Service) List(ctx context.Context, o Owner) []models.CartLine {
	if !o.Valid() {
		return []models.CartLine{}
	}
	lines, err := s.repo(o).List(ctx, o)
	if err != nil {
		s.log.WarnContext(ctx, "cart list failed, serving empty cart", "owner", o.Key(), "error", err)
		return []models.CartLine{}
	}
	return lines
}

// Merge moves a guest cart into the user's persistent cart, accumulating
// quantities, and empties the guest cart. Lines whose product has left the
// catalog are dropped.
func (s *Service) Merge(ctx context.Context, session string, userID int64) ([]models.CartLine, error) {
	if session == "" {
		return s.List(ctx, User(userID)), nil
	}
	guest := Guest(session)
	lines, err := s.guests.List(ctx, guest)
	if err != nil {
		return nil, apperr.Internal("Failed to read guest cart", err)
	}

	user := User(userID)
	for _, l := range lines {
		if _, err := s.users.Add(ctx, user, l.ProductID, l.Quantity); err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				continue
			}
			return nil, apperr.Internal("Failed to merge cart", err)
		}
	}
	if err := s.guests.Clear(ctx, guest); err != nil {
		s.log.WarnContext(ctx, "guest cart not cleared after merge", "session", session, "error", err)
	}

	s.log.InfoContext(ctx, "guest cart merged", "user_id", userID, "lines", len(lines))
	return s.List(ctx, user), nil
}
