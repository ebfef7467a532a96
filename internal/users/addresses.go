package users

import (
	"context"
	"errors"
	"strings"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
)

type AddressInput struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"isDefault"`
}

func (in AddressInput) address(userID int64) (models.Address, error) {
	a := models.Address{
		UserID:    userID,
		Type:      strings.ToLower(strings.TrimSpace(in.Type)),
		Name:      strings.TrimSpace(in.Name),
		Street:    strings.TrimSpace(in.Street),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		Zip:       strings.TrimSpace(in.Zip),
		Country:   strings.TrimSpace(in.Country),
		Phone:     strings.TrimSpace(in.Phone),
		IsDefault: in.IsDefault,
	}
	if a.Type == "" {
		a.Type = models.AddressHome
	}
	if !models.ValidAddressType(a.Type) {
		return a, apperr.Validation("Address type must be home, work or other")
	}
	if len(models.InvalidFields(a)) > 0 {
		return a, apperr.Validation("Street, city and country are required")
	}
	return a, nil
}

func (s *Service) Addresses(ctx context.Context, userID int64) ([]models.Address, error) {
	list, err := s.store.Addresses(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to get addresses", err)
	}
	if list == nil {
		list = []models.Address{}
	}
	return list, nil
}

// AddAddress saves a new address. The first address a user saves becomes
// their default.
func (s *Service) AddAddress(ctx context.Context, userID int64, in AddressInput) (models.Address, error) {
	a, err := in.address(userID)
	if err != nil {
		return models.Address{}, err
	}
	if !a.IsDefault {
		n, err := s.store.CountAddresses(ctx, userID)
		if err != nil {
			return models.Address{}, apperr.Internal("Failed to add address", err)
		}
		a.IsDefault = n == 0
	}
	if err := s.store.SaveAddress(ctx, &a); err != nil {
		return models.Address{}, apperr.Internal("Failed to add address", err)
	}
	return a, nil
}

func (s *Service) UpdateAddress(ctx context.Context, userID, id int64, in AddressInput) (models.Address, error) {
	a, err := in.address(userID)
	if err != nil {
		return models.Address{}, err
	}
	a.ID = id
	if err := s.store.SaveAddress(ctx, &a); err != nil {
		if errors.Is(err, ErrAddressNotFound) {
			return models.Address{}, apperr.NotFound("Address not found")
		}
		return models.Address{}, apperr.Internal("Failed to update address", err)
	}
	return a, nil
}

func (s *Service) DeleteAddress(ctx context.Context, userID, id int64) error {
	ok, err := s.store.DeleteAddress(ctx, userID, id)
	if err != nil {
		return apperr.Internal("Failed to delete address", err)
	}
	if !ok {
		return apperr.NotFound("Address not found")
	}
	return nil
}
