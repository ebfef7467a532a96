package users

import (
	"context"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
)

// Settings returns the user's settings, creating the defaults on first read.
func (s *Service) Settings(ctx context.Context, userID int64) (models.UserSettings, error) {
	st, err := s.store.Settings(ctx, userID)
	if err != nil {
		return models.UserSettings{}, apperr.Internal("Failed to get settings", err)
	}
	return st, nil
}

func (s *Service) UpdateSettings(ctx context.Context, userID int64, patch models.SettingsPatch) (models.UserSettings, error) {
	current, err := s.store.Settings(ctx, userID)
	if err != nil {
		return models.UserSettings{}, apperr.Internal("Failed to update settings", err)
	}
	next, err := patch.Apply(current)
	if err != nil {
		return models.UserSettings{}, apperr.Validation(err.Error())
	}
	if err := s.store.SaveSettings(ctx, &next); err != nil {
		return models.UserSettings{}, apperr.Internal("Failed to update settings", err)
	}
	return next, nil
}
