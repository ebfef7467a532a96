package models

import (
	"fmt"
	"time"
)

// SettingsVersion is bumped whenever UserSettings gains or renames a field.
const SettingsVersion = 1

// NotificationPreferences are the per-channel toggles a user controls.
type NotificationPreferences struct {
	Push         bool `json:"push" db:"notifications_push"`
	OrderUpdates bool `json:"orderUpdates" db:"notifications_order_updates"`
	Promotions   bool `json:"promotions" db:"notifications_promotions"`
	PriceDrops   bool `json:"priceDrops" db:"notifications_price_drops"`
	BackInStock  bool `json:"backInStock" db:"notifications_back_in_stock"`
}

// UserSettings is the model for the 'user_settings' table.
type UserSettings struct {
	Version       int                     `json:"version" db:"version"`
	UserID        int64                   `json:"userId" db:"user_id"`
	Theme         string                  `json:"theme" db:"theme"`
	Language      string                  `json:"language" db:"language"`
	Currency      string                  `json:"currency" db:"currency"`
	Notifications NotificationPreferences `json:"notifications"`
	UpdatedAt     time.Time               `json:"updatedAt" db:"updated_at"`
}

var (
	themes     = map[string]bool{"light": true, "dark": true, "system": true}
	currencies = map[string]bool{"USD": true, "EUR": true, "GBP": true, "KES": true, "NGN": true, "ZAR": true}
)

// DefaultSettings are applied the first time a user's settings are read.
func DefaultSettings(userID int64) UserSettings {
	return UserSettings{
		Version:  SettingsVersion,
		UserID:   userID,
		Theme:    "light",
		Language: "en",
		Currency: "USD",
		Notifications: NotificationPreferences{
			Push:         true,
			OrderUpdates: true,
			Promotions:   true,
			PriceDrops:   true,
			BackInStock:  true,
		},
	}
}

// SettingsPatch is a partial update. Nil fields are left unchanged.
type SettingsPatch struct {
	Theme         *string             `json:"theme"`
	Language      *string             `json:"language"`
	Currency      *string             `json:"currency"`
	Notifications *NotificationsPatch `json:"notifications"`
}

type NotificationsPatch struct {
	Push         *bool `json:"push"`
	OrderUpdates *bool `json:"orderUpdates"`
	Promotions   *bool `json:"promotions"`
	PriceDrops   *bool `json:"priceDrops"`
	BackInStock  *bool `json:"backInStock"`
}

// Apply returns s with the patch applied, or an error naming the first
// rejected value.
func (p SettingsPatch) Apply(s UserSettings) (UserSettings, error) {
	if p.Theme != nil {
		if !themes[*p.Theme] {
			return s, fmt.Errorf("unsupported theme %q", *p.Theme)
		}
		s.Theme = *p.Theme
	}
	if p.Language != nil {
		if l := len(*p.Language); l < 2 || l > 5 {
			return s, fmt.Errorf("unsupported language %q", *p.Language)
		}
		s.Language = *p.Language
	}
	if p.Currency != nil {
		if !currencies[*p.Currency] {
			return s, fmt.Errorf("unsupported currency %q", *p.Currency)
		}
		s.Currency = *p.Currency
	}
	if n := p.Notifications; n != nil {
		setBool(&s.Notifications.Push, n.Push)
		setBool(&s.Notifications.OrderUpdates, n.OrderUpdates)
		setBool(&s.Notifications.Promotions, n.Promotions)
		setBool(&s.Notifications.PriceDrops, n.PriceDrops)
		setBool(&s.Notifications.BackInStock, n.BackInStock)
	}
	s.Version = SettingsVersion
	return s, nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
