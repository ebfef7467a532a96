package models

import "testing"

func ptr[T any](v T) *T { return &v }

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings(9)
	if s.UserID != 9 || s.Theme != "light" || s.Language != "en" || s.Currency != "USD" {
		t.Fatalf("defaults = %+v", s)
	}
	if !s.Notifications.Push || !s.Notifications.BackInStock {
		t.Fatalf("notifications should default on: %+v", s.Notifications)
	}
}

func TestSettingsPatchApply(t *testing.T) {
	base := DefaultSettings(1)

	got, err := SettingsPatch{
		Theme:         ptr("dark"),
		Currency:      ptr("KES"),
		Notifications: &NotificationsPatch{Promotions: ptr(false)},
	}.Apply(base)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got.Theme != "dark" || got.Currency != "KES" || got.Language != "en" {
		t.Fatalf("patched = %+v", got)
	}
	if got.Notifications.Promotions || !got.Notifications.Push {
		t.Fatalf("notifications = %+v", got.Notifications)
	}

	bad := []SettingsPatch{
		{Theme: ptr("neon")},
		{Language: ptr("x")},
		{Currency: ptr("BTC")},
	}
	for _, p := range bad {
		if _, err := p.Apply(base); err == nil {
			t.Errorf("Apply(%+v) should fail", p)
		}
	}
}
