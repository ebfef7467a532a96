package auth

import (
	"strings"
	"testing"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		pw   string
		want string
	}{
		{"Sh0rt", "at least 8"},
		{strings.Repeat("Aa1", 25), "at most 72"},
		{"alllower1", "uppercase"},
		{"ALLUPPER1", "lowercase"},
		{"NoDigitsHere", "number"},
		{"Valid1Pass", ""},
	}
	for _, tt := range tests {
		got := CheckPassword(tt.pw)
		if tt.want == "" {
			if got != "" {
				t.Errorf("CheckPassword(%q) = %q, want ok", tt.pw, got)
			}
			continue
		}
		if !strings.Contains(got, tt.want) {
			t.Errorf("CheckPassword(%q) = %q, want mention of %q", tt.pw, got, tt.want)
		}
	}
}

func TestEmail(t *testing.T) {
	if got := NormalizeEmail("  Ada@Example.COM "); got != "ada@example.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
	valid := []string{"a@b.co", "first.last@shop.example.com"}
	invalid := []string{"", "plain", "a@b", "Ada <ada@example.com>", "@example.com", "ada @example.com"}
	for _, e := range valid {
		if !ValidEmail(e) {
			t.Errorf("ValidEmail(%q) = false", e)
		}
	}
	for _, e := range invalid {
		if ValidEmail(e) {
			t.Errorf("ValidEmail(%q) = true", e)
		}
	}
}
