package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is the model for the 'users' table.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	Avatar       *string   `json:"avatar,omitempty" db:"avatar"`
	JoinDate     time.Time `json:"joinDate" db:"join_date"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Address is one row of 'user_addresses'. At most one per user has
// IsDefault set.
type Address struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Type      string    `json:"type" db:"type" validate:"oneof=home work other"`
	Name      string    `json:"name" db:"name"`
	Street    string    `json:"street" db:"street" validate:"notblank"`
	City      string    `json:"city" db:"city" validate:"notblank"`
	State     string    `json:"state" db:"state"`
	Zip       string    `json:"zip" db:"zip"`
	Country   string    `json:"country" db:"country" validate:"notblank"`
	Phone     string    `json:"phone" db:"phone"`
	IsDefault bool      `json:"isDefault" db:"is_default"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

const (
	AddressHome  = "home"
	AddressWork  = "work"
	AddressOther = "other"
)

func ValidAddressType(t string) bool {
	return Validator.Var(t, "oneof=home work other") == nil
}

// UserStats is the per-user dashboard summary.
type UserStats struct {
	Orders        int64 `json:"orders"`
	WishlistItems int64 `json:"wishlistItems"`
	Addresses     int64 `json:"addresses"`
	Unread        int64 `json:"unreadNotifications"`
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
