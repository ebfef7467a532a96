package models

import "time"

// WishlistEntry is one row of the 'wishlist' table joined with its product.
type WishlistEntry struct {
	ID        int64     `json:"wishlistId" db:"id"`
	UserID    int64     `json:"-" db:"user_id"`
	Product   Product   `json:"product"`
	CreatedAt time.Time `json:"addedAt" db:"created_at"`
}
