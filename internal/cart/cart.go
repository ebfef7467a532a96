// Package cart keeps the list of products a shopper intends to buy.
//
// Carts are reached through a Repository. Signed-in users are served by the
// persistent repository of the configured store; guests are served by an
// in-memory SessionRepository keyed by their cart session id. Service picks
// the repository from the Owner on every call.
package cart

import (
	"context"
	"errors"
	"strconv"

	"github.com/01moynul/storefront-golang/internal/models"
)

// ErrLineNotFound is returned when the owner's cart has no line for the product.
var ErrLineNotFound = errors.New("cart line not found")

// Owner identifies whose cart is addressed: a user id or a guest session.
type Owner struct {
	UserID  int64
	Session string
}

func User(id int64) Owner        { return Owner{UserID: id} }
func Guest(session string) Owner { return Owner{Session: session} }
func (o Owner) IsGuest() bool    { return o.UserID == 0 }
func (o Owner) Valid() bool      { return o.UserID > 0 || o.Session != "" }

// Key is a stable map key for the owner.
func (o Owner) Key() string {
	if o.IsGuest() {
		return "s:" + o.Session
	}
	return "u:" + strconv.FormatInt(o.UserID, 10)
}

// Repository is the cart storage strategy.
type Repository interface {
	// Add inserts the line or accumulates onto an existing one.
	// Unknown products yield catalog.ErrProductNotFound.
	Add(ctx context.Context, owner Owner, productID int64, qty int) (models.CartLine, error)
	// SetQuantity overwrites the quantity of an existing line, or returns
	// ErrLineNotFound.
	SetQuantity(ctx context.Context, owner Owner, productID int64, qty int) (models.CartLine, error)
	// Remove deletes the line and reports whether it existed.
	Remove(ctx context.Context, owner Owner, productID int64) (bool, error)
	Clear(ctx context.Context, owner Owner) error
	// List returns the lines joined with current product data, newest first.
	List(ctx context.Context, owner Owner) ([]models.CartLine, error)
}
