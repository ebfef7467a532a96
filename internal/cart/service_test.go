package cart_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/logger"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/storage/memory"
	"github.com/shopspring/decimal"
)

type env struct {
	svc    *cart.Service
	userID int64
	mat    models.Product
	lamp   models.Product
}

func newEnv(t *testing.T) env {
	t.Helper()
	db := memory.New()
	u := models.User{Name: "Grace", Email: "grace@example.com", PasswordHash: "x"}
	if err := db.Users().Create(context.Background(), &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	mat := db.PutProduct(models.Product{Name: "Yoga Mat", Price: decimal.RequireFromString("24.99"), Stock: 200})
	lamp := db.PutProduct(models.Product{Name: "Desk Lamp", Price: decimal.RequireFromString("34.99"), Stock: 80})

	guests := cart.NewSessionRepository(db.Catalog(), time.Hour)
	return env{
		svc:    cart.NewService(db.Carts(), guests, logger.Discard()),
		userID: u.ID,
		mat:    mat,
		lamp:   lamp,
	}
}

func TestAddAccumulates(t *testing.T) {
	for _, owner := range []string{"user", "guest"} {
		t.Run(owner, func(t *testing.T) {
			e := newEnv(t)
			o := cart.User(e.userID)
			if owner == "guest" {
				o = cart.Guest("0b5c3e0e-8f1a-4a53-a0a6-1c9c1f0c2d11")
			}
			ctx := context.Background()

			if _, err := e.svc.Add(ctx, o, e.mat.ID, 2); err != nil {
				t.Fatalf("Add: %v", err)
			}
			line, err := e.svc.Add(ctx, o, e.mat.ID, 3)
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			if line.Quantity != 5 {
				t.Fatalf("quantity = %d, want 5", line.Quantity)
			}

			lines := e.svc.List(ctx, o)
			if len(lines) != 1 || lines[0].Quantity != 5 || !lines[0].Price.Equal(e.mat.Price) {
				t.Fatalf("List = %+v", lines)
			}
		})
	}
}

func TestAddCapsAccumulatedQuantity(t *testing.T) {
	for _, owner := range []string{"user", "guest"} {
		t.Run(owner, func(t *testing.T) {
			e := newEnv(t)
			o := cart.User(e.userID)
			if owner == "guest" {
				o = cart.Guest("6a1f4f7e-2d0b-4b8e-9c55-0e4a7c3b9d21")
			}
			ctx := context.Background()

			if _, err := e.svc.Add(ctx, o, e.mat.ID, cart.MaxQuantity-1); err != nil {
				t.Fatalf("Add: %v", err)
			}
			line, err := e.svc.Add(ctx, o, e.mat.ID, 5)
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			if line.Quantity != cart.MaxQuantity {
				t.Fatalf("quantity = %d, want %d", line.Quantity, cart.MaxQuantity)
			}
			if lines := e.svc.List(ctx, o); len(lines) != 1 || lines[0].Quantity != cart.MaxQuantity {
				t.Fatalf("List = %+v", lines)
			}
		})
	}
}

func TestAddValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o := cart.User(e.userID)

	tests := []struct {
		name      string
		owner     cart.Owner
		productID int64
		qty       int
		kind      apperr.Kind
	}{
		{"zero quantity", o, e.mat.ID, 0, apperr.KindValidation},
		{"too many", o, e.mat.ID, cart.MaxQuantity + 1, apperr.KindValidation},
		{"unknown product", o, 9999, 1, apperr.KindNotFound},
		{"no owner", cart.Owner{}, e.mat.ID, 1, apperr.KindAuth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.Add(ctx, tt.owner, tt.productID, tt.qty)
			if got := apperr.KindOf(err); got != tt.kind {
				t.Fatalf("kind = %v, want %v (err: %v)", got, tt.kind, err)
			}
		})
	}
}

func TestSetQuantity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o := cart.User(e.userID)
	if _, err := e.svc.Add(ctx, o, e.mat.ID, 2); err != nil {
		t.Fatalf("Add: %v", err)
	}

	line, removed, err := e.svc.SetQuantity(ctx, o, e.mat.ID, 7)
	if err != nil || removed || line.Quantity != 7 {
		t.Fatalf("SetQuantity(7) = %+v, %v, %v", line, removed, err)
	}

	_, _, err = e.svc.SetQuantity(ctx, o, e.lamp.ID, 1)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing line err = %v", err)
	}

	_, removed, err = e.svc.SetQuantity(ctx, o, e.mat.ID, 0)
	if err != nil || !removed {
		t.Fatalf("SetQuantity(0) removed = %v, err = %v", removed, err)
	}
	if lines := e.svc.List(ctx, o); len(lines) != 0 {
		t.Fatalf("line survived a zero quantity: %+v", lines)
	}
}

func TestRemoveAndClear(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o := cart.User(e.userID)
	for _, p := range []models.Product{e.mat, e.lamp} {
		if _, err := e.svc.Add(ctx, o, p.ID, 1); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	if err := e.svc.Remove(ctx, o, e.mat.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := e.svc.Remove(ctx, o, e.mat.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("second Remove err = %v, want not found", err)
	}
	if err := e.svc.Clear(ctx, o); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if lines := e.svc.List(ctx, o); len(lines) != 0 {
		t.Fatalf("cart not cleared: %+v", lines)
	}
}

func TestMergeGuestCart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := cart.User(e.userID)
	guest := cart.Guest("9d0e8a52-2c55-4a43-9d1c-5c0a3f1c7b21")

	mustAdd := func(o cart.Owner, id int64, qty int) {
		t.Helper()
		if _, err := e.svc.Add(ctx, o, id, qty); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	mustAdd(user, e.mat.ID, 1)
	mustAdd(guest, e.mat.ID, 2)
	mustAdd(guest, e.lamp.ID, 4)

	lines, err := e.svc.Merge(ctx, guest.Session, e.userID)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	got := map[int64]int{}
	for _, l := range lines {
		got[l.ProductID] = l.Quantity
	}
	if got[e.mat.ID] != 3 || got[e.lamp.ID] != 4 || len(got) != 2 {
		t.Fatalf("merged cart = %v", got)
	}
	if left := e.svc.List(ctx, guest); len(left) != 0 {
		t.Fatalf("guest cart not emptied: %+v", left)
	}
}

type brokenRepo struct{ cart.Repository }

func (brokenRepo) List(context.Context, cart.Owner) ([]models.CartLine, error) {
	return nil, errors.New("connection refused")
}

func TestListDegradesToEmpty(t *testing.T) {
	svc := cart.NewService(brokenRepo{}, brokenRepo{}, logger.Discard())
	lines := svc.List(context.Background(), cart.User(1))
	if lines == nil || len(lines) != 0 {
		t.Fatalf("List = %#v, want empty non-nil slice", lines)
	}
}
