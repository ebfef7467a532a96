package wishlist_test

import (
	"context"
	"testing"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/storage/memory"
	"github.com/01moynul/storefront-golang/internal/wishlist"
	"github.com/shopspring/decimal"
)

func setup(t *testing.T) (*wishlist.Service, models.Product) {
	t.Helper()
	db := memory.New()
	p := db.PutProduct(models.Product{Name: "Water Bottle", Price: decimal.RequireFromString("18.50"), Stock: 12})
	return wishlist.NewService(db.Wishlist()), p
}

func TestAddIsIdempotent(t *testing.T) {
	svc, p := setup(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, 1, p.ID)
	if err != nil || !added {
		t.Fatalf("first Add = %v, %v", added, err)
	}
	added, err = svc.Add(ctx, 1, p.ID)
	if err != nil || added {
		t.Fatalf("second Add = %v, %v; want false, nil", added, err)
	}

	entries, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Product.Name != "Water Bottle" {
		t.Fatalf("entries = %+v", entries)
	}
	if n, _ := svc.Count(ctx, 1); n != 1 {
		t.Fatalf("Count = %d, want 1", n)
	}
}

func TestAddErrors(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, 1, 0); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("productId 0 err = %v", err)
	}
	if _, err := svc.Add(ctx, 1, 404); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("unknown product err = %v", err)
	}
}

func TestRemove(t *testing.T) {
	svc, p := setup(t)
	ctx := context.Background()
	if _, err := svc.Add(ctx, 1, p.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Remove(ctx, 2, p.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("removing another user's entry err = %v", err)
	}
	if err := svc.Remove(ctx, 1, p.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := svc.Remove(ctx, 1, p.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("second Remove err = %v", err)
	}
}

func TestToggle(t *testing.T) {
	svc, p := setup(t)
	ctx := context.Background()

	for i, want := range []bool{true, false, true} {
		got, err := svc.Toggle(ctx, 1, p.ID)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("toggle %d = %v, want %v", i, got, want)
		}
	}
	if _, err := svc.Toggle(ctx, 1, 404); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("toggle unknown product err = %v", err)
	}
}

func TestListEmpty(t *testing.T) {
	svc, _ := setup(t)
	entries, err := svc.List(context.Background(), 99)
	if err != nil || entries == nil || len(entries) != 0 {
		t.Fatalf("List = %#v, %v; want empty slice", entries, err)
	}
}
