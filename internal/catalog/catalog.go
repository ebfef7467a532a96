// Package catalog serves the read-mostly product listing.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/gosimple/slug"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultLimit  = 20
	MaxLimit      = 100
	DealsLimit    = 10
	FeaturedLimit = 8
)

// ErrProductNotFound is returned by a Store when no product has the id.
var ErrProductNotFound = errors.New("product not found")

// Store is the persistence the catalog reads from.
type Store interface {
	List(ctx context.Context, f models.ProductFilter) ([]models.Product, error)
	Count(ctx context.Context, f models.ProductFilter) (int64, error)
	Get(ctx context.Context, id int64) (models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Deals(ctx context.Context, limit int) ([]models.Product, error)
	Featured(ctx context.Context, limit int) ([]models.Product, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Page is one page of a listing plus the unpaged total.
type Page struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

// Normalize clamps paging and drops sorts the store does not know.
func Normalize(f models.ProductFilter) models.ProductFilter {
	f.Category = strings.TrimSpace(f.Category)
	f.Search = strings.TrimSpace(f.Search)
	switch f.Sort {
	case models.SortPriceAsc, models.SortPriceDesc, models.SortRating, models.SortNewest:
	default:
		f.Sort = models.SortDefault
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// List runs the page query and the count query concurrently.
func (s *Service) List(ctx context.Context, f models.ProductFilter) (Page, error) {
	f = Normalize(f)

	var page Page
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, err := s.store.List(gctx, f)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		page.Products = products
		return nil
	})
	g.Go(func() error {
		total, err := s.store.Count(gctx, f)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		page.Total = total
		return nil
	})
	if err := g.Wait(); err != nil {
		return Page{}, apperr.Internal("Failed to fetch products", err)
	}
	if page.Products == nil {
		page.Products = []models.Product{}
	}
	return page, nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.Product, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return models.Product{}, apperr.NotFound("Product not found")
		}
		return models.Product{}, apperr.Internal("Failed to fetch product", err)
	}
	return p, nil
}

// Categories lists the distinct categories with a URL slug for each.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.store.Categories(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch categories", err)
	}
	for i := range cats {
		cats[i].Slug = slug.Make(cats[i].Name)
	}
	return cats, nil
}

// Deals are the products with the deepest markdown.
func (s *Service) Deals(ctx context.Context) ([]models.Product, error) {
	deals, err := s.store.Deals(ctx, DealsLimit)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch deals", err)
	}
	return deals, nil
}

func (s *Service) Featured(ctx context.Context) ([]models.Product, error) {
	featured, err := s.store.Featured(ctx, FeaturedLimit)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch featured products", err)
	}
	return featured, nil
}
