package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/models"
)

type CatalogStore struct {
	db *DB
}

var _ catalog.Store = (*CatalogStore)(nil)

func matches(p models.Product, f models.ProductFilter) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	return true
}

func sortProducts(list []models.Product, by models.ProductSort) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch by {
		case models.SortPriceAsc:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case models.SortPriceDesc:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		case models.SortRating:
			if !a.Rating.Equal(b.Rating) {
				return a.Rating.GreaterThan(b.Rating)
			}
		case models.SortNewest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})
}

func (s *CatalogStore) filtered(f models.ProductFilter) []models.Product {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var out []models.Product
	for _, p := range s.db.st.products {
		if matches(p, f) {
			out = append(out, p)
		}
	}
	return out
}

func (s *CatalogStore) List(_ context.Context, f models.ProductFilter) ([]models.Product, error) {
	list := s.filtered(f)
	sortProducts(list, f.Sort)
	if f.Offset >= len(list) {
		return []models.Product{}, nil
	}
	list = list[f.Offset:]
	if f.Limit > 0 && f.Limit < len(list) {
		list = list[:f.Limit]
	}
	return list, nil
}

func (s *CatalogStore) Count(_ context.Context, f models.ProductFilter) (int64, error) {
	return int64(len(s.filtered(f))), nil
}

func (s *CatalogStore) Get(_ context.Context, id int64) (models.Product, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	p, ok := s.db.st.products[id]
	if !ok {
		return models.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}

func (s *CatalogStore) Categories(_ context.Context) ([]models.Category, error) {
	s.db.mu.RLock()
	counts := make(map[string]int64)
	for _, p := range s.db.st.products {
		if p.Category != "" {
			counts[p.Category]++
		}
	}
	s.db.mu.RUnlock()

	out := make([]models.Category, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.Category{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *CatalogStore) Deals(_ context.Context, limit int) ([]models.Product, error) {
	var deals []models.Product
	for _, p := range s.filtered(models.ProductFilter{}) {
		if p.OriginalPrice.GreaterThan(p.Price) {
			deals = append(deals, p)
		}
	}
	discount := func(p models.Product) float64 {
		return p.OriginalPrice.Sub(p.Price).Div(p.OriginalPrice).InexactFloat64()
	}
	sort.SliceStable(deals, func(i, j int) bool {
		di, dj := discount(deals[i]), discount(deals[j])
		if di != dj {
			return di > dj
		}
		return deals[i].ID < deals[j].ID
	})
	if limit > 0 && len(deals) > limit {
		deals = deals[:limit]
	}
	return deals, nil
}

func (s *CatalogStore) Featured(_ context.Context, limit int) ([]models.Product, error) {
	var featured []models.Product
	for _, p := range s.filtered(models.ProductFilter{}) {
		if p.IsFeatured {
			featured = append(featured, p)
		}
	}
	sortProducts(featured, models.SortRating)
	if limit > 0 && len(featured) > limit {
		featured = featured[:limit]
	}
	return featured, nil
}
