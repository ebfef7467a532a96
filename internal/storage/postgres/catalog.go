package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/models"
	"gorm.io/gorm"
)

// CatalogStore reads products through gorm.
type CatalogStore struct {
	db *gorm.DB
}

var _ catalog.Store = (*CatalogStore)(nil)

func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *CatalogStore) filtered(ctx context.Context, f models.ProductFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if f.Category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", f.Category)
	}
	if f.Search != "" {
		like := "%" + likeEscaper.Replace(f.Search) + "%"
		q = q.Where("(name ILIKE ? OR description ILIKE ?)", like, like)
	}
	return q
}

func orderClause(sort models.ProductSort) string {
	switch sort {
	case models.SortPriceAsc:
		return "price ASC, id ASC"
	case models.SortPriceDesc:
		return "price DESC, id ASC"
	case models.SortRating:
		return "rating DESC, id ASC"
	case models.SortNewest:
		return "created_at DESC, id DESC"
	default:
		return "id ASC"
	}
}

func (s *CatalogStore) List(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	var products []models.Product
	err := s.filtered(ctx, f).
		Order(orderClause(f.Sort)).
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&products).Error
	return products, err
}

func (s *CatalogStore) Count(ctx context.Context, f models.ProductFilter) (int64, error) {
	var n int64
	err := s.filtered(ctx, f).Count(&n).Error
	return n, err
}

func (s *CatalogStore) Get(ctx context.Context, id int64) (models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, catalog.ErrProductNotFound
	}
	return p, err
}

func (s *CatalogStore) Categories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("category, COUNT(*) AS count").
		Where("category <> ''").
		Group("category").
		Order("category").
		Scan(&cats).Error
	return cats, err
}

func (s *CatalogStore) Deals(ctx context.Context, limit int) ([]models.Product, error) {
	var deals []models.Product
	err := s.db.WithContext(ctx).
		Where("original_price > price").
		Order("(original_price - price) / original_price DESC, id ASC").
		Limit(limit).
		Find(&deals).Error
	return deals, err
}

func (s *CatalogStore) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	var featured []models.Product
	err := s.db.WithContext(ctx).
		Where("is_featured = ?", true).
		Order("rating DESC, id ASC").
		Limit(limit).
		Find(&featured).Error
	return featured, err
}
