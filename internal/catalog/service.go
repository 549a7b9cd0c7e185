// Package catalog is straightforward validated CRUD over products and
// categories, plus full-text product search. Writes are admin-gated at
// the HTTP layer.
package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/skvortsovm/shop-backend/internal/logging"
	"github.com/skvortsovm/shop-backend/internal/models"
)

type Store interface {
	ProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, offset, limit int) ([]models.Product, int64, error)
	SaveProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SearchProductsSQL(ctx context.Context, query string, limit int) ([]models.Product, error)
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)

	CategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	SaveCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	store Store
	index *Index // nil when Elasticsearch is not configured
}

func NewService(store Store, index *Index) *Service {
	return &Service{store: store, index: index}
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.store.ProductByID(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, offset, limit int) ([]models.Product, int64, error) {
	return s.store.ListProducts(ctx, offset, limit)
}

func (s *Service) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := s.store.SaveProduct(ctx, p); err != nil {
		return err
	}
	s.indexProduct(ctx, p)
	return nil
}

func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, apply func(*models.Product)) (*models.Product, error) {
	p, err := s.store.ProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(p)
	if err := s.store.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	s.indexProduct(ctx, p)
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.ProductByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.Delete(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("es_delete_error", "product_id", id, "error", err)
		}
	}
	return nil
}

// Search queries Elasticsearch when configured, falling back to a plain
// SQL substring match otherwise.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.Product, error) {
	if s.index == nil {
		return s.store.SearchProductsSQL(ctx, query, limit)
	}

	ids, err := s.index.Search(ctx, query, limit)
	if err != nil {
		logging.FromContext(ctx).Warn("es_search_error", "error", err)
		return s.store.SearchProductsSQL(ctx, query, limit)
	}
	return s.store.ProductsByIDs(ctx, ids)
}

func (s *Service) indexProduct(ctx context.Context, p *models.Product) {
	if s.index == nil {
		return
	}
	if err := s.index.Put(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("es_index_error", "product_id", p.ID, "error", err)
	}
}

func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.store.CategoryByID(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, c *models.Category) error {
	return s.store.SaveCategory(ctx, c)
}

func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*models.Category, error) {
	c, err := s.store.CategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = name
	if err := s.store.SaveCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.CategoryByID(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteCategory(ctx, id)
}
