package product

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/repository/catalog"
)

type Service struct {
	repo catalog.Repository
}

func New(repo catalog.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) Get(ctx context.Context, slug string) (*domain.Product, error) {
	return s.repo.GetProductBySlug(ctx, domain.Slugify(slug))
}

func (s *Service) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	return s.repo.ListCollections(ctx)
}

func (s *Service) GetCollection(ctx context.Context, slug string) (*domain.Collection, error) {
	return s.repo.GetCollectionBySlug(ctx, domain.Slugify(slug))
}
