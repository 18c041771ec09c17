package application

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/minicrm/backoffice/internal/product/domain"
)

type Service struct {
	log  *slog.Logger
	repo Repository
}

func NewService(log *slog.Logger, repo Repository) *Service {
	return &Service{log: log, repo: repo}
}

func (s *Service) List(ctx context.Context, f Filter, page, limit int) ([]domain.Product, int, error) {
	return s.repo.List(ctx, f, page, limit)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in domain.Input) (domain.Product, error) {
	in.Normalize()
	if err := in.Validate(true); err != nil {
		return domain.Product{}, err
	}

	p, stock := domain.New(in)
	s.log.Info("creating product", "product_id", p.ID, "name", p.Name, "sku", p.SKU)
	if err := s.repo.CreateWithStock(ctx, p, stock); err != nil {
		return domain.Product{}, err
	}
	p.Stock = &stock
	return p, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in domain.Input) (domain.Product, error) {
	in.Normalize()
	if err := in.Validate(false); err != nil {
		return domain.Product{}, err
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	p.Apply(in)
	if err := s.repo.Update(ctx, p); err != nil {
		return domain.Product{}, err
	}
	s.log.Info("product updated", "product_id", id)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("product deleted", "product_id", id)
	return nil
}
