package application

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/minicrm/backoffice/internal/customer/domain"
)

type Service struct {
	log  *slog.Logger
	repo Repository
}

func NewService(log *slog.Logger, repo Repository) *Service {
	return &Service{log: log, repo: repo}
}

func (s *Service) List(ctx context.Context, page, limit int) ([]domain.Customer, int, error) {
	return s.repo.List(ctx, page, limit)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in domain.Input) (domain.Customer, error) {
	in.Normalize()
	if err := in.Validate(true); err != nil {
		return domain.Customer{}, err
	}

	c := domain.New(in)
	s.log.Info("creating customer", "customer_id", c.ID, "first_name", c.FirstName)
	if err := s.repo.Create(ctx, c); err != nil {
		return domain.Customer{}, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in domain.Input) (domain.Customer, error) {
	in.Normalize()
	if err := in.Validate(false); err != nil {
		return domain.Customer{}, err
	}

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	c.Apply(in)
	if err := s.repo.Update(ctx, c); err != nil {
		return domain.Customer{}, err
	}
	s.log.Info("customer updated", "customer_id", id)
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("customer deleted", "customer_id", id)
	return nil
}
