package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/minicrm/backoffice/internal/customer/domain"
)

type Repository interface {
	List(ctx context.Context, page, limit int) ([]domain.Customer, int, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Customer, error)
	Create(ctx context.Context, c domain.Customer) error
	Update(ctx context.Context, c domain.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}
