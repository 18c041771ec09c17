package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/minicrm/backoffice/internal/product/domain"
)

// Filter narrows product listings; nil fields match everything.
type Filter struct {
	Category *string
	IsActive *bool
}

type Repository interface {
	List(ctx context.Context, f Filter, page, limit int) ([]domain.Product, int, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Product, error)
	// CreateWithStock inserts the product and its stock row in one transaction.
	CreateWithStock(ctx context.Context, p domain.Product, s domain.Stock) error
	Update(ctx context.Context, p domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}
