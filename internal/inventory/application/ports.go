package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/minicrm/backoffice/internal/product/domain"
)

type StockRepository interface {
	// GetByProduct returns domain.ErrStockNotFound when the product does not
	// track stock.
	GetByProduct(ctx context.Context, productID uuid.UUID) (domain.Stock, error)
	SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) (domain.Stock, error)
}
