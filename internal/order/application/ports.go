package application

import (
	"context"

	"github.com/google/uuid"

	customerdomain "github.com/minicrm/backoffice/internal/customer/domain"
	"github.com/minicrm/backoffice/internal/order/domain"
)

// Filter narrows order listings; nil fields match everything.
type Filter struct {
	CustomerID *uuid.UUID
	Status     *domain.Status
}

type Repository interface {
	List(ctx context.Context, f Filter, page, limit int) ([]domain.Order, int, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Order, error)
	// CreateHeader inserts the order row and reserves stock for its items in
	// one transaction. Items themselves are not written here. Returns
	// *domain.InsufficientStockError when a tracked product cannot cover an
	// item's quantity.
	CreateHeader(ctx context.Context, o domain.Order, items []domain.ItemInput) error
	// InsertItem writes a single line item outside any transaction.
	InsertItem(ctx context.Context, item domain.Item) error
	// Update writes the order row and releases the given reservations in
	// the same transaction.
	Update(ctx context.Context, o domain.Order, release []domain.Item) error
	// Delete removes the order and releases the given reservations
	// atomically.
	Delete(ctx context.Context, id uuid.UUID, release []domain.Item) error
	// ReleaseReservations gives back reserved stock outside any
	// transaction; used when a best-effort item write is skipped.
	ReleaseReservations(ctx context.Context, items []domain.Item) error
}

type CustomerReader interface {
	Get(ctx context.Context, id uuid.UUID) (customerdomain.Customer, error)
}

type Inventory interface {
	CheckAvailability(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
	Availability(ctx context.Context, productID uuid.UUID) (available int, tracked bool, err error)
}
