package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/minicrm/backoffice/internal/product/domain"
)

type Operation string

const (
	OpSet      Operation = "set"
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
)

func ParseOperation(s string) (Operation, error) {
	switch Operation(s) {
	case OpSet, OpAdd, OpSubtract:
		return Operation(s), nil
	case "":
		return OpSet, nil
	}
	return "", fmt.Errorf("unknown stock operation %q", s)
}

type Service struct {
	log  *slog.Logger
	repo StockRepository
}

func NewService(log *slog.Logger, repo StockRepository) *Service {
	return &Service{log: log, repo: repo}
}

// CheckAvailability reports whether an order for qty units of the product is
// admissible. Products without a stock row are always orderable. Never
// mutates state.
func (s *Service) CheckAvailability(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	stock, err := s.repo.GetByProduct(ctx, productID)
	if errors.Is(err, domain.ErrStockNotFound) {
		s.log.Debug("no stock record, allowing order", "product_id", productID)
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return stock.Available() >= qty, nil
}

// Availability returns the available quantity and whether the product tracks
// stock at all.
func (s *Service) Availability(ctx context.Context, productID uuid.UUID) (int, bool, error) {
	stock, err := s.repo.GetByProduct(ctx, productID)
	if errors.Is(err, domain.ErrStockNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return stock.Available(), true, nil
}

// AdjustStock mutates the on-hand quantity of a single product. Subtract
// fails with ErrInsufficientStock when the result would go negative, leaving
// the stored value untouched.
func (s *Service) AdjustStock(ctx context.Context, productID uuid.UUID, amount int, op Operation) (domain.Stock, error) {
	stock, err := s.repo.GetByProduct(ctx, productID)
	if err != nil {
		return domain.Stock{}, err
	}

	quantity := stock.Quantity
	switch op {
	case OpSet:
		quantity = amount
	case OpAdd:
		quantity += amount
	case OpSubtract:
		quantity -= amount
		if quantity < 0 {
			return domain.Stock{}, domain.ErrInsufficientStock
		}
	default:
		return domain.Stock{}, fmt.Errorf("unknown stock operation %q", op)
	}

	updated, err := s.repo.SetQuantity(ctx, productID, quantity)
	if err != nil {
		return domain.Stock{}, err
	}
	s.log.Info("stock updated", "product_id", productID, "operation", string(op), "quantity", updated.Quantity)
	return updated, nil
}
