package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	customerdomain "github.com/minicrm/backoffice/internal/customer/domain"
	"github.com/minicrm/backoffice/internal/order/domain"
)

type Service struct {
	log       *slog.Logger
	repo      Repository
	customers CustomerReader
	inventory Inventory
}

func NewService(log *slog.Logger, repo Repository, customers CustomerReader, inventory Inventory) *Service {
	return &Service{log: log, repo: repo, customers: customers, inventory: inventory}
}

// SkippedItem records a line item the best-effort write phase could not
// persist. The order itself is still created.
type SkippedItem struct {
	ProductID uuid.UUID `json:"productId"`
	Reason    string    `json:"reason"`
}

type CreateResult struct {
	Order   domain.Order
	Skipped []SkippedItem
}

func (s *Service) List(ctx context.Context, f Filter, page, limit int) ([]domain.Order, int, error) {
	return s.repo.List(ctx, f, page, limit)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}

// Create runs the order workflow: customer validation, per-item availability
// check, total computation, transactional header write with stock
// reservation, then best-effort item writes.
func (s *Service) Create(ctx context.Context, in domain.CreateInput) (CreateResult, error) {
	if err := in.Validate(); err != nil {
		return CreateResult{}, err
	}

	// Guest orders carry no customer and skip validation entirely.
	if in.CustomerID != nil {
		customer, err := s.customers.Get(ctx, *in.CustomerID)
		if errors.Is(err, customerdomain.ErrNotFound) {
			return CreateResult{}, domain.ErrCustomerNotFound
		}
		if err != nil {
			return CreateResult{}, err
		}
		if !customer.IsActive {
			return CreateResult{}, domain.ErrCustomerInactive
		}
	}

	status := domain.StatusPending
	if in.Status != nil {
		status = *in.Status
	}

	// Admission check in item order, before any row is written. The first
	// failing item aborts the whole order. Orders created directly in
	// cancelled state never hold stock, so they skip the check too.
	if status != domain.StatusCancelled {
		for _, item := range in.Items {
			ok, err := s.inventory.CheckAvailability(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return CreateResult{}, err
			}
			if !ok {
				available, _, err := s.inventory.Availability(ctx, item.ProductID)
				if err != nil {
					return CreateResult{}, err
				}
				return CreateResult{}, &domain.InsufficientStockError{
					ProductID: item.ProductID,
					Available: available,
					Requested: item.Quantity,
				}
			}
		}
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:          uuid.New(),
		CustomerID:  in.CustomerID,
		Status:      status,
		TotalAmount: domain.Total(in.Items),
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.log.Info("creating order",
		"order_id", order.ID,
		"customer_id", customerOrGuest(in.CustomerID),
		"item_count", len(in.Items),
		"total_amount", order.TotalAmount.String(),
	)

	// Header write plus stock reservation, atomically. Failure here leaves
	// no partial state.
	reserve := in.Items
	if status == domain.StatusCancelled {
		reserve = nil
	}
	if err := s.repo.CreateHeader(ctx, order, reserve); err != nil {
		return CreateResult{}, err
	}

	// Item writes are deliberately outside the header transaction: a bad
	// item (say, an unknown product id) is logged and skipped rather than
	// failing the already-committed order.
	var skipped []SkippedItem
	for _, item := range in.Items {
		err := s.repo.InsertItem(ctx, domain.Item{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
		if err != nil {
			s.log.Warn("could not create order item",
				"order_id", order.ID, "product_id", item.ProductID, "err", err)
			skipped = append(skipped, SkippedItem{ProductID: item.ProductID, Reason: err.Error()})
			if status == domain.StatusCancelled {
				continue
			}
			// A skipped item holds a reservation nothing else would release.
			release := []domain.Item{{ProductID: item.ProductID, Quantity: item.Quantity}}
			if err := s.repo.ReleaseReservations(ctx, release); err != nil {
				s.log.Error("could not release reservation for skipped item",
					"order_id", order.ID, "product_id", item.ProductID, "err", err)
			}
		}
	}

	created, err := s.repo.Get(ctx, order.ID)
	if err != nil {
		return CreateResult{}, err
	}
	return CreateResult{Order: created, Skipped: skipped}, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in domain.UpdateInput) (domain.Order, error) {
	if err := in.Validate(); err != nil {
		return domain.Order{}, err
	}

	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	// Cancelling gives reserved stock back in the same write that commits
	// the status, so a failed update leaves reservations in place. Moving
	// out of cancelled does not re-reserve; the admission check only runs
	// at creation.
	var release []domain.Item
	if in.Status != nil && *in.Status == domain.StatusCancelled && order.Status != domain.StatusCancelled {
		release = order.Items
	}

	if in.Status != nil {
		order.Status = *in.Status
	}
	if in.Notes != nil {
		order.Notes = in.Notes
	}
	order.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, order, release); err != nil {
		return domain.Order{}, err
	}
	s.log.Info("order updated", "order_id", id, "status", order.Status)
	return order, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	var release []domain.Item
	if order.Status != domain.StatusCancelled {
		release = order.Items
	}
	if err := s.repo.Delete(ctx, id, release); err != nil {
		return err
	}
	s.log.Info("order deleted", "order_id", id)
	return nil
}

func customerOrGuest(id *uuid.UUID) string {
	if id == nil {
		return "guest"
	}
	return id.String()
}
