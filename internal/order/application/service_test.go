package application

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerdomain "github.com/minicrm/backoffice/internal/customer/domain"
	"github.com/minicrm/backoffice/internal/order/domain"
	"github.com/minicrm/backoffice/pkg/money"
	"github.com/minicrm/backoffice/pkg/validate"
)

type stockRow struct {
	quantity int
	reserved int
}

type fakeRepo struct {
	orders       map[uuid.UUID]domain.Order
	items        map[uuid.UUID][]domain.Item
	stock        map[uuid.UUID]*stockRow
	itemFailures map[uuid.UUID]error
	updateErr    error
	released     []domain.Item
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders:       map[uuid.UUID]domain.Order{},
		items:        map[uuid.UUID][]domain.Item{},
		stock:        map[uuid.UUID]*stockRow{},
		itemFailures: map[uuid.UUID]error{},
	}
}

func (r *fakeRepo) List(ctx context.Context, f Filter, page, limit int) ([]domain.Order, int, error) {
	all := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		all = append(all, o)
	}
	start := (page - 1) * limit
	if start >= len(all) {
		return []domain.Order{}, len(all), nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (r *fakeRepo) Get(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	o.Items = append([]domain.Item{}, r.items[id]...)
	return o, nil
}

func (r *fakeRepo) CreateHeader(ctx context.Context, o domain.Order, items []domain.ItemInput) error {
	for _, item := range items {
		row, tracked := r.stock[item.ProductID]
		if !tracked {
			continue
		}
		if row.quantity-row.reserved < item.Quantity {
			return &domain.InsufficientStockError{
				ProductID: item.ProductID,
				Available: row.quantity - row.reserved,
				Requested: item.Quantity,
			}
		}
		row.reserved += item.Quantity
	}
	r.orders[o.ID] = o
	return nil
}

func (r *fakeRepo) InsertItem(ctx context.Context, item domain.Item) error {
	if err := r.itemFailures[item.ProductID]; err != nil {
		return err
	}
	r.items[item.OrderID] = append(r.items[item.OrderID], item)
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, o domain.Order, release []domain.Item) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.orders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	r.orders[o.ID] = o
	r.release(release)
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uuid.UUID, release []domain.Item) error {
	if _, ok := r.orders[id]; !ok {
		return domain.ErrNotFound
	}
	r.release(release)
	delete(r.orders, id)
	delete(r.items, id)
	return nil
}

func (r *fakeRepo) ReleaseReservations(ctx context.Context, items []domain.Item) error {
	r.release(items)
	return nil
}

func (r *fakeRepo) release(items []domain.Item) {
	for _, item := range items {
		if row, ok := r.stock[item.ProductID]; ok {
			row.reserved -= item.Quantity
			if row.reserved < 0 {
				row.reserved = 0
			}
		}
	}
	r.released = append(r.released, items...)
}

type fakeCustomers struct {
	customers map[uuid.UUID]customerdomain.Customer
	calls     int
}

func (c *fakeCustomers) Get(ctx context.Context, id uuid.UUID) (customerdomain.Customer, error) {
	c.calls++
	cust, ok := c.customers[id]
	if !ok {
		return customerdomain.Customer{}, customerdomain.ErrNotFound
	}
	return cust, nil
}

// fakeInventory answers availability from the same stock map the repo
// reserves against.
type fakeInventory struct {
	repo *fakeRepo
}

func (i *fakeInventory) CheckAvailability(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	row, ok := i.repo.stock[productID]
	if !ok {
		return true, nil
	}
	return row.quantity-row.reserved >= qty, nil
}

func (i *fakeInventory) Availability(ctx context.Context, productID uuid.UUID) (int, bool, error) {
	row, ok := i.repo.stock[productID]
	if !ok {
		return 0, false, nil
	}
	return row.quantity - row.reserved, true, nil
}

func newTestService() (*Service, *fakeRepo, *fakeCustomers) {
	repo := newFakeRepo()
	customers := &fakeCustomers{customers: map[uuid.UUID]customerdomain.Customer{}}
	svc := NewService(slog.New(slog.DiscardHandler), repo, customers, &fakeInventory{repo: repo})
	return svc, repo, customers
}

func activeCustomer() customerdomain.Customer {
	return customerdomain.Customer{ID: uuid.New(), FirstName: "Ada", IsActive: true}
}

func dec(s string) money.Amount { return money.New(decimal.RequireFromString(s)) }

func TestCreateComputesExactTotal(t *testing.T) {
	svc, repo, _ := newTestService()
	p1, p2 := uuid.New(), uuid.New()
	repo.stock[p1] = &stockRow{quantity: 10}

	result, err := svc.Create(context.Background(), domain.CreateInput{
		Items: []domain.ItemInput{
			{ProductID: p1, Quantity: 2, Price: dec("10.50")},
			{ProductID: p2, Quantity: 1, Price: dec("25.00")},
		},
	})
	require.NoError(t, err)
	assert.True(t, dec("46.00").Equal(result.Order.TotalAmount.Decimal),
		"want 46.00, got %s", result.Order.TotalAmount)
	assert.Equal(t, "46.00", result.Order.TotalAmount.String())
}

func TestCreateUnknownCustomerFails(t *testing.T) {
	svc, repo, _ := newTestService()
	id := uuid.New()

	_, err := svc.Create(context.Background(), domain.CreateInput{
		CustomerID: &id,
		Items:      []domain.ItemInput{{ProductID: uuid.New(), Quantity: 1, Price: dec("5.00")}},
	})
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)
	assert.Empty(t, repo.orders, "no order row may be persisted")
}

func TestCreateInactiveCustomerFails(t *testing.T) {
	svc, repo, customers := newTestService()
	cust := activeCustomer()
	cust.IsActive = false
	customers.customers[cust.ID] = cust

	_, err := svc.Create(context.Background(), domain.CreateInput{
		CustomerID: &cust.ID,
		Items:      []domain.ItemInput{{ProductID: uuid.New(), Quantity: 1, Price: dec("5.00")}},
	})
	require.ErrorIs(t, err, domain.ErrCustomerInactive)
	assert.Empty(t, repo.orders)
}

func TestCreateInsufficientStockFailsBeforeAnyWrite(t *testing.T) {
	svc, repo, _ := newTestService()
	p := uuid.New()
	repo.stock[p] = &stockRow{quantity: 5, reserved: 3}

	_, err := svc.Create(context.Background(), domain.CreateInput{
		Items: []domain.ItemInput{{ProductID: p, Quantity: 3, Price: dec("1.00")}},
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, p, stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Empty(t, repo.orders)
	assert.Equal(t, 3, repo.stock[p].reserved, "reservation must be untouched")
}

func TestCreateUntrackedProductAlwaysOrderable(t *testing.T) {
	svc, repo, _ := newTestService()

	result, err := svc.Create(context.Background(), domain.CreateInput{
		Items: []domain.ItemInput{{ProductID: uuid.New(), Quantity: 9999, Price: dec("0.01")}},
	})
	require.NoError(t, err)
	assert.Len(t, repo.orders, 1)
	assert.Len(t, result.Order.Items, 1)
}

func TestCreateGuestOrder(t *testing.T) {
	svc, _, customers := newTestService()

	result, err := svc.Create(context.Background(), domain.CreateInput{
		Items: []domain.ItemInput{{ProductID: uuid.New(), Quantity: 1, Price: dec("9.99")}},
	})
	require.NoError(t, err)
	assert.Nil(t, result.Order.CustomerID)
	assert.Zero(t, customers.calls, "guest orders skip customer validation")
}

func TestCreateReservesStockInsideHeaderWrite(t *testing.T) {
	svc, repo, _ := newTestService()
	p := uuid.New()
	repo.stock[p] = &stockRow{quantity: 5}

	_, err := svc.Create(context.Background(), domain.CreateInput{
		Items: []domain.ItemInput{{ProductID: p, Quantity: 2, Price: dec("1.00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.stock[p].reserved)
	assert.Equal(t, 5, repo.stock[p].quantity, "on-hand quantity is not decremented at order time")
}

func TestCreateBestEffortItemWrites(t *testing.T) {
	svc, repo, _ := newTestService()
	good, bad := uuid.New(), uuid.New()
	repo.itemFailures[bad] = errors.New("violates foreign key constraint")

	result, err := svc.Create(context.Background(), domain.CreateInput{
		Items: []domain.ItemInput{
			{ProductID: good, Quantity: 1, Price: dec("3.00")},
			{ProductID: bad, Quantity: 2, Price: dec("4.00")},
		},
	})
	require.NoError(t, err, "a failed item write must not fail the order")
	assert.Len(t, result.Order.Items, 1)
	assert.Equal(t, good, result.Order.Items[0].ProductID)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, bad, result.Skipped[0].ProductID)
	// The failed item's price still counts toward the total: it was computed
	// before the write phase.
	assert.Equal(t, "11.00", result.Order.TotalAmount.String())
}

func TestCreateDefaultsStatusToPending(t *testing.T) {
	svc, _, _ := newTestService()

	result, err := svc.Create(context.Background(), domain.CreateInput{
		Items: []domain.ItemInput{{ProductID: uuid.New(), Quantity: 1, Price: dec("1.00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, result.Order.Status)
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), domain.CreateInput{})
	var verrs *validate.Errors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs.Fields(), 1)
	assert.Equal(t, "items", verrs.Fields()[0].Field)
}

func TestUpdateToCancelledReleasesReservations(t *testing.T) {
	svc, repo, _ := newTestService()
	p := uuid.New()
	repo.stock[p] = &stockRow{quantity: 5}

	result, err := svc.Create(context.Background(), domain.CreateInput{
		Items: []domain.ItemInput{{ProductID: p, Quantity: 2, Price: dec("1.00")}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, repo.stock[p].reserved)

	cancelled := domain.StatusCancelled
	updated, err := svc.Update(context.Background(), result.Order.ID, domain.UpdateInput{Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	assert.Equal(t, 0, repo.stock[p].reserved)

	// Cancelling again must not release twice.
	_, err = svc.Update(context.Background(), result.Order.ID, domain.UpdateInput{Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, 0, repo.stock[p].reserved)
}

func TestDeleteReleasesReservations(t *testing.T) {
	svc, repo, _ := newTestService()
	p := uuid.New()
	repo.stock[p] = &stockRow{quantity: 5}

	result, err := svc.Create(context.Background(), domain.CreateInput{
		Items: []domain.ItemInput{{ProductID: p, Quantity: 2, Price: dec("1.00")}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), result.Order.ID))
	assert.Equal(t, 0, repo.stock[p].reserved)
	assert.Empty(t, repo.orders)
}

func TestCreateCancelledOrderTakesNoReservations(t *testing.T) {
	svc, repo, _ := newTestService()
	p := uuid.New()
	repo.stock[p] = &stockRow{quantity: 5}

	cancelled := domain.StatusCancelled
	result, err := svc.Create(context.Background(), domain.CreateInput{
		Status: &cancelled,
		Items:  []domain.ItemInput{{ProductID: p, Quantity: 2, Price: dec("1.00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, result.Order.Status)
	assert.Equal(t, 0, repo.stock[p].reserved)

	// Deleting it must not release stock it never held.
	require.NoError(t, svc.Delete(context.Background(), result.Order.ID))
	assert.Equal(t, 0, repo.stock[p].reserved)
	assert.Empty(t, repo.released)
}

func TestSkippedItemReleasesItsReservation(t *testing.T) {
	svc, repo, _ := newTestService()
	bad := uuid.New()
	repo.stock[bad] = &stockRow{quantity: 5}
	repo.itemFailures[bad] = errors.New("violates foreign key constraint")

	result, err := svc.Create(context.Background(), domain.CreateInput{
		Items: []domain.ItemInput{{ProductID: bad, Quantity: 2, Price: dec("1.00")}},
	})
	require.NoError(t, err)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 0, repo.stock[bad].reserved, "a skipped item must not keep its reservation")
}

func TestFailedCancelKeepsReservations(t *testing.T) {
	svc, repo, _ := newTestService()
	p := uuid.New()
	repo.stock[p] = &stockRow{quantity: 5}

	result, err := svc.Create(context.Background(), domain.CreateInput{
		Items: []domain.ItemInput{{ProductID: p, Quantity: 2, Price: dec("1.00")}},
	})
	require.NoError(t, err)

	repo.updateErr = errors.New("connection reset")
	cancelled := domain.StatusCancelled
	_, err = svc.Update(context.Background(), result.Order.ID, domain.UpdateInput{Status: &cancelled})
	require.Error(t, err)
	assert.Equal(t, 2, repo.stock[p].reserved, "release only lands with the committed status")
	assert.Equal(t, domain.StatusPending, repo.orders[result.Order.ID].Status)
}

func TestDeleteUnknownOrder(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
