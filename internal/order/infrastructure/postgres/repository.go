package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	customerdomain "github.com/minicrm/backoffice/internal/customer/domain"
	"github.com/minicrm/backoffice/internal/order/application"
	"github.com/minicrm/backoffice/internal/order/domain"
	"github.com/minicrm/backoffice/pkg/money"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

const orderSelect = `
	SELECT o.id, o.customer_id, o.status, o.total_amount::text, o.notes, o.created_at, o.updated_at,
	       c.id, c.first_name, c.last_name, c.email, c.phone
	FROM orders o
	LEFT JOIN customers c ON c.id = o.customer_id`

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o         domain.Order
		total     *string
		custID    *uuid.UUID
		custFirst *string
		custLast  *string
		custEmail *string
		custPhone *string
	)
	err := row.Scan(&o.ID, &o.CustomerID, &o.Status, &total, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
		&custID, &custFirst, &custLast, &custEmail, &custPhone)
	if err != nil {
		return domain.Order{}, err
	}
	if total != nil {
		o.TotalAmount, err = money.FromString(*total)
		if err != nil {
			return domain.Order{}, fmt.Errorf("parse total_amount: %w", err)
		}
	}
	if custID != nil {
		o.Customer = &customerdomain.Summary{
			ID:        *custID,
			FirstName: *custFirst,
			LastName:  custLast,
			Email:     custEmail,
			Phone:     custPhone,
		}
	}
	return o, nil
}

func (r *Repository) List(ctx context.Context, f application.Filter, page, limit int) ([]domain.Order, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.CustomerID != nil {
		args = append(args, *f.CustomerID)
		where += fmt.Sprintf(` AND o.customer_id = $%d`, len(args))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		where += fmt.Sprintf(` AND o.status = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders o`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, (page-1)*limit)
	query := orderSelect + where + fmt.Sprintf(` ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, orderSelect+` WHERE o.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	// Items keep their creation order; they are never reordered.
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, product_id, quantity, price::text
		FROM order_items WHERE order_id=$1 ORDER BY created_at, id`, id)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()

	o.Items = []domain.Item{}
	for rows.Next() {
		var item domain.Item
		var price string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &price); err != nil {
			return domain.Order{}, err
		}
		if item.Price, err = money.FromString(price); err != nil {
			return domain.Order{}, fmt.Errorf("parse item price: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

// CreateHeader writes the order row and reserves stock for every tracked
// item in a single transaction. A reservation that cannot be covered aborts
// the whole transaction, so either the header plus all reservations commit
// or nothing does.
func (r *Repository) CreateHeader(ctx context.Context, o domain.Order, items []domain.ItemInput) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO orders (id, customer_id, status, total_amount, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4::numeric,$5,$6,$7)`,
		o.ID, o.CustomerID, o.Status, o.TotalAmount.String(), o.Notes, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	for _, item := range items {
		ct, err := tx.Exec(ctx, `UPDATE stock
			SET reserved_quantity = reserved_quantity + $2, updated_at = now()
			WHERE product_id = $1 AND quantity - reserved_quantity >= $2`,
			item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
		if ct.RowsAffected() > 0 {
			continue
		}

		// Zero rows means either the product does not track stock (fine) or
		// a concurrent order took the remaining units since the admission
		// check.
		var available int
		err = tx.QueryRow(ctx, `SELECT quantity - reserved_quantity FROM stock WHERE product_id=$1`,
			item.ProductID).Scan(&available)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return err
		}
		return &domain.InsufficientStockError{
			ProductID: item.ProductID,
			Available: available,
			Requested: item.Quantity,
		}
	}

	return tx.Commit(ctx)
}

func (r *Repository) InsertItem(ctx context.Context, item domain.Item) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO order_items (id, order_id, product_id, quantity, price)
		VALUES ($1,$2,$3,$4,$5::numeric)`,
		item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price.String())
	return err
}

// Update commits the order row and any reservation releases together, so a
// cancellation either lands with its stock given back or not at all.
func (r *Repository) Update(ctx context.Context, o domain.Order, release []domain.Item) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, `UPDATE orders SET status=$2, notes=$3, updated_at=$4 WHERE id=$1`,
		o.ID, o.Status, o.Notes, o.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if err := releaseInTx(ctx, tx, release); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID, release []domain.Item) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := releaseInTx(ctx, tx, release); err != nil {
		return err
	}
	ct, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *Repository) ReleaseReservations(ctx context.Context, items []domain.Item) error {
	for _, item := range items {
		_, err := r.pool.Exec(ctx, `UPDATE stock
			SET reserved_quantity = GREATEST(reserved_quantity - $2, 0), updated_at = now()
			WHERE product_id = $1`,
			item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
	}
	return nil
}

func releaseInTx(ctx context.Context, tx pgx.Tx, items []domain.Item) error {
	for _, item := range items {
		_, err := tx.Exec(ctx, `UPDATE stock
			SET reserved_quantity = GREATEST(reserved_quantity - $2, 0), updated_at = now()
			WHERE product_id = $1`,
			item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
	}
	return nil
}
