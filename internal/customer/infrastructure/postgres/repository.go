package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minicrm/backoffice/internal/customer/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

const customerColumns = `id, first_name, last_name, email, phone, address, is_active, created_at, updated_at`

func scanCustomer(row pgx.Row) (domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *Repository) List(ctx context.Context, page, limit int) ([]domain.Customer, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, limit)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	return customers, total, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Customer{}, domain.ErrNotFound
	}
	return c, err
}

func (r *Repository) Create(ctx context.Context, c domain.Customer) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO customers (`+customerColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.IsActive, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *Repository) Update(ctx context.Context, c domain.Customer) error {
	ct, err := r.pool.Exec(ctx, `UPDATE customers
		SET first_name=$2, last_name=$3, email=$4, phone=$5, address=$6, is_active=$7, updated_at=$8
		WHERE id=$1`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.IsActive, c.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the customer; the FK cascade takes their orders with them.
// Reservations those orders still hold are given back first in the same
// transaction. Cancelled orders hold none.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `UPDATE stock s
		SET reserved_quantity = GREATEST(s.reserved_quantity - held.qty, 0), updated_at = now()
		FROM (
			SELECT oi.product_id, SUM(oi.quantity) AS qty
			FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE o.customer_id = $1 AND o.status <> 'cancelled'
			GROUP BY oi.product_id
		) held
		WHERE s.product_id = held.product_id`, id)
	if err != nil {
		return err
	}

	ct, err := tx.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit(ctx)
}
