package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minicrm/backoffice/internal/product/application"
	"github.com/minicrm/backoffice/internal/product/domain"
	"github.com/minicrm/backoffice/pkg/money"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

const productSelect = `
	SELECT p.id, p.name, p.description, p.price::text, p.sku, p.category, p.is_active,
	       p.created_at, p.updated_at,
	       s.id, s.quantity, s.reserved_quantity, s.reorder_level, s.updated_at
	FROM products p
	LEFT JOIN stock s ON s.product_id = p.id`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p        domain.Product
		price    string
		stockID  *uuid.UUID
		qty      *int
		reserved *int
		reorder  *int
		stockUpd *time.Time
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.SKU, &p.Category, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
		&stockID, &qty, &reserved, &reorder, &stockUpd)
	if err != nil {
		return domain.Product{}, err
	}
	p.Price, err = money.FromString(price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("parse price: %w", err)
	}
	if stockID != nil {
		p.Stock = &domain.Stock{
			ID:               *stockID,
			ProductID:        p.ID,
			Quantity:         *qty,
			ReservedQuantity: *reserved,
			ReorderLevel:     *reorder,
			UpdatedAt:        *stockUpd,
		}
	}
	return p, nil
}

func (r *Repository) List(ctx context.Context, f application.Filter, page, limit int) ([]domain.Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.Category != nil {
		args = append(args, *f.Category)
		where += fmt.Sprintf(` AND p.category = $%d`, len(args))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		where += fmt.Sprintf(` AND p.is_active = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, (page-1)*limit)
	query := productSelect + where + fmt.Sprintf(` ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, productSelect+` WHERE p.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, err
}

func (r *Repository) CreateWithStock(ctx context.Context, p domain.Product, s domain.Stock) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO products (id, name, description, price, sku, category, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4::numeric,$5,$6,$7,$8,$9)`,
		p.ID, p.Name, p.Description, p.Price.String(), p.SKU, p.Category, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return translateConstraint(err)
	}

	_, err = tx.Exec(ctx, `INSERT INTO stock (id, product_id, quantity, reserved_quantity, reorder_level, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		s.ID, s.ProductID, s.Quantity, s.ReservedQuantity, s.ReorderLevel, s.UpdatedAt)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Update(ctx context.Context, p domain.Product) error {
	ct, err := r.pool.Exec(ctx, `UPDATE products
		SET name=$2, description=$3, price=$4::numeric, sku=$5, category=$6, is_active=$7, updated_at=$8
		WHERE id=$1`,
		p.ID, p.Name, p.Description, p.Price.String(), p.SKU, p.Category, p.IsActive, p.UpdatedAt)
	if err != nil {
		return translateConstraint(err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return translateConstraint(err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// translateConstraint maps Postgres constraint violations onto domain errors
// so the HTTP layer never sees driver types.
func translateConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return domain.ErrDuplicateSKU
	case "23503":
		return domain.ErrReferencedByOrders
	}
	return err
}
