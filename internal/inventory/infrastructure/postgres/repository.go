package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minicrm/backoffice/internal/product/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

const stockColumns = `id, product_id, quantity, reserved_quantity, reorder_level, updated_at`

func (r *Repository) GetByProduct(ctx context.Context, productID uuid.UUID) (domain.Stock, error) {
	var s domain.Stock
	err := r.pool.QueryRow(ctx, `SELECT `+stockColumns+` FROM stock WHERE product_id=$1`, productID).
		Scan(&s.ID, &s.ProductID, &s.Quantity, &s.ReservedQuantity, &s.ReorderLevel, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Stock{}, domain.ErrStockNotFound
	}
	return s, err
}

func (r *Repository) SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) (domain.Stock, error) {
	var s domain.Stock
	err := r.pool.QueryRow(ctx, `UPDATE stock SET quantity=$2, updated_at=$3 WHERE product_id=$1
		RETURNING `+stockColumns, productID, quantity, time.Now().UTC()).
		Scan(&s.ID, &s.ProductID, &s.Quantity, &s.ReservedQuantity, &s.ReorderLevel, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Stock{}, domain.ErrStockNotFound
	}
	return s, err
}
