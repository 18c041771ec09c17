package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minicrm/backoffice/pkg/money"
	"github.com/minicrm/backoffice/pkg/validate"
)

var (
	ErrNotFound           = errors.New("product not found")
	ErrStockNotFound      = errors.New("stock record not found")
	ErrDuplicateSKU       = errors.New("sku already exists")
	ErrReferencedByOrders = errors.New("product referenced by order items")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

var maxPrice = decimal.RequireFromString("999999.99")

type Product struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description"`
	Price       money.Amount `json:"price"`
	SKU         *string      `json:"sku"`
	Category    *string      `json:"category"`
	IsActive    bool         `json:"isActive"`
	Stock       *Stock       `json:"stock,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Stock is the single inventory row owned by a product. Available quantity
// is quantity minus reserved, never quantity alone.
type Stock struct {
	ID               uuid.UUID `json:"-"`
	ProductID        uuid.UUID `json:"-"`
	Quantity         int       `json:"quantity"`
	ReservedQuantity int       `json:"reservedQuantity"`
	ReorderLevel     int       `json:"reorderLevel"`
	UpdatedAt        time.Time `json:"-"`
}

func (s Stock) Available() int { return s.Quantity - s.ReservedQuantity }

const DefaultReorderLevel = 10

type Input struct {
	Name         *string       `json:"name"`
	Description  *string       `json:"description"`
	Price        *money.Amount `json:"price"`
	SKU          *string       `json:"sku"`
	Category     *string       `json:"category"`
	IsActive     *bool         `json:"isActive"`
	InitialStock *int          `json:"initialStock"`
}

func (in *Input) Normalize() {
	for _, f := range []**string{&in.Name, &in.Description, &in.SKU, &in.Category} {
		if *f != nil {
			trimmed := strings.TrimSpace(**f)
			**f = trimmed
		}
	}
}

func (in *Input) Validate(create bool) error {
	var errs validate.Errors
	if in.Name == nil {
		if create {
			errs.Add("name", "Product name is required")
		}
	} else if *in.Name == "" {
		errs.Add("name", "Product name is required")
	} else if len(*in.Name) > 255 {
		errs.Add("name", "Product name must be less than 255 characters")
	}
	if in.Description != nil && len(*in.Description) > 2000 {
		errs.Add("description", "Description must be less than 2000 characters")
	}
	if in.Price == nil {
		if create {
			errs.Add("price", "Price is required")
		}
	} else if !in.Price.IsPositive() {
		errs.Add("price", "Price must be positive")
	} else if in.Price.GreaterThan(maxPrice) {
		errs.Add("price", "Price is too large")
	}
	if in.SKU != nil && len(*in.SKU) > 100 {
		errs.Add("sku", "SKU must be less than 100 characters")
	}
	if in.Category != nil && len(*in.Category) > 100 {
		errs.Add("category", "Category must be less than 100 characters")
	}
	if in.InitialStock != nil && *in.InitialStock < 0 {
		errs.Add("initialStock", "Initial stock cannot be negative")
	}
	return errs.Err()
}

// New builds a product and its paired stock row from a validated create input.
func New(in Input) (Product, Stock) {
	now := time.Now().UTC()
	p := Product{
		ID:          uuid.New(),
		Name:        *in.Name,
		Description: emptyToNil(in.Description),
		Price:       *in.Price,
		SKU:         emptyToNil(in.SKU),
		Category:    emptyToNil(in.Category),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	qty := 0
	if in.InitialStock != nil {
		qty = *in.InitialStock
	}
	s := Stock{
		ID:           uuid.New(),
		ProductID:    p.ID,
		Quantity:     qty,
		ReorderLevel: DefaultReorderLevel,
		UpdatedAt:    now,
	}
	return p, s
}

func (p *Product) Apply(in Input) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = emptyToNil(in.Description)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.SKU != nil {
		p.SKU = emptyToNil(in.SKU)
	}
	if in.Category != nil {
		p.Category = emptyToNil(in.Category)
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.UpdatedAt = time.Now().UTC()
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
