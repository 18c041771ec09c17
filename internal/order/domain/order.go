package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customerdomain "github.com/minicrm/backoffice/internal/customer/domain"
	"github.com/minicrm/backoffice/pkg/money"
	"github.com/minicrm/backoffice/pkg/validate"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID          uuid.UUID               `json:"id"`
	CustomerID  *uuid.UUID              `json:"customerId"`
	Customer    *customerdomain.Summary `json:"customer"`
	Status      Status                  `json:"status"`
	TotalAmount money.Amount            `json:"totalAmount"`
	Notes       *string                 `json:"notes"`
	Items       []Item                  `json:"items"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

// Item holds the price at time of purchase as supplied by the caller; it is
// not cross-checked against the product's current price.
type Item struct {
	ID        uuid.UUID    `json:"id"`
	OrderID   uuid.UUID    `json:"orderId"`
	ProductID uuid.UUID    `json:"productId"`
	Quantity  int          `json:"quantity"`
	Price     money.Amount `json:"price"`
}

type ItemInput struct {
	ProductID uuid.UUID    `json:"productId"`
	Quantity  int          `json:"quantity"`
	Price     money.Amount `json:"price"`
}

type CreateInput struct {
	CustomerID *uuid.UUID  `json:"customerId"`
	Items      []ItemInput `json:"items"`
	Status     *Status     `json:"status"`
	Notes      *string     `json:"notes"`
}

const (
	maxItems        = 100
	maxItemQuantity = 10000
	maxNotesLength  = 1000
)

func (in *CreateInput) Validate() error {
	var errs validate.Errors
	if len(in.Items) == 0 {
		errs.Add("items", "At least one item is required")
	}
	if len(in.Items) > maxItems {
		errs.Add("items", "Too many items in order")
	}
	for i, item := range in.Items {
		field := "items." + strconv.Itoa(i)
		if item.ProductID == uuid.Nil {
			errs.Add(field+".productId", "Product ID is required")
		}
		if item.Quantity < 1 {
			errs.Add(field+".quantity", "Quantity must be a positive integer")
		} else if item.Quantity > maxItemQuantity {
			errs.Add(field+".quantity", "Quantity too large")
		}
		if !item.Price.IsPositive() {
			errs.Add(field+".price", "Price must be positive")
		}
	}
	if in.Status != nil && !ValidStatus(*in.Status) {
		errs.Add("status", "Invalid order status")
	}
	if in.Notes != nil && len(*in.Notes) > maxNotesLength {
		errs.Add("notes", "Notes must be less than 1000 characters")
	}
	return errs.Err()
}

type UpdateInput struct {
	Status *Status `json:"status"`
	Notes  *string `json:"notes"`
}

func (in *UpdateInput) Validate() error {
	var errs validate.Errors
	if in.Status != nil && !ValidStatus(*in.Status) {
		errs.Add("status", "Invalid order status")
	}
	if in.Notes != nil && len(*in.Notes) > maxNotesLength {
		errs.Add("notes", "Notes must be less than 1000 characters")
	}
	return errs.Err()
}

// Total sums price times quantity over the items, decimal-exact.
func Total(items []ItemInput) money.Amount {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return money.New(total)
}
