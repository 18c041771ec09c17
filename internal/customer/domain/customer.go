package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minicrm/backoffice/pkg/validate"
)

var ErrNotFound = errors.New("customer not found")

type Customer struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  *string   `json:"lastName"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Address   *string   `json:"address"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary is the slice of customer data embedded in order responses.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  *string   `json:"lastName"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
}

func (c Customer) Summary() Summary {
	return Summary{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName, Email: c.Email, Phone: c.Phone}
}

// Input carries caller-supplied customer fields. Optional fields stay nil
// when absent so updates can distinguish "not sent" from "cleared".
type Input struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	IsActive  *bool   `json:"isActive"`
}

var nonDigits = regexp.MustCompile(`\D`)

// Normalize trims free-text fields, lowercases email and strips phone down
// to digits.
func (in *Input) Normalize() {
	if in.FirstName != nil {
		*in.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		*in.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		*in.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		*in.Phone = nonDigits.ReplaceAllString(*in.Phone, "")
	}
	if in.Address != nil {
		*in.Address = strings.TrimSpace(*in.Address)
	}
}

// Validate checks an already-normalized input. requireFirstName is true on
// create; updates may omit the field entirely.
func (in *Input) Validate(requireFirstName bool) error {
	var errs validate.Errors
	if in.FirstName == nil {
		if requireFirstName {
			errs.Add("firstName", "First name is required")
		}
	} else if *in.FirstName == "" {
		errs.Add("firstName", "First name is required")
	} else if len(*in.FirstName) > 100 {
		errs.Add("firstName", "First name must be less than 100 characters")
	}
	if in.LastName != nil && len(*in.LastName) > 100 {
		errs.Add("lastName", "Last name must be less than 100 characters")
	}
	if in.Email != nil && *in.Email != "" {
		if len(*in.Email) > 255 {
			errs.Add("email", "Email must be less than 255 characters")
		} else if !validate.Email(*in.Email) {
			errs.Add("email", "Invalid email format")
		}
	}
	if in.Phone != nil && len(*in.Phone) > 20 {
		errs.Add("phone", "Phone must be less than 20 characters")
	}
	if in.Address != nil && len(*in.Address) > 500 {
		errs.Add("address", "Address must be less than 500 characters")
	}
	return errs.Err()
}

// New builds a customer from a normalized, validated create input.
func New(in Input) Customer {
	now := time.Now().UTC()
	c := Customer{
		ID:        uuid.New(),
		FirstName: *in.FirstName,
		LastName:  emptyToNil(in.LastName),
		Email:     emptyToNil(in.Email),
		Phone:     emptyToNil(in.Phone),
		Address:   emptyToNil(in.Address),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return c
}

// Apply merges an update input into an existing customer.
func (c *Customer) Apply(in Input) {
	if in.FirstName != nil {
		c.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		c.LastName = emptyToNil(in.LastName)
	}
	if in.Email != nil {
		c.Email = emptyToNil(in.Email)
	}
	if in.Phone != nil {
		c.Phone = emptyToNil(in.Phone)
	}
	if in.Address != nil {
		c.Address = emptyToNil(in.Address)
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	c.UpdatedAt = time.Now().UTC()
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
