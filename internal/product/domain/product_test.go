package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minicrm/backoffice/pkg/money"
	"github.com/minicrm/backoffice/pkg/validate"
)

func strp(s string) *string { return &s }

func decp(s string) *money.Amount {
	a := money.New(decimal.RequireFromString(s))
	return &a
}

func intp(i int) *int { return &i }

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name      string
		in        Input
		wantField string
	}{
		{"missing name", Input{Price: decp("9.99")}, "name"},
		{"missing price", Input{Name: strp("Widget")}, "price"},
		{"zero price", Input{Name: strp("Widget"), Price: decp("0")}, "price"},
		{"negative price", Input{Name: strp("Widget"), Price: decp("-1")}, "price"},
		{"price over bound", Input{Name: strp("Widget"), Price: decp("1000000.00")}, "price"},
		{"negative initial stock", Input{Name: strp("Widget"), Price: decp("1.00"), InitialStock: intp(-1)}, "initialStock"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate(true)
			var verrs *validate.Errors
			require.ErrorAs(t, err, &verrs)
			require.NotEmpty(t, verrs.Fields())
			assert.Equal(t, tt.wantField, verrs.Fields()[0].Field)
		})
	}
}

func TestValidateBoundaryPrice(t *testing.T) {
	in := Input{Name: strp("Widget"), Price: decp("999999.99")}
	assert.NoError(t, in.Validate(true))
}

func TestNewPairsStockWithProduct(t *testing.T) {
	p, s := New(Input{Name: strp("Widget"), Price: decp("19.99"), InitialStock: intp(25)})

	assert.Equal(t, p.ID, s.ProductID)
	assert.Equal(t, 25, s.Quantity)
	assert.Equal(t, 0, s.ReservedQuantity)
	assert.Equal(t, DefaultReorderLevel, s.ReorderLevel)
	assert.True(t, p.IsActive)
}

func TestNewDefaultsStockToZero(t *testing.T) {
	_, s := New(Input{Name: strp("Widget"), Price: decp("19.99")})
	assert.Equal(t, 0, s.Quantity)
}

func TestStockAvailable(t *testing.T) {
	s := Stock{Quantity: 10, ReservedQuantity: 4}
	assert.Equal(t, 6, s.Available())
}

func TestApplyKeepsUnsetFields(t *testing.T) {
	p, _ := New(Input{Name: strp("Widget"), Price: decp("19.99"), SKU: strp("W-1")})
	p.Apply(Input{Price: decp("24.99")})

	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, "24.99", p.Price.String())
	require.NotNil(t, p.SKU)
	assert.Equal(t, "W-1", *p.SKU)
}
