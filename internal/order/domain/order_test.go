package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minicrm/backoffice/pkg/money"
	"github.com/minicrm/backoffice/pkg/validate"
)

func dec(s string) money.Amount { return money.New(decimal.RequireFromString(s)) }

func TestTotalIsDecimalExact(t *testing.T) {
	total := Total([]ItemInput{
		{ProductID: uuid.New(), Quantity: 2, Price: dec("10.50")},
		{ProductID: uuid.New(), Quantity: 1, Price: dec("25.00")},
	})
	assert.Equal(t, "46.00", total.String())
}

func TestTotalAvoidsFloatDrift(t *testing.T) {
	// 0.1 * 3 is the classic binary-float trap.
	total := Total([]ItemInput{{ProductID: uuid.New(), Quantity: 3, Price: dec("0.10")}})
	assert.True(t, dec("0.30").Equal(total.Decimal), "got %s", total)
}

func TestTotalEmptyItems(t *testing.T) {
	assert.Equal(t, "0.00", Total(nil).String())
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled} {
		assert.True(t, ValidStatus(s), string(s))
	}
	assert.False(t, ValidStatus("preparing"))
	assert.False(t, ValidStatus("delivered"))
	assert.False(t, ValidStatus(""))
}

func TestCreateInputValidate(t *testing.T) {
	valid := func() CreateInput {
		return CreateInput{Items: []ItemInput{{ProductID: uuid.New(), Quantity: 1, Price: dec("1.00")}}}
	}

	t.Run("ok", func(t *testing.T) {
		in := valid()
		assert.NoError(t, in.Validate())
	})

	t.Run("no items", func(t *testing.T) {
		in := CreateInput{}
		requireFieldError(t, in.Validate(), "items")
	})

	t.Run("too many items", func(t *testing.T) {
		in := CreateInput{}
		for i := 0; i < 101; i++ {
			in.Items = append(in.Items, ItemInput{ProductID: uuid.New(), Quantity: 1, Price: dec("1.00")})
		}
		requireFieldError(t, in.Validate(), "items")
	})

	t.Run("zero quantity", func(t *testing.T) {
		in := valid()
		in.Items[0].Quantity = 0
		requireFieldError(t, in.Validate(), "items.0.quantity")
	})

	t.Run("quantity too large", func(t *testing.T) {
		in := valid()
		in.Items[0].Quantity = 10001
		requireFieldError(t, in.Validate(), "items.0.quantity")
	})

	t.Run("zero price", func(t *testing.T) {
		in := valid()
		in.Items[0].Price = dec("0")
		requireFieldError(t, in.Validate(), "items.0.price")
	})

	t.Run("negative price", func(t *testing.T) {
		in := valid()
		in.Items[0].Price = dec("-1.00")
		requireFieldError(t, in.Validate(), "items.0.price")
	})

	t.Run("missing product id", func(t *testing.T) {
		in := valid()
		in.Items[0].ProductID = uuid.Nil
		requireFieldError(t, in.Validate(), "items.0.productId")
	})

	t.Run("bad status", func(t *testing.T) {
		in := valid()
		bad := Status("ready")
		in.Status = &bad
		requireFieldError(t, in.Validate(), "status")
	})
}

func TestUpdateInputValidate(t *testing.T) {
	good := StatusCompleted
	in := UpdateInput{Status: &good}
	assert.NoError(t, in.Validate())

	bad := Status("delivered")
	in = UpdateInput{Status: &bad}
	requireFieldError(t, in.Validate(), "status")
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var verrs *validate.Errors
	require.ErrorAs(t, err, &verrs)
	for _, f := range verrs.Fields() {
		if f.Field == field {
			return
		}
	}
	t.Fatalf("no error for field %s in %v", field, verrs.Fields())
}
