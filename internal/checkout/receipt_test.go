package checkout

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milsabores/internal/auth/models"
	"milsabores/internal/cart"
	"milsabores/internal/pricing"
	id "milsabores/pkg/domain"
	dErrors "milsabores/pkg/domain-errors"
	"milsabores/pkg/money"
	"milsabores/pkg/testutil"
)

var issuedAt = testutil.Date(2026, time.October, 14).Add(15 * time.Hour)

func lines() []cart.LineItem {
	return []cart.LineItem{
		{ProductCode: "A", UnitPrice: 1000, Quantity: 2, Name: "Tartaleta"},
		{ProductCode: "B", UnitPrice: 2000, Quantity: 1, Name: "Mousse"},
	}
}

func senior() *models.Identity {
	return &models.Identity{
		ID:        id.NewUserID(),
		Name:      "Usuario Mayor",
		Email:     "mayor@gmail.com",
		Role:      models.RoleCustomer,
		BirthDate: &models.Date{Year: 1950, Month: time.January, Day: 1},
	}
}

func TestProcessSeniorScenario(t *testing.T) {
	identity := senior()
	r := Process(lines(), identity, pricing.ClassSenior, issuedAt)

	assert.Equal(t, money.Money(4000), r.Subtotal())
	assert.Equal(t, money.Money(2000), r.DiscountAmount())
	assert.Equal(t, money.Money(2000), r.Total())
	assert.True(t, decimal.RequireFromString("0.5").Equal(r.DiscountRate()))
	assert.Equal(t, pricing.ClassSenior, r.DiscountClass())
	assert.Equal(t, issuedAt, r.IssuedAt())
	assert.Equal(t, "Usuario Mayor", r.CustomerLabel())
	assert.False(t, r.ID().IsNil())

	customer, ok := r.CustomerID()
	require.True(t, ok)
	assert.Equal(t, identity.ID, customer)
}

func TestProcessGuest(t *testing.T) {
	r := Process(lines(), nil, pricing.ClassRegular, issuedAt)

	assert.Equal(t, GuestLabel, r.CustomerLabel())
	_, ok := r.CustomerID()
	assert.False(t, ok)
	assert.Equal(t, r.Subtotal(), r.Total())
	assert.Zero(t, r.DiscountAmount())
}

func TestProcessUnnamedCustomerIsLabelledByEmail(t *testing.T) {
	identity := senior()
	identity.Name = ""
	r := Process(lines(), identity, pricing.ClassSenior, issuedAt)
	assert.Equal(t, "mayor@gmail.com", r.CustomerLabel())
}

func TestReceiptIsIndependentOfItsInputs(t *testing.T) {
	items := lines()
	identity := senior()
	r := Process(items, identity, pricing.ClassSenior, issuedAt)

	items[0].Quantity = 99
	items[1].UnitPrice = 1
	identity.ID = id.NewUserID()

	assert.Equal(t, 2, r.Items()[0].Quantity)
	assert.Equal(t, money.Money(4000), r.Subtotal())
	customer, _ := r.CustomerID()
	assert.NotEqual(t, identity.ID, customer)

	got := r.Items()
	got[0].Name = "changed"
	assert.Equal(t, "Tartaleta", r.Items()[0].Name)
}

func TestProcessPanicsOnEmptyItems(t *testing.T) {
	assert.Panics(t, func() { Process(nil, nil, pricing.ClassRegular, issuedAt) })
	assert.Panics(t, func() { Process([]cart.LineItem{}, nil, pricing.ClassRegular, issuedAt) })
}

func TestReceiptJSON(t *testing.T) {
	original := Process(lines(), senior(), pricing.ClassSenior, issuedAt)

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"customerLabel":"Usuario Mayor"`)
	assert.Contains(t, string(data), `"productCode":"A"`)

	var restored Receipt
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, original.ID(), restored.ID())
	assert.True(t, original.IssuedAt().Equal(restored.IssuedAt()))
	assert.Equal(t, original.Items(), restored.Items())
	assert.Equal(t, original.Total(), restored.Total())
	assert.True(t, original.DiscountRate().Equal(restored.DiscountRate()))

	t.Run("incomplete receipts are rejected", func(t *testing.T) {
		var r Receipt
		err := json.Unmarshal([]byte(`{"id":"`+id.NewReceiptID().String()+`","items":[]}`), &r)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
