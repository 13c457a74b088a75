// Package checkout freezes a cart into a receipt.
package checkout

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"milsabores/internal/auth/models"
	"milsabores/internal/cart"
	"milsabores/internal/pricing"
	id "milsabores/pkg/domain"
	dErrors "milsabores/pkg/domain-errors"
	"milsabores/pkg/money"
)

// GuestLabel names the customer on receipts issued without a session.
const GuestLabel = "Guest"

// Receipt is the immutable record of one purchase. Its fields are read
// through accessors; Items always returns a fresh copy.
type Receipt struct {
	id            id.ReceiptID
	issuedAt      time.Time
	items         []cart.LineItem
	subtotal      money.Money
	class         pricing.DiscountClass
	rate          decimal.Decimal
	discount      money.Money
	total         money.Money
	customerID    *id.UserID
	customerLabel string
}

// Process prices items for class and freezes the result at now. items must
// not be empty; callers check before calling.
func Process(items []cart.LineItem, identity *models.Identity, class pricing.DiscountClass, now time.Time) Receipt {
	if len(items) == 0 {
		panic("checkout: Process called with no items")
	}
	frozen := make([]cart.LineItem, len(items))
	copy(frozen, items)

	quote := pricing.Price(frozen, class)
	r := Receipt{
		id:            id.NewReceiptID(),
		issuedAt:      now,
		items:         frozen,
		subtotal:      quote.Subtotal,
		class:         quote.Class,
		rate:          quote.Rate,
		discount:      quote.Discount,
		total:         quote.Total,
		customerLabel: GuestLabel,
	}
	if identity != nil {
		customerID := identity.ID
		r.customerID = &customerID
		r.customerLabel = identity.Name
		if r.customerLabel == "" {
			r.customerLabel = identity.Email
		}
	}
	return r
}

func (r Receipt) ID() id.ReceiptID                     { return r.id }
func (r Receipt) IssuedAt() time.Time                  { return r.issuedAt }
func (r Receipt) Subtotal() money.Money                { return r.subtotal }
func (r Receipt) DiscountClass() pricing.DiscountClass { return r.class }
func (r Receipt) DiscountRate() decimal.Decimal        { return r.rate }
func (r Receipt) DiscountAmount() money.Money          { return r.discount }
func (r Receipt) Total() money.Money                   { return r.total }
func (r Receipt) CustomerLabel() string                { return r.customerLabel }

func (r Receipt) Items() []cart.LineItem {
	out := make([]cart.LineItem, len(r.items))
	copy(out, r.items)
	return out
}

// CustomerID reports the signed-in customer, if there was one.
func (r Receipt) CustomerID() (id.UserID, bool) {
	if r.customerID == nil {
		return id.UserID{}, false
	}
	return *r.customerID, true
}

type receiptJSON struct {
	ID             id.ReceiptID          `json:"id"`
	IssuedAt       time.Time             `json:"issuedAt"`
	Items          []cart.LineItem       `json:"items"`
	Subtotal       money.Money           `json:"subtotal"`
	DiscountClass  pricing.DiscountClass `json:"discountClass"`
	DiscountRate   decimal.Decimal       `json:"discountRate"`
	DiscountAmount money.Money           `json:"discountAmount"`
	Total          money.Money           `json:"total"`
	CustomerID     *id.UserID            `json:"customerId,omitempty"`
	CustomerLabel  string                `json:"customerLabel"`
}

func (r Receipt) MarshalJSON() ([]byte, error) {
	return json.Marshal(receiptJSON{
		ID:             r.id,
		IssuedAt:       r.issuedAt,
		Items:          r.items,
		Subtotal:       r.subtotal,
		DiscountClass:  r.class,
		DiscountRate:   r.rate,
		DiscountAmount: r.discount,
		Total:          r.total,
		CustomerID:     r.customerID,
		CustomerLabel:  r.customerLabel,
	})
}

// UnmarshalJSON restores an archived receipt. The stored figures are kept
// as issued; they are not recomputed against current pricing rules.
func (r *Receipt) UnmarshalJSON(data []byte) error {
	var raw receiptJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "receipt is not valid JSON")
	}
	if raw.ID.IsNil() || len(raw.Items) == 0 {
		return dErrors.New(dErrors.CodeValidation, "receipt is missing its id or items")
	}
	if !raw.DiscountClass.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "receipt has an unknown discount class")
	}
	*r = Receipt{
		id:            raw.ID,
		issuedAt:      raw.IssuedAt,
		items:         raw.Items,
		subtotal:      raw.Subtotal,
		class:         raw.DiscountClass,
		rate:          raw.DiscountRate,
		discount:      raw.DiscountAmount,
		total:         raw.Total,
		customerID:    raw.CustomerID,
		customerLabel: raw.CustomerLabel,
	}
	return nil
}
