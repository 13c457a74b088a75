package cart

import (
	"strings"

	id "milsabores/pkg/domain"
	dErrors "milsabores/pkg/domain-errors"
	"milsabores/pkg/money"
)

// Product is the catalog entry being added to the cart.
type Product struct {
	Code      id.ProductCode
	Name      string
	UnitPrice money.Money
	ImageRef  string
}

func (p Product) Validate() error {
	if !p.Code.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "product code is invalid")
	}
	if p.UnitPrice.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, "unit price cannot be negative")
	}
	return nil
}

// LineItem is one cart line. Name and ImageRef are snapshots taken when the
// product was first added; later catalog edits do not change them.
type LineItem struct {
	ProductCode id.ProductCode `json:"productCode"`
	UnitPrice   money.Money    `json:"unitPrice"`
	Quantity    int            `json:"quantity"`
	Name        string         `json:"nameSnapshot"`
	ImageRef    string         `json:"imageRef"`
}

// LineTotal is unit price times quantity.
func (l LineItem) LineTotal() money.Money {
	return l.UnitPrice.Times(l.Quantity)
}

func (l LineItem) validate() error {
	if !l.ProductCode.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "line has an invalid product code")
	}
	if l.Quantity <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "line quantity must be positive")
	}
	if l.UnitPrice.IsNegative() {
		return dErrors.New(dErrors.CodeInvariantViolation, "line price cannot be negative")
	}
	return nil
}

func lineFor(p Product) LineItem {
	return LineItem{
		ProductCode: p.Code,
		UnitPrice:   p.UnitPrice,
		Quantity:    1,
		Name:        strings.TrimSpace(p.Name),
		ImageRef:    p.ImageRef,
	}
}
