package pricing

import "github.com/shopspring/decimal"

// DiscountClass is the customer category that decides the discount rate. It
// is derived from the identity on demand and never stored.
type DiscountClass string

const (
	ClassAdmin   DiscountClass = "admin"
	ClassSenior  DiscountClass = "senior"
	ClassStudent DiscountClass = "student"
	ClassRegular DiscountClass = "regular"
)

var seniorRate = decimal.RequireFromString("0.50")

// DiscountRate maps a class to its rate. Only seniors get a discount;
// unknown classes get none.
func DiscountRate(class DiscountClass) decimal.Decimal {
	if class == ClassSenior {
		return seniorRate
	}
	return decimal.Zero
}

func (c DiscountClass) IsValid() bool {
	switch c {
	case ClassAdmin, ClassSenior, ClassStudent, ClassRegular:
		return true
	}
	return false
}

// Benefit is the customer-facing label for the class.
func (c DiscountClass) Benefit() string {
	switch c {
	case ClassAdmin:
		return "Administrador"
	case ClassSenior:
		return "Usuario Mayor · 50% de descuento por edad"
	case ClassStudent:
		return "Estudiante Duoc · Torta de cumpleaños gratis"
	default:
		return "Usuario Regular · Descuentos con códigos y promociones"
	}
}
