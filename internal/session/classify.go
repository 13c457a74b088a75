package session

import (
	"strings"
	"time"

	"milsabores/internal/auth/models"
	"milsabores/internal/pricing"
	"milsabores/pkg/email"
)

// Classifier derives the discount class of an identity. Rules apply in
// order: admin role, student email domain, senior age, then regular.
type Classifier struct {
	StudentDomain string
	SeniorAge     int
}

func DefaultClassifier() Classifier {
	return Classifier{StudentDomain: "duoc.cl", SeniorAge: 60}
}

// Classify is pure: the result depends only on identity and asOf.
func (c Classifier) Classify(identity models.Identity, asOf time.Time) pricing.DiscountClass {
	if identity.Role == models.RoleAdmin {
		return pricing.ClassAdmin
	}
	if c.StudentDomain != "" && email.Domain(identity.Email) == strings.ToLower(c.StudentDomain) {
		return pricing.ClassStudent
	}
	if age, ok := identity.AgeOn(asOf); ok && age >= c.SeniorAge {
		return pricing.ClassSenior
	}
	return pricing.ClassRegular
}
