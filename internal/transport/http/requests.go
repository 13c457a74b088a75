package httptransport

import (
	"strings"

	"milsabores/internal/auth/models"
	"milsabores/internal/cart"
	id "milsabores/pkg/domain"
	dErrors "milsabores/pkg/domain-errors"
	"milsabores/pkg/money"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}

type RegisterRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	BirthDate string `json:"birthDate,omitempty"`

	birthDate *models.Date
}

// Validate parses the optional birth date; the session store validates the
// rest.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if raw := strings.TrimSpace(r.BirthDate); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			return err
		}
		r.birthDate = &d
	}
	return nil
}

// AddItemRequest carries the catalog snapshot of the product being added.
type AddItemRequest struct {
	Code      string `json:"productCode"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	ImageRef  string `json:"imageRef,omitempty"`
}

func (r *AddItemRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return r.product().Validate()
}

func (r *AddItemRequest) product() cart.Product {
	return cart.Product{
		Code:      id.ProductCode(strings.TrimSpace(r.Code)),
		Name:      strings.TrimSpace(r.Name),
		UnitPrice: money.Money(r.UnitPrice),
		ImageRef:  r.ImageRef,
	}
}
