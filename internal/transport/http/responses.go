package httptransport

import (
	"time"

	"milsabores/internal/cart"
	"milsabores/internal/checkout"
	"milsabores/internal/pricing"
	"milsabores/internal/session"
	"milsabores/pkg/money"
)

type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	BirthDate string `json:"birthDate,omitempty"`
}

type SessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *UserResponse `json:"user,omitempty"`
	DiscountClass string        `json:"discountClass"`
	Benefit       string        `json:"benefit"`
}

func toSessionResponse(st session.State) SessionResponse {
	resp := SessionResponse{
		Authenticated: st.Authenticated(),
		DiscountClass: string(st.Class),
		Benefit:       st.Class.Benefit(),
	}
	if st.Identity != nil {
		user := &UserResponse{
			ID:    st.Identity.ID.String(),
			Name:  st.Identity.Name,
			Email: st.Identity.Email,
			Role:  string(st.Identity.Role),
		}
		if st.Identity.BirthDate != nil {
			user.BirthDate = st.Identity.BirthDate.String()
		}
		resp.User = user
	}
	return resp
}

// Amount is a money value with its display form.
type Amount struct {
	Value     int64  `json:"value"`
	Formatted string `json:"formatted"`
}

func amount(m money.Money, f pricing.Formatter) Amount {
	return Amount{Value: m.Int64(), Formatted: f.Format(m)}
}

type LineResponse struct {
	ProductCode string `json:"productCode"`
	Name        string `json:"name"`
	ImageRef    string `json:"imageRef,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   Amount `json:"unitPrice"`
	LineTotal   Amount `json:"lineTotal"`
}

func toLines(items []cart.LineItem, f pricing.Formatter) []LineResponse {
	out := make([]LineResponse, 0, len(items))
	for _, item := range items {
		out = append(out, LineResponse{
			ProductCode: item.ProductCode.String(),
			Name:        item.Name,
			ImageRef:    item.ImageRef,
			Quantity:    item.Quantity,
			UnitPrice:   amount(item.UnitPrice, f),
			LineTotal:   amount(item.LineTotal(), f),
		})
	}
	return out
}

type CartResponse struct {
	Items         []LineResponse `json:"items"`
	Units         int            `json:"units"`
	DiscountClass string         `json:"discountClass"`
	DiscountRate  string         `json:"discountRate"`
	Subtotal      Amount         `json:"subtotal"`
	Discount      Amount         `json:"discount"`
	Total         Amount         `json:"total"`
}

func toCartResponse(items []cart.LineItem, quote pricing.Quote, f pricing.Formatter) CartResponse {
	return CartResponse{
		Items:         toLines(items, f),
		Units:         quote.Units,
		DiscountClass: string(quote.Class),
		DiscountRate:  quote.Rate.String(),
		Subtotal:      amount(quote.Subtotal, f),
		Discount:      amount(quote.Discount, f),
		Total:         amount(quote.Total, f),
	}
}

type ReceiptResponse struct {
	ID            string         `json:"id"`
	IssuedAt      time.Time      `json:"issuedAt"`
	Customer      string         `json:"customer"`
	Items         []LineResponse `json:"items"`
	DiscountClass string         `json:"discountClass"`
	DiscountRate  string         `json:"discountRate"`
	Subtotal      Amount         `json:"subtotal"`
	Discount      Amount         `json:"discount"`
	Total         Amount         `json:"total"`
}

type ReceiptsResponse struct {
	Receipts []ReceiptResponse `json:"receipts"`
}

func toReceiptResponse(r checkout.Receipt, f pricing.Formatter) ReceiptResponse {
	return ReceiptResponse{
		ID:            r.ID().String(),
		IssuedAt:      r.IssuedAt(),
		Customer:      r.CustomerLabel(),
		Items:         toLines(r.Items(), f),
		DiscountClass: string(r.DiscountClass()),
		DiscountRate:  r.DiscountRate().String(),
		Subtotal:      amount(r.Subtotal(), f),
		Discount:      amount(r.DiscountAmount(), f),
		Total:         amount(r.Total(), f),
	}
}
