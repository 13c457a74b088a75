package domain

import (
	"strings"
	"unicode"

	"github.com/google/uuid"

	dErrors "milsabores/pkg/domain-errors"
)

// Typed identifiers keep user, tab and receipt IDs from being mixed up at
// compile time. All of them serialise as canonical UUID strings.
type (
	UserID    uuid.UUID
	TabID     uuid.UUID
	ReceiptID uuid.UUID
)

// maxProductCodeLen bounds catalog codes accepted at trust boundaries.
const maxProductCodeLen = 64

func parseUUID(kind, s string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return parsed, nil
}

// ParseUserID parses a non-nil user ID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user id", s)
	return UserID(u), err
}

// ParseTabID parses a non-nil tab ID.
func ParseTabID(s string) (TabID, error) {
	u, err := parseUUID("tab id", s)
	return TabID(u), err
}

// ParseReceiptID parses a non-nil receipt ID.
func ParseReceiptID(s string) (ReceiptID, error) {
	u, err := parseUUID("receipt id", s)
	return ReceiptID(u), err
}

// NewUserID, NewTabID and NewReceiptID mint random identifiers.
func NewUserID() UserID       { return UserID(uuid.New()) }
func NewTabID() TabID         { return TabID(uuid.New()) }
func NewReceiptID() ReceiptID { return ReceiptID(uuid.New()) }

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id TabID) String() string     { return uuid.UUID(id).String() }
func (id ReceiptID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id TabID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ReceiptID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = UserID(u)
	return nil
}

func (id TabID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *TabID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = TabID(u)
	return nil
}

func (id ReceiptID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *ReceiptID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = ReceiptID(u)
	return nil
}

// ProductCode is the catalog key of a product and the unique key of a cart
// line. Codes are case-sensitive opaque strings.
type ProductCode string

// ParseProductCode trims and validates a catalog code.
func ParseProductCode(s string) (ProductCode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "product code is required")
	}
	if len(s) > maxProductCodeLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "product code is too long")
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "product code contains invalid characters")
		}
	}
	return ProductCode(s), nil
}

func (c ProductCode) String() string { return string(c) }

// IsValid reports whether the code would survive ParseProductCode unchanged.
func (c ProductCode) IsValid() bool {
	parsed, err := ParseProductCode(string(c))
	return err == nil && parsed == c
}
