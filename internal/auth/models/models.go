// Package models holds the identity types shared by the authenticators and
// the session store.
package models

import (
	"strings"
	"time"

	id "milsabores/pkg/domain"
	dErrors "milsabores/pkg/domain-errors"
	"milsabores/pkg/email"
)

// Role is the account role reported by the Authentication service.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// ParseRole accepts the canonical roles plus the legacy "cliente" spelling
// still emitted by older accounts.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "customer", "cliente":
		return RoleCustomer, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown role")
}

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// Identity is the authenticated customer. BirthDate is optional; without it
// no age-based benefit applies.
type Identity struct {
	ID        id.UserID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	BirthDate *Date     `json:"birthDate,omitempty"`
}

// Validate checks the fields a persisted or remote identity must carry.
func (i Identity) Validate() error {
	if i.ID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "identity id is required")
	}
	if !email.IsValid(i.Email) {
		return dErrors.New(dErrors.CodeValidation, "identity email is invalid")
	}
	if !i.Role.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "identity role is invalid")
	}
	return nil
}

// Clone returns a copy that shares no pointers with i.
func (i Identity) Clone() Identity {
	if i.BirthDate != nil {
		d := *i.BirthDate
		i.BirthDate = &d
	}
	return i
}

// AgeOn returns the identity's age on t, or false when no birth date is known.
func (i Identity) AgeOn(t time.Time) (int, bool) {
	if i.BirthDate == nil {
		return 0, false
	}
	return i.BirthDate.AgeOn(t), true
}

type Credentials struct {
	Email    string
	Password string
}

// Registration is a sign-up request. A blank Name is derived from the email.
type Registration struct {
	Name      string
	Email     string
	Password  string
	BirthDate *Date
}

// Normalize trims input and fills the derived display name.
func (r Registration) Normalize() Registration {
	r.Email = email.Normalize(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		r.Name = email.DeriveDisplayName(r.Email)
	}
	return r
}

func (r Registration) Validate() error {
	if !email.IsValid(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

// AuthResult is what an authenticator hands back on success.
type AuthResult struct {
	Identity Identity
	Token    string
}
