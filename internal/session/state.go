package session

import (
	"milsabores/internal/auth/models"
	"milsabores/internal/pricing"
)

// State is a point-in-time view of the session. A nil Identity means no one
// is signed in; guests price as regular customers.
type State struct {
	Identity *models.Identity
	Token    string
	Class    pricing.DiscountClass
}

func (s State) Authenticated() bool {
	return s.Identity != nil
}

func unauthenticated() State {
	return State{Class: pricing.ClassRegular}
}
