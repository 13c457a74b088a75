// Package archive stores issued receipts.
package archive

import (
	"context"
	"sort"
	"sync"

	"milsabores/internal/checkout"
	id "milsabores/pkg/domain"
)

type InMemoryArchive struct {
	mu       sync.RWMutex
	receipts map[id.ReceiptID]checkout.Receipt
}

func NewInMemoryArchive() *InMemoryArchive {
	return &InMemoryArchive{receipts: make(map[id.ReceiptID]checkout.Receipt)}
}

// Save is idempotent per receipt ID.
func (a *InMemoryArchive) Save(_ context.Context, receipt checkout.Receipt) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.receipts[receipt.ID()]; !ok {
		a.receipts[receipt.ID()] = receipt
	}
	return nil
}

func (a *InMemoryArchive) ListByCustomer(_ context.Context, customer id.UserID) ([]checkout.Receipt, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := []checkout.Receipt{}
	for _, r := range a.receipts {
		if owner, ok := r.CustomerID(); ok && owner == customer {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].IssuedAt().After(out[j].IssuedAt())
	})
	return out, nil
}
