// Package cart holds the shopping cart: an ordered set of lines keyed by
// product code, and the store that persists it for a tab.
package cart

import (
	"slices"

	id "milsabores/pkg/domain"
	dErrors "milsabores/pkg/domain-errors"
)

// Cart is an immutable value. Every operation returns a new Cart and leaves
// the receiver untouched. A Cart never holds two lines for the same code or
// a line with quantity below one.
type Cart struct {
	items []LineItem
}

// New builds a cart from lines, rejecting any that break the invariants.
func New(items ...LineItem) (Cart, error) {
	seen := make(map[id.ProductCode]bool, len(items))
	for _, item := range items {
		if err := item.validate(); err != nil {
			return Cart{}, err
		}
		if seen[item.ProductCode] {
			return Cart{}, dErrors.New(dErrors.CodeInvariantViolation, "duplicate product code "+item.ProductCode.String())
		}
		seen[item.ProductCode] = true
	}
	if len(items) == 0 {
		return Cart{}, nil
	}
	return Cart{items: slices.Clone(items)}, nil
}

func (c Cart) index(code id.ProductCode) int {
	return slices.IndexFunc(c.items, func(l LineItem) bool { return l.ProductCode == code })
}

// Add increments the line for p by one, or appends a new line with
// quantity one. The existing line keeps its original price and snapshots.
func (c Cart) Add(p Product) (Cart, error) {
	if err := p.Validate(); err != nil {
		return c, err
	}
	next := slices.Clone(c.items)
	if i := c.index(p.Code); i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, lineFor(p))
	}
	return Cart{items: next}, nil
}

// Decrement removes one unit of code, dropping the line at zero. Unknown
// codes leave the cart unchanged.
func (c Cart) Decrement(code id.ProductCode) Cart {
	i := c.index(code)
	if i < 0 {
		return c
	}
	if c.items[i].Quantity <= 1 {
		return c.Remove(code)
	}
	next := slices.Clone(c.items)
	next[i].Quantity--
	return Cart{items: next}
}

// Remove drops the line for code regardless of quantity.
func (c Cart) Remove(code id.ProductCode) Cart {
	i := c.index(code)
	if i < 0 {
		return c
	}
	if len(c.items) == 1 {
		return Cart{}
	}
	next := slices.Clone(c.items)
	return Cart{items: slices.Delete(next, i, i+1)}
}

// Without subtracts sold from c line by line. Lines and units that are not
// in sold are kept, so only what sold accounts for leaves the cart.
func (c Cart) Without(sold Cart) Cart {
	next := make([]LineItem, 0, len(c.items))
	for _, line := range c.items {
		if s, ok := sold.Get(line.ProductCode); ok {
			line.Quantity -= s.Quantity
		}
		if line.Quantity > 0 {
			next = append(next, line)
		}
	}
	if len(next) == 0 {
		return Cart{}
	}
	return Cart{items: next}
}

// Items returns a copy of the lines in insertion order.
func (c Cart) Items() []LineItem {
	return slices.Clone(c.items)
}

func (c Cart) Get(code id.ProductCode) (LineItem, bool) {
	if i := c.index(code); i >= 0 {
		return c.items[i], true
	}
	return LineItem{}, false
}

// Len is the number of distinct lines.
func (c Cart) Len() int {
	return len(c.items)
}

func (c Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// TotalQuantity is the number of units across all lines.
func (c Cart) TotalQuantity() int {
	total := 0
	for _, l := range c.items {
		total += l.Quantity
	}
	return total
}

// Equal compares lines in order.
func (c Cart) Equal(o Cart) bool {
	return slices.Equal(c.items, o.items)
}
