// Package cart is the client-side shopping cart and signed-in session. Both
// are held in an injected Storage and written through on every change.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
)

// StorageKey is the key the cart is persisted under.
const StorageKey = "sovereign_cart"

var ErrInvalidQuantity = errors.New("quantity must be positive")

// Entry is a snapshot of a product taken when it was added. Later catalog
// edits do not change it.
type Entry struct {
	ID       string   `json:"_id"`
	Name     string   `json:"name"`
	Price    Price    `json:"price"`
	Images   []string `json:"images,omitempty"`
	Quantity int      `json:"quantity"`
}

// Cart is an ordered list of entries, at most one per product id.
type Cart struct {
	mu      sync.RWMutex
	storage Storage
	entries []Entry
}

// Load rehydrates the cart from storage. Unreadable cart data is logged and
// replaced by an empty cart; only a storage failure is returned.
func Load(storage Storage) (*Cart, error) {
	const op = "cart.Load"

	c := &Cart{storage: storage, entries: []Entry{}}
	raw, ok, err := storage.GetItem(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok || raw == "" {
		return c, nil
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		slog.Warn("could not parse stored cart, starting empty", "op", op, "err", err)
		return c, nil
	}
	for _, e := range entries {
		if e.ID != "" && e.Quantity > 0 {
			c.entries = append(c.entries, e)
		}
	}
	return c, nil
}

// Add puts quantity units of the product in the cart. A product already in
// the cart has its quantity increased.
func (c *Cart) Add(e Entry, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(e.ID); i >= 0 {
		c.entries[i].Quantity += quantity
		return c.save()
	}
	e.Quantity = quantity
	e.Images = append([]string(nil), e.Images...)
	c.entries = append(c.entries, e)
	return c.save()
}

// Remove drops the product from the cart.
func (c *Cart) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return nil
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	return c.save()
}

// UpdateQuantity sets the quantity of a product in the cart. Negative values
// count as zero, and zero removes the entry.
func (c *Cart) UpdateQuantity(id string, quantity int) error {
	if quantity <= 0 {
		return c.Remove(id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return nil
	}
	c.entries[i].Quantity = quantity
	return c.save()
}

// Clear empties the cart.
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = []Entry{}
	return c.save()
}

// Items returns a copy of the entries in insertion order.
func (c *Cart) Items() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Count is the number of units in the cart.
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		n += e.Quantity
	}
	return n
}

// Total is the sum of price times quantity over all entries.
func (c *Cart) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := decimal.Zero
	for _, e := range c.entries {
		total = total.Add(e.Price.Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	return total
}

func (c *Cart) index(id string) int {
	for i, e := range c.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// save must be called with mu held.
func (c *Cart) save() error {
	raw, err := json.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("cart.save: %w", err)
	}
	if err := c.storage.SetItem(StorageKey, string(raw)); err != nil {
		return fmt.Errorf("cart.save: %w", err)
	}
	return nil
}
