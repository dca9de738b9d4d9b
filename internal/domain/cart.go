package domain

import "fmt"

// PendingCartID is the placeholder identity a cart carries before a
// durable identity is assigned.
const PendingCartID = "pending"

// MaxLineQuantity caps a single line item's quantity. Mutations that would
// exceed the cap are rejected rather than wrapped or clamped.
const MaxLineQuantity = 999

// CartLineItem is one cart line: a quantity plus a denormalized snapshot
// of the variant and the product fields needed to render it. Its identity
// for merge and dedup purposes is the variant id.
type CartLineItem struct {
	Quantity int            `json:"quantity"`
	Variant  ProductVariant `json:"productVariant"`
	Product  ProductSummary `json:"product"`
}

// Cart is the display-ready, ephemeral hydration of a StoredCart.
// Invariants: all line items share the cart currency, variant ids are
// unique, and every quantity is at least 1.
type Cart struct {
	ID        string         `json:"id"`
	Currency  string         `json:"currency"`
	LineItems []CartLineItem `json:"lineItems"`
}

func (c Cart) clone() Cart {
	items := make([]CartLineItem, len(c.LineItems))
	copy(items, c.LineItems)
	c.LineItems = items
	return c
}

// AddItem merges the item into the cart. An empty cart adopts the item's
// currency; an existing line for the same variant id has its quantity
// summed. Adding a different currency to a non-empty cart fails and leaves
// the cart unchanged.
func (c Cart) AddItem(item CartLineItem) (Cart, error) {
	if item.Quantity < 1 {
		return c, fmt.Errorf("quantity must be positive, got %d", item.Quantity)
	}
	currency := item.Variant.Price.Currency

	if len(c.LineItems) == 0 {
		if item.Quantity > MaxLineQuantity {
			return c, ErrQuantityTooLarge
		}
		next := c.clone()
		if next.ID == "" {
			next.ID = PendingCartID
		}
		next.Currency = currency
		next.LineItems = []CartLineItem{item}
		return next, nil
	}

	if c.Currency != "" && currency != c.Currency {
		return c, fmt.Errorf("%w: cart is %s, item is %s", ErrCurrencyMismatch, c.Currency, currency)
	}

	next := c.clone()
	if next.Currency == "" {
		next.Currency = currency
	}
	for i, line := range next.LineItems {
		if line.Variant.ID == item.Variant.ID {
			merged := line.Quantity + item.Quantity
			if merged > MaxLineQuantity {
				return c, ErrQuantityTooLarge
			}
			next.LineItems[i].Quantity = merged
			return next, nil
		}
	}
	if item.Quantity > MaxLineQuantity {
		return c, ErrQuantityTooLarge
	}
	next.LineItems = append(next.LineItems, item)
	return next, nil
}

// SetQuantity sets the exact quantity for a variant (not additive). Zero
// or less removes the line; an absent variant id is a no-op.
func (c Cart) SetQuantity(variantID string, quantity int) (Cart, error) {
	if quantity > MaxLineQuantity {
		return c, ErrQuantityTooLarge
	}
	if quantity <= 0 {
		return c.RemoveItem(variantID), nil
	}
	for i, line := range c.LineItems {
		if line.Variant.ID == variantID {
			next := c.clone()
			next.LineItems[i].Quantity = quantity
			return next, nil
		}
	}
	return c, nil
}

// Increment adjusts one line's quantity by delta. Dropping to zero or
// below removes the line; an absent variant id is a no-op.
func (c Cart) Increment(variantID string, delta int) (Cart, error) {
	for i, line := range c.LineItems {
		if line.Variant.ID != variantID {
			continue
		}
		adjusted := line.Quantity + delta
		if adjusted <= 0 {
			return c.RemoveItem(variantID), nil
		}
		if adjusted > MaxLineQuantity {
			return c, ErrQuantityTooLarge
		}
		next := c.clone()
		next.LineItems[i].Quantity = adjusted
		return next, nil
	}
	return c, nil
}

// RemoveItem filters out the line for the variant id. Removing an absent
// id is a no-op, not an error.
func (c Cart) RemoveItem(variantID string) Cart {
	next := c.clone()
	filtered := next.LineItems[:0]
	for _, line := range next.LineItems {
		if line.Variant.ID != variantID {
			filtered = append(filtered, line)
		}
	}
	next.LineItems = filtered
	return next
}

// ItemCount is the sum of quantities over all lines.
func (c Cart) ItemCount() int {
	count := 0
	for _, line := range c.LineItems {
		count += line.Quantity
	}
	return count
}

// Subtotal is the exact sum of price times quantity over all lines.
func (c Cart) Subtotal() (Money, error) {
	if len(c.LineItems) == 0 {
		return Money{Amount: 0, Currency: c.CurrencyOrDefault()}, nil
	}
	totals := make([]Money, 0, len(c.LineItems))
	for _, line := range c.LineItems {
		totals = append(totals, line.Variant.Price.Multiply(line.Quantity))
	}
	return SumMoney(totals)
}

// CurrencyOrDefault resolves the cart's currency: the set currency, else
// the first line's, else the default.
func (c Cart) CurrencyOrDefault() string {
	if c.Currency != "" {
		return c.Currency
	}
	if len(c.LineItems) > 0 {
		return c.LineItems[0].Variant.Price.Currency
	}
	return DefaultCurrency
}

// ToStored strips the cart down to its durable representation.
func (c Cart) ToStored() StoredCart {
	items := make([]StoredItem, 0, len(c.LineItems))
	for _, line := range c.LineItems {
		items = append(items, StoredItem{VariantID: line.Variant.ID, Quantity: line.Quantity})
	}
	return StoredCart{ID: c.ID, Currency: c.Currency, Items: items}
}

// StoredCart is the minimal durable cart: ids and quantities only, so the
// persisted blob stays small and never goes stale. The full Cart is
// re-derived from it against live catalog data on every read.
type StoredCart struct {
	ID       string       `json:"id"`
	Currency string       `json:"currency,omitempty"`
	Items    []StoredItem `json:"items"`
}

// StoredItem keys lines by the external price identifier, matching the
// original cookie blob layout.
type StoredItem struct {
	VariantID string `json:"priceId"`
	Quantity  int    `json:"quantity"`
}

// Normalize re-establishes cart invariants over untrusted stored data:
// non-positive quantities are dropped, duplicate variant ids are merged in
// first-seen order, and quantities are clamped to MaxLineQuantity.
func (s StoredCart) Normalize() StoredCart {
	index := make(map[string]int, len(s.Items))
	items := make([]StoredItem, 0, len(s.Items))
	for _, item := range s.Items {
		if item.VariantID == "" || item.Quantity <= 0 {
			continue
		}
		if at, ok := index[item.VariantID]; ok {
			merged := items[at].Quantity + item.Quantity
			if merged > MaxLineQuantity {
				merged = MaxLineQuantity
			}
			items[at].Quantity = merged
			continue
		}
		if item.Quantity > MaxLineQuantity {
			item.Quantity = MaxLineQuantity
		}
		index[item.VariantID] = len(items)
		items = append(items, item)
	}
	s.Items = items
	return s
}
