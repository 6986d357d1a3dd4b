// Package cart implements the pure cart ledger: pricing, discounting and
// delivery-estimate aggregation over an ordered sequence of line items.
//
// The ledger holds no inventory state and performs no I/O. Stock and
// minimum-quantity gating happen in internal/catalog before Add is called,
// using product data fetched fresh from the store.
package cart

import (
	"errors"
	"math"
)

// ErrInvalidQuantity indicates a non-positive quantity after defaults.
var ErrInvalidQuantity = errors.New("invalid quantity")

// Item is one pending purchase line held in session context.
// ProductCode is the unique key within a cart.
type Item struct {
	ProductCode  string  `json:"product_code"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unit_price"`
	Quantity     int     `json:"quantity"`
	DeliveryDays *int    `json:"delivery_days,omitempty"`
}

// Cart is an ordered sequence of line items.
type Cart []Item

// Snapshot is the point-in-time product data captured on a new line.
type Snapshot struct {
	ProductCode  string
	Name         string
	UnitPrice    float64
	DeliveryDays *int
}

// Summary is the derived cart total, never persisted.
// DeliveryDays is the maximum per-item estimate across the cart: the
// slowest item gates the whole order. Nil when no item carries one.
type Summary struct {
	ItemCount    int     `json:"item_count"`
	Subtotal     float64 `json:"subtotal"`
	Discount     float64 `json:"discount"`
	DiscountPct  float64 `json:"discount_percentage"`
	Total        float64 `json:"total"`
	DeliveryDays *int    `json:"delivery_days,omitempty"`
}

// Add returns a new cart with the product added. If the product code is
// already present the quantity accumulates on the existing line; otherwise
// a new line is appended carrying the snapshot's name, price and delivery
// estimate. The receiver is not mutated.
func (c Cart) Add(p Snapshot, quantity int) (Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	next := make(Cart, len(c))
	copy(next, c)

	for i := range next {
		if next[i].ProductCode == p.ProductCode {
			next[i].Quantity += quantity
			return next, nil
		}
	}

	next = append(next, Item{
		ProductCode:  p.ProductCode,
		Name:         p.Name,
		UnitPrice:    p.UnitPrice,
		Quantity:     quantity,
		DeliveryDays: p.DeliveryDays,
	})
	return next, nil
}

// Summarize computes the cart summary for the given discount percentage.
// No rounding happens here; monetary rounding is applied only where
// totals cross the system boundary (see RoundMoney).
func (c Cart) Summarize(discountPct float64) Summary {
	var subtotal float64
	var maxDays *int

	for _, item := range c {
		subtotal += item.UnitPrice * float64(item.Quantity)
		if item.DeliveryDays != nil {
			if maxDays == nil || *item.DeliveryDays > *maxDays {
				d := *item.DeliveryDays
				maxDays = &d
			}
		}
	}

	discount := subtotal * discountPct / 100
	return Summary{
		ItemCount:    len(c),
		Subtotal:     subtotal,
		Discount:     discount,
		DiscountPct:  discountPct,
		Total:        subtotal - discount,
		DeliveryDays: maxDays,
	}
}

// Clear returns an empty cart. Used after a successful checkout.
func (c Cart) Clear() Cart {
	return Cart{}
}

// RoundMoney rounds a monetary value half-up to 2 decimal places.
// Applied consistently wherever totals cross the system boundary
// (presentation and order creation), never inside the ledger.
func RoundMoney(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
