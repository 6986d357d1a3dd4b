// Package catalog centralizes the stock policy shared by product search
// and cart mutation: the coarse availability signal exposed to
// conversations, and the orderability checks applied before a product
// enters a cart.
//
// Raw stock counts never leave this package toward the conversation.
package catalog

import (
	"errors"
	"fmt"

	"github.com/satkam/partsbot/internal/store"
)

// Sentinel errors returned by CheckOrderable. They are reported to the
// model as structured tool results, never raised further up.
var (
	// ErrOutOfStock indicates the product's stock signal is non-positive.
	ErrOutOfStock = errors.New("out of stock")

	// ErrBelowMinimum indicates the quantity is under the product's
	// minimum-order threshold.
	ErrBelowMinimum = errors.New("below minimum order quantity")
)

// Availability is the three-state stock signal exposed externally in
// place of raw inventory counts.
type Availability string

const (
	// Available means the product is in stock.
	Available Availability = "available"

	// CanSource means the product is not in stock but can be sourced.
	CanSource Availability = "not_in_stock_can_source"

	// Unknown means no inventory signal exists for the product.
	Unknown Availability = "unknown"
)

// Describe returns the conversation wording for the state. Tool results
// and messages use this so the phrasing stays in one place.
func (a Availability) Describe() string {
	switch a {
	case Available:
		return "in stock"
	case CanSource:
		return "not in stock but can be sourced on request"
	default:
		return "availability unknown"
	}
}

// AvailabilityOf derives the availability signal from a product's stock
// quantity. A nil quantity means the inventory state is untracked.
func AvailabilityOf(stockQty *int) Availability {
	switch {
	case stockQty == nil:
		return Unknown
	case *stockQty > 0:
		return Available
	default:
		return CanSource
	}
}

// CheckOrderable validates that quantity units of the product may enter a
// cart: stock must be positive when tracked, and the quantity must meet
// the product's minimum-order threshold.
func CheckOrderable(p *store.Product, quantity int) error {
	if p.StockQty != nil && *p.StockQty <= 0 {
		return fmt.Errorf("%w: %s", ErrOutOfStock, p.Code)
	}
	if p.MinOrderQty > 0 && quantity < p.MinOrderQty {
		return fmt.Errorf("%w: %s requires at least %d", ErrBelowMinimum, p.Code, p.MinOrderQty)
	}
	return nil
}
