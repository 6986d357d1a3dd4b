// Package tools implements the closed set of model-invocable tools and
// the dispatcher that executes them against the store and session state.
package tools

// Kind identifies one tool in the closed set. The zero value is
// KindUnknown; tool names arriving off the wire are mapped once at the
// decode boundary by KindOf and everything downstream switches on Kind.
type Kind int

const (
	KindUnknown Kind = iota
	KindSearchProducts
	KindSearchWorkshops
	KindAddToCart
	KindViewCart
	KindPlaceOrder
	KindCheckOrderStatus
	KindGetMyOrders
)

const (
	NameSearchProducts   = "search_products"
	NameSearchWorkshops  = "search_workshops"
	NameAddToCart        = "add_to_cart"
	NameViewCart         = "view_cart"
	NamePlaceOrder       = "place_order"
	NameCheckOrderStatus = "check_order_status"
	NameGetMyOrders      = "get_my_orders"
)

var kindByName = map[string]Kind{
	NameSearchProducts:   KindSearchProducts,
	NameSearchWorkshops:  KindSearchWorkshops,
	NameAddToCart:        KindAddToCart,
	NameViewCart:         KindViewCart,
	NamePlaceOrder:       KindPlaceOrder,
	NameCheckOrderStatus: KindCheckOrderStatus,
	NameGetMyOrders:      KindGetMyOrders,
}

// KindOf maps a wire tool name to its Kind. Unrecognized names map to
// KindUnknown.
func KindOf(name string) Kind {
	return kindByName[name]
}

// String returns the wire name, or "unknown" for KindUnknown.
func (k Kind) String() string {
	switch k {
	case KindSearchProducts:
		return NameSearchProducts
	case KindSearchWorkshops:
		return NameSearchWorkshops
	case KindAddToCart:
		return NameAddToCart
	case KindViewCart:
		return NameViewCart
	case KindPlaceOrder:
		return NamePlaceOrder
	case KindCheckOrderStatus:
		return NameCheckOrderStatus
	case KindGetMyOrders:
		return NameGetMyOrders
	default:
		return "unknown"
	}
}
