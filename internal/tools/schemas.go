package tools

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/satkam/partsbot/internal/llm"
)

// SearchProductsInput defines input for search_products.
type SearchProductsInput struct {
	Keyword      string `json:"keyword,omitempty" jsonschema_description:"Free-text keyword matched against product name and description"`
	Code         string `json:"code,omitempty" jsonschema_description:"Exact product code, e.g. BP-TOY-001"`
	Brand        string `json:"brand,omitempty" jsonschema_description:"Part brand to filter by, e.g. Bosch"`
	Category     string `json:"category,omitempty" jsonschema_description:"Part category to filter by, e.g. brake"`
	VehicleMake  string `json:"vehicle_make,omitempty" jsonschema_description:"Vehicle make to filter by, e.g. Toyota"`
	VehicleModel string `json:"vehicle_model,omitempty" jsonschema_description:"Vehicle model to filter by, e.g. Corolla"`
	PartNumber   string `json:"part_number,omitempty" jsonschema_description:"Manufacturer part number to filter by"`
	Limit        int    `json:"limit,omitempty" jsonschema_description:"Maximum results to return (1-20, default 10)"`
}

// SearchWorkshopsInput defines input for search_workshops.
type SearchWorkshopsInput struct {
	City     string `json:"city,omitempty" jsonschema_description:"City to filter by, e.g. Kathmandu"`
	District string `json:"district,omitempty" jsonschema_description:"District to filter by"`
	Zone     string `json:"zone,omitempty" jsonschema_description:"Zone or area to filter by"`
	Keyword  string `json:"keyword,omitempty" jsonschema_description:"Free-text keyword matched against workshop name and specialty"`
	Limit    int    `json:"limit,omitempty" jsonschema_description:"Maximum results to return (1-10, default 5)"`
}

// AddToCartInput defines input for add_to_cart.
type AddToCartInput struct {
	ProductCode string `json:"product_code" jsonschema_description:"Exact code of the product to add, from a prior search result"`
	Quantity    int    `json:"quantity" jsonschema_description:"Units to add, must be a positive integer"`
}

// ViewCartInput defines input for view_cart. No parameters.
type ViewCartInput struct{}

// PlaceOrderInput defines input for place_order.
type PlaceOrderInput struct {
	Notes string `json:"notes,omitempty" jsonschema_description:"Optional delivery notes from the customer"`
}

// CheckOrderStatusInput defines input for check_order_status.
type CheckOrderStatusInput struct {
	OrderNumber string `json:"order_number" jsonschema_description:"The order number to look up, e.g. ORD-20250131-4821"`
}

// GetMyOrdersInput defines input for get_my_orders.
type GetMyOrdersInput struct {
	Limit int `json:"limit,omitempty" jsonschema_description:"Maximum orders to return (default 5)"`
}

// Definitions returns the tool definitions advertised to the model, one
// per Kind, with schemas derived from the input structs.
func Definitions() ([]llm.ToolDef, error) {
	searchProducts, err := jsonschema.For[SearchProductsInput](nil)
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", NameSearchProducts, err)
	}
	searchWorkshops, err := jsonschema.For[SearchWorkshopsInput](nil)
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", NameSearchWorkshops, err)
	}
	addToCart, err := jsonschema.For[AddToCartInput](nil)
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", NameAddToCart, err)
	}
	viewCart, err := jsonschema.For[ViewCartInput](nil)
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", NameViewCart, err)
	}
	placeOrder, err := jsonschema.For[PlaceOrderInput](nil)
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", NamePlaceOrder, err)
	}
	checkStatus, err := jsonschema.For[CheckOrderStatusInput](nil)
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", NameCheckOrderStatus, err)
	}
	myOrders, err := jsonschema.For[GetMyOrdersInput](nil)
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", NameGetMyOrders, err)
	}

	return []llm.ToolDef{
		{
			Name:        NameSearchProducts,
			Description: "Search the spare parts catalog by any combination of keyword, code, brand, category, vehicle make, vehicle model or part number. Returns matching products with prices and availability.",
			InputSchema: searchProducts,
		},
		{
			Name:        NameSearchWorkshops,
			Description: "Find partner workshops by city, district, zone or keyword.",
			InputSchema: searchWorkshops,
		},
		{
			Name:        NameAddToCart,
			Description: "Add a product to the customer's cart by product code. Adding the same code again increases the quantity.",
			InputSchema: addToCart,
		},
		{
			Name:        NameViewCart,
			Description: "Show the current cart contents with subtotal, discount and total.",
			InputSchema: viewCart,
		},
		{
			Name:        NamePlaceOrder,
			Description: "Place an order for everything in the cart. Only registered customers can place orders.",
			InputSchema: placeOrder,
		},
		{
			Name:        NameCheckOrderStatus,
			Description: "Look up the status of an order by its order number.",
			InputSchema: checkStatus,
		},
		{
			Name:        NameGetMyOrders,
			Description: "List the customer's most recent orders.",
			InputSchema: myOrders,
		},
	}, nil
}
