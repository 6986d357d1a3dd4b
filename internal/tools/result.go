package tools

import (
	"encoding/json"
	"time"

	"github.com/satkam/partsbot/internal/cart"
	"github.com/satkam/partsbot/internal/catalog"
	"github.com/satkam/partsbot/internal/store"
)

// Result is the structured outcome of one tool invocation, serialized
// into the tool_result block returned to the model. Success=false is a
// reportable condition the model should relay, not a system failure.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   int    `json:"count,omitempty"`

	Products  []ProductView  `json:"products,omitempty"`
	Workshops []WorkshopView `json:"workshops,omitempty"`
	Cart      []cart.Item    `json:"cart,omitempty"`
	Summary   *cart.Summary  `json:"summary,omitempty"`
	Order     *OrderView     `json:"order,omitempty"`
	Orders    []OrderView    `json:"orders,omitempty"`
}

// Encode serializes the result for a tool_result block. A result that
// fails to marshal degrades to a generic failure payload.
func (r Result) Encode() string {
	b, err := json.Marshal(r)
	if err != nil {
		return `{"success":false,"message":"internal error"}`
	}
	return string(b)
}

// ProductView is the conversation-facing product shape. It carries the
// coarse availability signal; raw stock counts are never exposed.
// FinalPrice is the list price with the caller's discount applied, and
// equals UnitPrice for unregistered or zero-discount callers.
type ProductView struct {
	Code         string               `json:"code"`
	Name         string               `json:"name"`
	Description  string               `json:"description,omitempty"`
	Category     string               `json:"category,omitempty"`
	Brand        string               `json:"brand,omitempty"`
	UnitPrice    float64              `json:"unit_price"`
	DiscountPct  float64              `json:"discount_percentage,omitempty"`
	FinalPrice   float64              `json:"final_price"`
	Availability catalog.Availability `json:"availability"`
	MinOrderQty  int                  `json:"min_order_quantity,omitempty"`
	DeliveryDays *int                 `json:"delivery_days,omitempty"`
}

func viewProduct(p store.Product, discountPct float64) ProductView {
	final := p.UnitPrice
	if discountPct > 0 {
		final = p.UnitPrice * (1 - discountPct/100)
	}
	return ProductView{
		Code:         p.Code,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		Brand:        p.Brand,
		UnitPrice:    cart.RoundMoney(p.UnitPrice),
		DiscountPct:  discountPct,
		FinalPrice:   cart.RoundMoney(final),
		Availability: catalog.AvailabilityOf(p.StockQty),
		MinOrderQty:  p.MinOrderQty,
		DeliveryDays: p.DeliveryDays,
	}
}

// WorkshopView is the conversation-facing workshop shape.
type WorkshopView struct {
	Name     string `json:"name"`
	Owner    string `json:"owner,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	District string `json:"district,omitempty"`
	Zone     string `json:"zone,omitempty"`
}

func viewWorkshop(w store.Workshop) WorkshopView {
	return WorkshopView{
		Name:     w.Name,
		Owner:    w.OwnerName,
		Phone:    w.Phone,
		Address:  w.Address,
		City:     w.City,
		District: w.District,
		Zone:     w.Zone,
	}
}

// OrderView is the conversation-facing order shape.
type OrderView struct {
	Number        string            `json:"order_number"`
	Date          time.Time         `json:"order_date"`
	Total         float64           `json:"total"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status,omitempty"`
	Lines         []store.OrderLine `json:"lines,omitempty"`
}

func viewOrder(o *store.Order) OrderView {
	return OrderView{
		Number:        o.Number,
		Date:          o.OrderDate,
		Total:         cart.RoundMoney(o.Total),
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Lines:         o.Lines,
	}
}
