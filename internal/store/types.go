package store

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a resolved business entity tied to a phone number.
type Customer struct {
	ID          uuid.UUID
	Code        string
	Name        string
	Phone       string
	City        string
	Grade       string
	DiscountPct float64
	CreditLimit float64
	Balance     float64
	Active      bool
}

// Product is one catalog entry.
// StockQty is nil when the inventory signal is unknown for this product.
type Product struct {
	ID           uuid.UUID
	Code         string
	Name         string
	Description  string
	Category     string
	Brand        string
	VehicleMake  string
	VehicleModel string
	PartNumber   string
	UnitPrice    float64
	StockQty     *int
	ReorderPoint int
	MinOrderQty  int
	DeliveryDays *int
	Active       bool
}

// Workshop is a repair workshop/garage record.
type Workshop struct {
	ID        uuid.UUID
	Name      string
	OwnerName string
	Phone     string
	Address   string
	City      string
	District  string
	Zone      string
	Active    bool
}

// Session is one persisted conversation session row.
// Context is the raw JSON context blob; its typed shape lives in
// internal/session.
type Session struct {
	ID           uuid.UUID
	Phone        string
	CustomerID   *uuid.UUID
	State        string
	Context      []byte
	Active       bool
	StartedAt    time.Time
	LastActivity time.Time
	EndedAt      *time.Time
}

// Message is one logged conversation turn.
type Message struct {
	ID         uuid.UUID
	SessionID  uuid.UUID
	Phone      string
	CustomerID *uuid.UUID
	Role       string
	Text       string
	CreatedAt  time.Time
}

// Conversation roles for Message.Role.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Order is a placed order with its lines.
type Order struct {
	ID            uuid.UUID
	Number        string
	CustomerCode  string
	OrderDate     time.Time
	Total         float64
	Status        string
	PaymentStatus string
	Lines         []OrderLine
}

// OrderLine mirrors one cart line at time of order creation.
type OrderLine struct {
	ProductCode string
	Name        string
	Quantity    int
	UnitPrice   float64
	LineTotal   float64
}

// Setting is one bot_settings row. Type is one of "string", "number",
// "boolean" or "json"; Value holds the raw text representation.
type Setting struct {
	Key   string
	Type  string
	Value string
}

// ProductFilter narrows a product search. Zero-value fields are ignored.
// Code matches exactly; everything else is a case-insensitive substring.
type ProductFilter struct {
	VehicleMake  string
	VehicleModel string
	Category     string
	Code         string
	Brand        string
	PartNumber   string
	Keyword      string
	Limit        int
}

// WorkshopFilter narrows a workshop search. Zero-value fields are ignored.
type WorkshopFilter struct {
	City     string
	District string
	Zone     string
	Keyword  string
	Limit    int
}
