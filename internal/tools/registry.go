package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/satkam/partsbot/internal/cart"
	"github.com/satkam/partsbot/internal/catalog"
	"github.com/satkam/partsbot/internal/log"
	"github.com/satkam/partsbot/internal/session"
	"github.com/satkam/partsbot/internal/settings"
	"github.com/satkam/partsbot/internal/store"
)

// Search result caps. Requests beyond the cap are clamped, not rejected.
const (
	defaultProductLimit  = 10
	maxProductLimit      = 20
	defaultWorkshopLimit = 5
	maxWorkshopLimit     = 10
	defaultOrdersLimit   = 5
)

// ProductReader is the catalog surface the dispatcher consumes.
type ProductReader interface {
	SearchProducts(ctx context.Context, f store.ProductFilter) ([]store.Product, error)
	GetProductByCode(ctx context.Context, code string) (*store.Product, error)
}

// WorkshopReader is the workshop directory surface the dispatcher consumes.
type WorkshopReader interface {
	SearchWorkshops(ctx context.Context, f store.WorkshopFilter) ([]store.Workshop, error)
}

// OrderStore is the order surface the dispatcher consumes.
type OrderStore interface {
	CreateOrder(ctx context.Context, in store.NewOrder) (*store.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*store.Order, error)
	RecentOrders(ctx context.Context, customerCode string, limit int) ([]store.Order, error)
}

// Registry executes tool invocations against the store and the caller's
// session. Stateless apart from its collaborators; session state flows
// through the Session argument.
type Registry struct {
	products  ProductReader
	workshops WorkshopReader
	orders    OrderStore
	settings  *settings.Cache
	logger    log.Logger
}

// NewRegistry creates a tool registry.
func NewRegistry(products ProductReader, workshops WorkshopReader, orders OrderStore, cfg *settings.Cache, logger log.Logger) *Registry {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Registry{
		products:  products,
		workshops: workshops,
		orders:    orders,
		settings:  cfg,
		logger:    logger,
	}
}

// Dispatch executes the named tool and returns its structured result.
// Total over its input domain: unknown names, malformed input and
// business-rule rejections all produce a Result, never an error. The
// session is mutated in memory only; the caller persists it after the
// turn.
func (r *Registry) Dispatch(ctx context.Context, name string, input json.RawMessage, sess *session.Session) Result {
	kind := KindOf(name)
	r.logger.Debug("dispatching tool", "tool", kind.String(), "session_id", sess.ID)

	switch kind {
	case KindSearchProducts:
		return r.searchProducts(ctx, input, sess)
	case KindSearchWorkshops:
		return r.searchWorkshops(ctx, input)
	case KindAddToCart:
		return r.addToCart(ctx, input, sess)
	case KindViewCart:
		return r.viewCart(sess)
	case KindPlaceOrder:
		return r.placeOrder(ctx, input, sess)
	case KindCheckOrderStatus:
		return r.checkOrderStatus(ctx, input)
	case KindGetMyOrders:
		return r.getMyOrders(ctx, input, sess)
	default:
		return Result{Success: false, Message: fmt.Sprintf("unknown tool: %s", name)}
	}
}

func (r *Registry) searchProducts(ctx context.Context, input json.RawMessage, sess *session.Session) Result {
	var in SearchProductsInput
	if res, ok := decodeInput(input, &in); !ok {
		return res
	}

	limit := clampLimit(in.Limit, defaultProductLimit, maxProductLimit)
	products, err := r.products.SearchProducts(ctx, store.ProductFilter{
		Keyword:      in.Keyword,
		Code:         in.Code,
		Brand:        in.Brand,
		Category:     in.Category,
		VehicleMake:  in.VehicleMake,
		VehicleModel: in.VehicleModel,
		PartNumber:   in.PartNumber,
		Limit:        limit,
	})
	if err != nil {
		r.logger.Error("product search failed", "error", err)
		return Result{Success: false, Message: "product search is unavailable right now"}
	}
	if len(products) == 0 {
		return Result{Success: true, Message: "no products matched the search"}
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, viewProduct(p, sess.DiscountPct()))
	}
	return Result{Success: true, Count: len(views), Products: views}
}

func (r *Registry) searchWorkshops(ctx context.Context, input json.RawMessage) Result {
	var in SearchWorkshopsInput
	if res, ok := decodeInput(input, &in); !ok {
		return res
	}

	limit := clampLimit(in.Limit, defaultWorkshopLimit, maxWorkshopLimit)
	workshops, err := r.workshops.SearchWorkshops(ctx, store.WorkshopFilter{
		City:     in.City,
		District: in.District,
		Zone:     in.Zone,
		Keyword:  in.Keyword,
		Limit:    limit,
	})
	if err != nil {
		r.logger.Error("workshop search failed", "error", err)
		return Result{Success: false, Message: "workshop search is unavailable right now"}
	}
	if len(workshops) == 0 {
		return Result{Success: true, Message: "no workshops matched the search"}
	}

	views := make([]WorkshopView, 0, len(workshops))
	for _, w := range workshops {
		views = append(views, viewWorkshop(w))
	}
	return Result{Success: true, Count: len(views), Workshops: views}
}

func (r *Registry) addToCart(ctx context.Context, input json.RawMessage, sess *session.Session) Result {
	var in AddToCartInput
	if res, ok := decodeInput(input, &in); !ok {
		return res
	}
	if in.Quantity <= 0 {
		in.Quantity = 1
	}

	product, err := r.products.GetProductByCode(ctx, in.ProductCode)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return Result{Success: false, Message: fmt.Sprintf("product %s not found", in.ProductCode)}
	case err != nil:
		r.logger.Error("product lookup failed", "code", in.ProductCode, "error", err)
		return Result{Success: false, Message: "product lookup is unavailable right now"}
	}

	if err := catalog.CheckOrderable(product, in.Quantity); err != nil {
		switch {
		case errors.Is(err, catalog.ErrOutOfStock):
			return Result{Success: false, Message: fmt.Sprintf("%s is %s", product.Name, catalog.CanSource.Describe())}
		case errors.Is(err, catalog.ErrBelowMinimum):
			return Result{Success: false, Message: fmt.Sprintf("%s has a minimum order quantity of %d", product.Name, product.MinOrderQty)}
		default:
			return Result{Success: false, Message: err.Error()}
		}
	}

	updated, err := sess.Context.Cart.Add(cart.Snapshot{
		ProductCode:  product.Code,
		Name:         product.Name,
		UnitPrice:    product.UnitPrice,
		DeliveryDays: product.DeliveryDays,
	}, in.Quantity)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	sess.Context.Cart = updated

	summary := roundedSummary(updated, sess.DiscountPct())
	return Result{
		Success: true,
		Message: fmt.Sprintf("added %d x %s to the cart", in.Quantity, product.Name),
		Cart:    updated,
		Summary: &summary,
	}
}

func (r *Registry) viewCart(sess *session.Session) Result {
	c := sess.Context.Cart
	if len(c) == 0 {
		return Result{Success: true, Message: "the cart is empty"}
	}
	summary := roundedSummary(c, sess.DiscountPct())
	return Result{Success: true, Count: len(c), Cart: c, Summary: &summary}
}

func (r *Registry) placeOrder(ctx context.Context, input json.RawMessage, sess *session.Session) Result {
	var in PlaceOrderInput
	if res, ok := decodeInput(input, &in); !ok {
		return res
	}

	if sess.Customer == nil {
		msg := r.settings.Get(ctx).String(settings.KeyRegistrationMessage, settings.DefaultRegistrationMessage)
		return Result{Success: false, Message: msg}
	}
	if len(sess.Context.Cart) == 0 {
		return Result{Success: false, Message: "the cart is empty; add products before placing an order"}
	}

	// Re-validate each line against fresh product data; snapshots in the
	// cart may be stale.
	for _, item := range sess.Context.Cart {
		product, err := r.products.GetProductByCode(ctx, item.ProductCode)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return Result{Success: false, Message: fmt.Sprintf("%s is no longer available; please remove it and try again", item.Name)}
		case err != nil:
			r.logger.Error("order validation failed", "code", item.ProductCode, "error", err)
			return Result{Success: false, Message: "order placement is unavailable right now"}
		}
		if err := catalog.CheckOrderable(product, item.Quantity); err != nil {
			return Result{Success: false, Message: fmt.Sprintf("cannot order %s: %v", item.Name, err)}
		}
	}

	summary := sess.Context.Cart.Summarize(sess.DiscountPct())
	lines := make([]store.OrderLine, 0, len(sess.Context.Cart))
	for _, item := range sess.Context.Cart {
		lines = append(lines, store.OrderLine{
			ProductCode: item.ProductCode,
			Name:        item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   cart.RoundMoney(item.UnitPrice),
			LineTotal:   cart.RoundMoney(item.UnitPrice * float64(item.Quantity)),
		})
	}

	order, err := r.orders.CreateOrder(ctx, store.NewOrder{
		Number:        newOrderNumber(time.Now()),
		CustomerCode:  sess.Customer.Code,
		Total:         cart.RoundMoney(summary.Total),
		Status:        "pending",
		PaymentStatus: "unpaid",
		Lines:         lines,
	})
	if err != nil {
		r.logger.Error("order creation failed", "customer", sess.Customer.Code, "error", err)
		return Result{Success: false, Message: "order placement failed; please try again"}
	}

	sess.Context.Cart = sess.Context.Cart.Clear()
	view := viewOrder(order)
	r.logger.Info("order placed", "number", order.Number, "customer", order.CustomerCode, "total", order.Total)
	return Result{
		Success: true,
		Message: fmt.Sprintf("order %s placed", order.Number),
		Order:   &view,
	}
}

func (r *Registry) checkOrderStatus(ctx context.Context, input json.RawMessage) Result {
	var in CheckOrderStatusInput
	if res, ok := decodeInput(input, &in); !ok {
		return res
	}
	if in.OrderNumber == "" {
		return Result{Success: false, Message: "order_number is required"}
	}

	order, err := r.orders.GetOrderByNumber(ctx, in.OrderNumber)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return Result{Success: false, Message: fmt.Sprintf("no order found with number %s", in.OrderNumber)}
	case err != nil:
		r.logger.Error("order lookup failed", "number", in.OrderNumber, "error", err)
		return Result{Success: false, Message: "order lookup is unavailable right now"}
	}

	view := viewOrder(order)
	return Result{Success: true, Order: &view}
}

func (r *Registry) getMyOrders(ctx context.Context, input json.RawMessage, sess *session.Session) Result {
	var in GetMyOrdersInput
	if res, ok := decodeInput(input, &in); !ok {
		return res
	}

	if sess.Customer == nil {
		msg := r.settings.Get(ctx).String(settings.KeyRegistrationMessage, settings.DefaultRegistrationMessage)
		return Result{Success: false, Message: msg}
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultOrdersLimit
	}
	orders, err := r.orders.RecentOrders(ctx, sess.Customer.Code, limit)
	if err != nil {
		r.logger.Error("order history failed", "customer", sess.Customer.Code, "error", err)
		return Result{Success: false, Message: "order history is unavailable right now"}
	}
	if len(orders) == 0 {
		return Result{Success: true, Message: "no orders found"}
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, viewOrder(&orders[i]))
	}
	return Result{Success: true, Count: len(views), Orders: views}
}

// decodeInput unmarshals a tool input blob. An empty blob decodes to the
// zero input.
func decodeInput(input json.RawMessage, dst any) (Result, bool) {
	if len(input) == 0 {
		return Result{}, true
	}
	if err := json.Unmarshal(input, dst); err != nil {
		return Result{Success: false, Message: "invalid tool input"}, false
	}
	return Result{}, true
}

func clampLimit(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// newOrderNumber builds an order number like ORD-20250131-4F2A9C1E.
// The date keys the order for humans; the suffix guarantees uniqueness.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

func roundedSummary(c cart.Cart, discountPct float64) cart.Summary {
	s := c.Summarize(discountPct)
	s.Subtotal = cart.RoundMoney(s.Subtotal)
	s.Discount = cart.RoundMoney(s.Discount)
	s.Total = cart.RoundMoney(s.Total)
	return s
}
