// Package prompt assembles the system prompt for each conversation turn
// from operator-editable settings, customer identity, cart state and
// recent history.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/satkam/partsbot/internal/cart"
	"github.com/satkam/partsbot/internal/session"
	"github.com/satkam/partsbot/internal/settings"
	"github.com/satkam/partsbot/internal/store"
	"github.com/satkam/partsbot/internal/tools"
)

// toolReminder is the fixed closing section. It does not depend on
// settings so the model always knows its tool surface, even against an
// empty configuration.
var toolReminder = fmt.Sprintf(`Available tools:
- %s: search the spare parts catalog
- %s: find partner workshops
- %s: add a product to the cart
- %s: show the current cart
- %s: place an order for the cart contents
- %s: look up one order by number
- %s: list the customer's recent orders

Always use these tools for catalog, cart and order actions instead of
answering from memory. Report tool failures to the customer honestly.`,
	tools.NameSearchProducts, tools.NameSearchWorkshops, tools.NameAddToCart,
	tools.NameViewCart, tools.NamePlaceOrder, tools.NameCheckOrderStatus,
	tools.NameGetMyOrders)

// Builder assembles system prompts. Stateless; settings are read through
// the cache on every build so operator edits take effect within the TTL.
type Builder struct {
	settings *settings.Cache
}

// NewBuilder creates a prompt builder.
func NewBuilder(cfg *settings.Cache) *Builder {
	return &Builder{settings: cfg}
}

// Build assembles the system prompt for one turn. Sections with no
// content are omitted; the tool reminder is always present, so the
// result is never empty.
func (b *Builder) Build(ctx context.Context, sess *session.Session, history []store.Message) string {
	cfg := b.settings.Get(ctx)

	var sections []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			sections = append(sections, s)
		}
	}

	add(cfg.String(settings.KeyBusinessContext, ""))
	add(customerSection(sess, cfg.String(settings.KeyRegistrationMessage, settings.DefaultRegistrationMessage)))
	add(cartSection(sess))
	add(historySection(history, cfg.Int(settings.KeyMaxHistory, settings.DefaultMaxHistory)))
	add(cfg.String(settings.KeyPersonality, ""))
	add(cfg.String(settings.KeyFlowRules, ""))
	add(cfg.String(settings.KeyRestrictions, ""))
	add(toolReminder)

	return strings.Join(sections, "\n\n")
}

func customerSection(sess *session.Session, registration string) string {
	if sess.Customer == nil {
		s := "The caller is not a registered customer. They may browse products " +
			"and workshops, but they cannot place orders until they register."
		if registration != "" {
			s += " If they ask to order, tell them: " + registration
		}
		return s
	}

	c := sess.Customer
	var sb strings.Builder
	fmt.Fprintf(&sb, "Registered customer: %s (code %s)", c.Name, c.Code)
	if c.City != "" {
		fmt.Fprintf(&sb, ", %s", c.City)
	}
	if c.Grade != "" {
		fmt.Fprintf(&sb, ", grade %s", c.Grade)
	}
	if c.CreditLimit > 0 {
		fmt.Fprintf(&sb, ". Credit limit %.2f, current balance %.2f",
			cart.RoundMoney(c.CreditLimit), cart.RoundMoney(c.Balance))
	}
	if c.DiscountPct > 0 {
		fmt.Fprintf(&sb, ". Their discount of %.0f%% is already applied to cart totals", c.DiscountPct)
	}
	sb.WriteString(".")
	return sb.String()
}

func cartSection(sess *session.Session) string {
	c := sess.Context.Cart
	if len(c) == 0 {
		return ""
	}

	summary := c.Summarize(sess.DiscountPct())
	var sb strings.Builder
	sb.WriteString("Current cart:\n")
	for _, item := range c {
		fmt.Fprintf(&sb, "- %d x %s (%s) at %.2f\n",
			item.Quantity, item.Name, item.ProductCode, cart.RoundMoney(item.UnitPrice))
	}
	fmt.Fprintf(&sb, "Subtotal %.2f", cart.RoundMoney(summary.Subtotal))
	if summary.Discount > 0 {
		fmt.Fprintf(&sb, ", discount %.2f", cart.RoundMoney(summary.Discount))
	}
	fmt.Fprintf(&sb, ", total %.2f.", cart.RoundMoney(summary.Total))
	if summary.DeliveryDays != nil {
		fmt.Fprintf(&sb, " Estimated delivery: up to %d days.", *summary.DeliveryDays)
	}
	sb.WriteString(" Remind the customer they can check out with place_order when ready.")
	return sb.String()
}

func historySection(history []store.Message, limit int) string {
	if len(history) == 0 {
		return ""
	}
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	var sb strings.Builder
	sb.WriteString("Recent conversation:\n")
	for _, m := range history {
		label := "Customer"
		if m.Role == store.RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&sb, "%s: %s\n", label, m.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}
