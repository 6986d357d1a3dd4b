package cart

import (
	"errors"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestCart_Add_AccumulatesExistingLine(t *testing.T) {
	t.Parallel()

	pads := Snapshot{ProductCode: "BRK-TOY-001", Name: "Brake Pads Front", UnitPrice: 2500}

	c, err := Cart{}.Add(pads, 2)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	c, err = c.Add(pads, 3)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if len(c) != 1 {
		t.Fatalf("len(cart) = %d, want 1 line for repeated product code", len(c))
	}
	if c[0].Quantity != 5 {
		t.Errorf("Quantity = %d, want 5", c[0].Quantity)
	}
}

func TestCart_Add_InvalidQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		qty  int
	}{
		{name: "zero", qty: 0},
		{name: "negative", qty: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Cart{}.Add(Snapshot{ProductCode: "X"}, tt.qty)
			if !errors.Is(err, ErrInvalidQuantity) {
				t.Errorf("Add(qty=%d) error = %v, want ErrInvalidQuantity", tt.qty, err)
			}
		})
	}
}

func TestCart_Add_DoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	orig, err := Cart{}.Add(Snapshot{ProductCode: "A", UnitPrice: 10}, 1)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if _, err := orig.Add(Snapshot{ProductCode: "A"}, 4); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if orig[0].Quantity != 1 {
		t.Errorf("original cart mutated: Quantity = %d, want 1", orig[0].Quantity)
	}
}

func TestCart_Summarize(t *testing.T) {
	t.Parallel()

	c := Cart{
		{ProductCode: "A", UnitPrice: 100, Quantity: 2},
		{ProductCode: "B", UnitPrice: 50, Quantity: 1},
	}

	s := c.Summarize(10)

	if s.Subtotal != 250 {
		t.Errorf("Subtotal = %v, want 250", s.Subtotal)
	}
	if s.Discount != 25 {
		t.Errorf("Discount = %v, want 25", s.Discount)
	}
	if s.Total != 225 {
		t.Errorf("Total = %v, want 225", s.Total)
	}
	if s.ItemCount != 2 {
		t.Errorf("ItemCount = %d, want 2", s.ItemCount)
	}
}

func TestCart_Summarize_ZeroDiscount(t *testing.T) {
	t.Parallel()

	carts := []Cart{
		{},
		{{ProductCode: "A", UnitPrice: 99.99, Quantity: 3}},
		{{ProductCode: "A", UnitPrice: 1, Quantity: 1}, {ProductCode: "B", UnitPrice: 2, Quantity: 7}},
	}

	for _, c := range carts {
		s := c.Summarize(0)
		if s.Total != s.Subtotal {
			t.Errorf("Summarize(0): Total = %v, Subtotal = %v, want equal", s.Total, s.Subtotal)
		}
		if s.Discount != 0 {
			t.Errorf("Summarize(0): Discount = %v, want 0", s.Discount)
		}
	}
}

func TestCart_Summarize_DeliveryEstimate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cart Cart
		want *int
	}{
		{
			name: "max across items",
			cart: Cart{
				{ProductCode: "A", Quantity: 1, DeliveryDays: intPtr(3)},
				{ProductCode: "B", Quantity: 1, DeliveryDays: intPtr(7)},
				{ProductCode: "C", Quantity: 1, DeliveryDays: intPtr(5)},
			},
			want: intPtr(7),
		},
		{
			name: "nil estimates ignored",
			cart: Cart{
				{ProductCode: "A", Quantity: 1},
				{ProductCode: "B", Quantity: 1, DeliveryDays: intPtr(2)},
			},
			want: intPtr(2),
		},
		{
			name: "absent when no item specifies one",
			cart: Cart{{ProductCode: "A", Quantity: 1}},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.cart.Summarize(0).DeliveryDays
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("DeliveryDays = %d, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("DeliveryDays = nil, want %d", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("DeliveryDays = %d, want %d", *got, *tt.want)
			}
		})
	}
}

func TestCart_Clear(t *testing.T) {
	t.Parallel()

	c := Cart{{ProductCode: "A", Quantity: 2}}
	if got := c.Clear(); len(got) != 0 {
		t.Errorf("Clear() len = %d, want 0", len(got))
	}
}

func TestRoundMoney(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want float64
	}{
		{in: 2.345, want: 2.35},
		{in: 2.344, want: 2.34},
		{in: 2.5, want: 2.5},
		{in: 0.005, want: 0.01},
		{in: 100, want: 100},
	}

	for _, tt := range tests {
		if got := RoundMoney(tt.in); got != tt.want {
			t.Errorf("RoundMoney(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
