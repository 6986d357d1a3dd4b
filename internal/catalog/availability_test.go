package catalog

import (
	"errors"
	"testing"

	"github.com/satkam/partsbot/internal/store"
)

func intPtr(n int) *int { return &n }

func TestAvailabilityOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stockQty *int
		want     Availability
	}{
		{name: "positive stock", stockQty: intPtr(12), want: Available},
		{name: "zero stock", stockQty: intPtr(0), want: CanSource},
		{name: "negative stock", stockQty: intPtr(-3), want: CanSource},
		{name: "untracked", stockQty: nil, want: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := AvailabilityOf(tt.stockQty); got != tt.want {
				t.Errorf("AvailabilityOf(%v) = %q, want %q", tt.stockQty, got, tt.want)
			}
		})
	}
}

func TestAvailabilityDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		avail Availability
		want  string
	}{
		{Available, "in stock"},
		{CanSource, "not in stock but can be sourced on request"},
		{Unknown, "availability unknown"},
		{Availability("garbage"), "availability unknown"},
	}
	for _, tt := range tests {
		if got := tt.avail.Describe(); got != tt.want {
			t.Errorf("%q.Describe() = %q, want %q", tt.avail, got, tt.want)
		}
	}
}

func TestCheckOrderable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		product  store.Product
		quantity int
		wantErr  error
	}{
		{
			name:     "in stock, above minimum",
			product:  store.Product{Code: "A", StockQty: intPtr(10), MinOrderQty: 2},
			quantity: 5,
		},
		{
			name:     "untracked stock is orderable",
			product:  store.Product{Code: "B"},
			quantity: 1,
		},
		{
			name:     "out of stock",
			product:  store.Product{Code: "C", StockQty: intPtr(0)},
			quantity: 1,
			wantErr:  ErrOutOfStock,
		},
		{
			name:     "below minimum",
			product:  store.Product{Code: "D", StockQty: intPtr(10), MinOrderQty: 4},
			quantity: 3,
			wantErr:  ErrBelowMinimum,
		},
		{
			name:     "exactly minimum",
			product:  store.Product{Code: "E", StockQty: intPtr(10), MinOrderQty: 4},
			quantity: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckOrderable(&tt.product, tt.quantity)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("CheckOrderable() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckOrderable() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
