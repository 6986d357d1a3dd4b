package store

import (
	"context"
	"fmt"
)

// NewOrder is the input for order creation.
type NewOrder struct {
	Number        string
	CustomerCode  string
	Total         float64
	Status        string
	PaymentStatus string
	Lines         []OrderLine
}

// CreateOrder inserts the order and its lines in one transaction.
func (s *Store) CreateOrder(ctx context.Context, in NewOrder) (*Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin order transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			s.logger.Debug("order transaction rollback (may be already committed)", "error", err)
		}
	}()

	var order Order
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (order_number, customer_id, order_date, total_amount, status, payment_status)
		 VALUES ($1, $2, now(), $3, $4, $5)
		 RETURNING id, order_number, customer_id, order_date, total_amount, status, payment_status`,
		in.Number, in.CustomerCode, in.Total, in.Status, in.PaymentStatus,
	).Scan(&order.ID, &order.Number, &order.CustomerCode, &order.OrderDate,
		&order.Total, &order.Status, &order.PaymentStatus)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, line := range in.Lines {
		if _, err := tx.Exec(ctx,
			`INSERT INTO order_items (order_id, product_code, product_name, quantity, unit_price, line_total)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			order.ID, line.ProductCode, line.Name, line.Quantity, line.UnitPrice, line.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("insert order line %q: %w", line.ProductCode, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}

	order.Lines = in.Lines
	s.logger.Debug("created order", "number", order.Number, "customer", order.CustomerCode, "total", order.Total)
	return &order, nil
}

// GetOrderByNumber fetches an order and its lines by order number.
// Returns ErrNotFound for unknown numbers.
func (s *Store) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	var order Order
	err := s.pool.QueryRow(ctx,
		`SELECT id, order_number, customer_id, order_date, total_amount, status, payment_status
		 FROM orders WHERE order_number = $1`, number,
	).Scan(&order.ID, &order.Number, &order.CustomerCode, &order.OrderDate,
		&order.Total, &order.Status, &order.PaymentStatus)
	if err != nil {
		return nil, fmt.Errorf("get order %q: %w", number, wrapNotFound(err))
	}

	rows, err := s.pool.Query(ctx,
		`SELECT product_code, product_name, quantity, unit_price, line_total
		 FROM order_items WHERE order_id = $1`, order.ID)
	if err != nil {
		return nil, fmt.Errorf("get order lines %q: %w", number, err)
	}
	defer rows.Close()

	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.ProductCode, &line.Name, &line.Quantity,
			&line.UnitPrice, &line.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	return &order, rows.Err()
}

// RecentOrders returns a customer's most recent orders, newest first,
// without lines.
func (s *Store) RecentOrders(ctx context.Context, customerCode string, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, order_number, customer_id, order_date, total_amount, status, payment_status
		 FROM orders WHERE customer_id = $1
		 ORDER BY order_date DESC LIMIT $2`, customerCode, limit)
	if err != nil {
		return nil, fmt.Errorf("recent orders for %s: %w", customerCode, err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Number, &o.CustomerCode, &o.OrderDate,
			&o.Total, &o.Status, &o.PaymentStatus); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListOrders returns the newest orders across all customers for the
// admin API.
func (s *Store) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, order_number, customer_id, order_date, total_amount, status, payment_status
		 FROM orders ORDER BY order_date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Number, &o.CustomerCode, &o.OrderDate,
			&o.Total, &o.Status, &o.PaymentStatus); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateOrderStatus sets the status (and optionally payment status) of an
// order by number.
func (s *Store) UpdateOrderStatus(ctx context.Context, number, status, paymentStatus string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET status = COALESCE(NULLIF($2, ''), status),
			payment_status = COALESCE(NULLIF($3, ''), payment_status),
			updated_at = now()
		 WHERE order_number = $1`, number, status, paymentStatus)
	if err != nil {
		return fmt.Errorf("update order %q: %w", number, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
