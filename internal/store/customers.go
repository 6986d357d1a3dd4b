package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const customerColumns = `id, customer_code, name, phone, city, customer_grade,
	base_discount_percentage, credit_limit, balance_lcy, is_active`

func scanCustomer(row interface{ Scan(...any) error }) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Phone, &c.City, &c.Grade,
		&c.DiscountPct, &c.CreditLimit, &c.Balance, &c.Active)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCustomerByPhone resolves a customer by exact phone match.
// Returns ErrNotFound when no active customer has that phone; callers
// treat that as an unregistered identity, not a failure.
func (s *Store) GetCustomerByPhone(ctx context.Context, phone string) (*Customer, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE phone = $1 AND is_active`, phone)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("get customer by phone: %w", wrapNotFound(err))
	}
	return c, nil
}

// GetCustomer fetches a customer by id.
func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("get customer %s: %w", id, wrapNotFound(err))
	}
	return c, nil
}

// ListCustomers returns active customers ordered by name.
func (s *Store) ListCustomers(ctx context.Context, limit int) ([]Customer, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE is_active ORDER BY name LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// CreateCustomer inserts a customer record.
func (s *Store) CreateCustomer(ctx context.Context, c *Customer) (*Customer, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO customers (customer_code, name, phone, city, customer_grade,
			base_discount_percentage, credit_limit, balance_lcy, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		 RETURNING `+customerColumns,
		c.Code, c.Name, c.Phone, c.City, c.Grade, c.DiscountPct, c.CreditLimit, c.Balance)
	created, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

// UpdateCustomer updates mutable customer fields.
func (s *Store) UpdateCustomer(ctx context.Context, c *Customer) (*Customer, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE customers SET name = $2, phone = $3, city = $4, customer_grade = $5,
			base_discount_percentage = $6, credit_limit = $7, balance_lcy = $8,
			updated_at = now()
		 WHERE id = $1
		 RETURNING `+customerColumns,
		c.ID, c.Name, c.Phone, c.City, c.Grade, c.DiscountPct, c.CreditLimit, c.Balance)
	updated, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("update customer %s: %w", c.ID, wrapNotFound(err))
	}
	return updated, nil
}

// DeactivateCustomer soft-deletes a customer.
func (s *Store) DeactivateCustomer(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE customers SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate customer %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
