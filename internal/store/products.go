package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const productColumns = `id, product_code, name, description, category, brand,
	vehicle_make, vehicle_model, part_number, unit_price, stock_quantity,
	reorder_point, min_order_quantity, delivery_days, is_active`

// defaultProductLimit caps product search results.
const defaultProductLimit = 20

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.Category, &p.Brand,
		&p.VehicleMake, &p.VehicleModel, &p.PartNumber, &p.UnitPrice, &p.StockQty,
		&p.ReorderPoint, &p.MinOrderQty, &p.DeliveryDays, &p.Active)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchProducts queries active products by any combination of filters.
// Substring matches are case-insensitive; product code matches exactly.
func (s *Store) SearchProducts(ctx context.Context, f ProductFilter) ([]Product, error) {
	var (
		conds = []string{"is_active"}
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	like := func(col, v string) {
		conds = append(conds, col+" ILIKE "+arg("%"+v+"%"))
	}

	if f.VehicleMake != "" {
		like("vehicle_make", f.VehicleMake)
	}
	if f.VehicleModel != "" {
		like("vehicle_model", f.VehicleModel)
	}
	if f.Category != "" {
		like("category", f.Category)
	}
	if f.Brand != "" {
		like("brand", f.Brand)
	}
	if f.PartNumber != "" {
		like("part_number", f.PartNumber)
	}
	if f.Code != "" {
		conds = append(conds, "product_code = "+arg(f.Code))
	}
	if f.Keyword != "" {
		kw := arg("%" + f.Keyword + "%")
		conds = append(conds, "(name ILIKE "+kw+" OR description ILIKE "+kw+")")
	}

	limit := f.Limit
	if limit <= 0 || limit > defaultProductLimit {
		limit = defaultProductLimit
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY name LIMIT ` + arg(limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// GetProductByCode fetches one product by its unique code.
func (s *Store) GetProductByCode(ctx context.Context, code string) (*Product, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE product_code = $1`, code)
	p, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", code, wrapNotFound(err))
	}
	return p, nil
}

// GetProduct fetches one product by id.
func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, wrapNotFound(err))
	}
	return p, nil
}

// ListLowStockProducts returns active products at or below their reorder
// point, most depleted first.
func (s *Store) ListLowStockProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE is_active AND stock_quantity IS NOT NULL AND stock_quantity <= reorder_point
		 ORDER BY stock_quantity ASC`)
	if err != nil {
		return nil, fmt.Errorf("list low stock products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CreateProduct inserts a product record.
func (s *Store) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO products (product_code, name, description, category, brand,
			vehicle_make, vehicle_model, part_number, unit_price, stock_quantity,
			reorder_point, min_order_quantity, delivery_days, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, TRUE)
		 RETURNING `+productColumns,
		p.Code, p.Name, p.Description, p.Category, p.Brand, p.VehicleMake,
		p.VehicleModel, p.PartNumber, p.UnitPrice, p.StockQty, p.ReorderPoint,
		p.MinOrderQty, p.DeliveryDays)
	created, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

// UpdateProduct updates mutable product fields.
func (s *Store) UpdateProduct(ctx context.Context, p *Product) (*Product, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE products SET name = $2, description = $3, category = $4, brand = $5,
			vehicle_make = $6, vehicle_model = $7, part_number = $8, unit_price = $9,
			stock_quantity = $10, reorder_point = $11, min_order_quantity = $12,
			delivery_days = $13, updated_at = now()
		 WHERE id = $1
		 RETURNING `+productColumns,
		p.ID, p.Name, p.Description, p.Category, p.Brand, p.VehicleMake,
		p.VehicleModel, p.PartNumber, p.UnitPrice, p.StockQty, p.ReorderPoint,
		p.MinOrderQty, p.DeliveryDays)
	updated, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("update product %s: %w", p.ID, wrapNotFound(err))
	}
	return updated, nil
}

// DeactivateProduct soft-deletes a product.
func (s *Store) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate product %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ProductStats summarizes the active catalog for the admin API.
type ProductStats struct {
	Total      int            `json:"total_products"`
	ByCategory map[string]int `json:"by_category"`
	ByBrand    map[string]int `json:"by_brand"`
}

// GetProductStats counts active products by category and brand.
func (s *Store) GetProductStats(ctx context.Context) (*ProductStats, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT COALESCE(NULLIF(category, ''), 'Unknown'),
		        COALESCE(NULLIF(brand, ''), 'Unknown')
		 FROM products WHERE is_active`)
	if err != nil {
		return nil, fmt.Errorf("product stats: %w", err)
	}
	defer rows.Close()

	stats := &ProductStats{
		ByCategory: make(map[string]int),
		ByBrand:    make(map[string]int),
	}
	for rows.Next() {
		var category, brand string
		if err := rows.Scan(&category, &brand); err != nil {
			return nil, fmt.Errorf("scan product stats: %w", err)
		}
		stats.Total++
		stats.ByCategory[category]++
		stats.ByBrand[brand]++
	}
	return stats, rows.Err()
}
