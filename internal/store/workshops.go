package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const workshopColumns = `id, name, owner_name, phone, address, city, district, zone, is_active`

// defaultWorkshopLimit caps workshop search results.
const defaultWorkshopLimit = 10

func scanWorkshop(row interface{ Scan(...any) error }) (*Workshop, error) {
	var w Workshop
	err := row.Scan(&w.ID, &w.Name, &w.OwnerName, &w.Phone, &w.Address,
		&w.City, &w.District, &w.Zone, &w.Active)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// SearchWorkshops queries active workshops by location and keyword.
func (s *Store) SearchWorkshops(ctx context.Context, f WorkshopFilter) ([]Workshop, error) {
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

	if f.City != "" {
		like("city", f.City)
	}
	if f.District != "" {
		like("district", f.District)
	}
	if f.Zone != "" {
		like("zone", f.Zone)
	}
	if f.Keyword != "" {
		kw := arg("%" + f.Keyword + "%")
		conds = append(conds, "(name ILIKE "+kw+" OR address ILIKE "+kw+" OR owner_name ILIKE "+kw+")")
	}

	limit := f.Limit
	if limit <= 0 || limit > defaultWorkshopLimit {
		limit = defaultWorkshopLimit
	}

	query := `SELECT ` + workshopColumns + ` FROM workshops WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY name LIMIT ` + arg(limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search workshops: %w", err)
	}
	defer rows.Close()

	var out []Workshop
	for rows.Next() {
		w, err := scanWorkshop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workshop: %w", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// GetWorkshop fetches one workshop by id.
func (s *Store) GetWorkshop(ctx context.Context, id uuid.UUID) (*Workshop, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+workshopColumns+` FROM workshops WHERE id = $1`, id)
	w, err := scanWorkshop(row)
	if err != nil {
		return nil, fmt.Errorf("get workshop %s: %w", id, wrapNotFound(err))
	}
	return w, nil
}

// CreateWorkshop inserts a workshop record.
func (s *Store) CreateWorkshop(ctx context.Context, w *Workshop) (*Workshop, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO workshops (name, owner_name, phone, address, city, district, zone, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		 RETURNING `+workshopColumns,
		w.Name, w.OwnerName, w.Phone, w.Address, w.City, w.District, w.Zone)
	created, err := scanWorkshop(row)
	if err != nil {
		return nil, fmt.Errorf("create workshop: %w", err)
	}
	return created, nil
}

// UpdateWorkshop updates mutable workshop fields.
func (s *Store) UpdateWorkshop(ctx context.Context, w *Workshop) (*Workshop, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE workshops SET name = $2, owner_name = $3, phone = $4, address = $5,
			city = $6, district = $7, zone = $8, updated_at = now()
		 WHERE id = $1
		 RETURNING `+workshopColumns,
		w.ID, w.Name, w.OwnerName, w.Phone, w.Address, w.City, w.District, w.Zone)
	updated, err := scanWorkshop(row)
	if err != nil {
		return nil, fmt.Errorf("update workshop %s: %w", w.ID, wrapNotFound(err))
	}
	return updated, nil
}

// DeactivateWorkshop soft-deletes a workshop.
func (s *Store) DeactivateWorkshop(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE workshops SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate workshop %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
