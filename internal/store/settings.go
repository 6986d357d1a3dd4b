package store

import (
	"context"
	"fmt"
)

// ListSettings reads the full bot_settings table.
func (s *Store) ListSettings(ctx context.Context) ([]Setting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT setting_key, setting_type, setting_value FROM bot_settings`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var out []Setting
	for rows.Next() {
		var st Setting
		if err := rows.Scan(&st.Key, &st.Type, &st.Value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// UpsertSetting inserts or replaces one bot_settings row.
func (s *Store) UpsertSetting(ctx context.Context, st Setting) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO bot_settings (setting_key, setting_type, setting_value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (setting_key)
		 DO UPDATE SET setting_type = EXCLUDED.setting_type,
		               setting_value = EXCLUDED.setting_value,
		               updated_at = now()`,
		st.Key, st.Type, st.Value)
	if err != nil {
		return fmt.Errorf("upsert setting %q: %w", st.Key, err)
	}
	return nil
}
