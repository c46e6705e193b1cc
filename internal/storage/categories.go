package storage

import (
	"context"

	"github.com/AliGanji14/cost-management/internal/core"
)

type CategoryUpdate struct {
	Name        *string
	Description *string
	Icon        *string
	Color       *string
}

func (s *Store) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, description, icon, color)
		VALUES (?, ?, ?, ?)`,
		c.Name, c.Description, c.Icon, c.Color)
	if err != nil {
		return core.Category{}, storeErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, err
	}
	c.ID = id
	return c, nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, icon, color
		FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.Color)
	if err != nil {
		return core.Category{}, storeErr(err)
	}
	return c, nil
}

// ListCategories returns all categories, or those whose name contains q.
func (s *Store) ListCategories(ctx context.Context, q string) ([]core.Category, error) {
	query := `
		SELECT id, name, description, icon, color
		FROM categories`
	var args []any
	if q != "" {
		query += " WHERE name LIKE ?"
		args = append(args, "%"+q+"%")
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.Color); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) UpdateCategory(ctx context.Context, id int64, u CategoryUpdate) (core.Category, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories SET
			name = COALESCE(?, name),
			description = COALESCE(?, description),
			icon = COALESCE(?, icon),
			color = COALESCE(?, color)
		WHERE id = ?`,
		nullString(u.Name), nullString(u.Description), nullString(u.Icon), nullString(u.Color), id)
	if err != nil {
		return core.Category{}, storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Category{}, err
	}
	if n == 0 {
		return core.Category{}, core.ErrNotFound
	}
	return s.GetCategory(ctx, id)
}
