package storage

import (
	"context"
	"time"

	"github.com/AliGanji14/cost-management/internal/core"
)

type TagUpdate struct {
	Name  *string
	Color *string
}

func (s *Store) CreateTag(ctx context.Context, t core.Tag) (core.Tag, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (name, color) VALUES (?, ?)`,
		t.Name, t.Color)
	if err != nil {
		return core.Tag{}, storeErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Tag{}, err
	}
	t.ID = id
	return t, nil
}

func (s *Store) GetTag(ctx context.Context, id int64) (core.Tag, error) {
	var t core.Tag
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, color FROM tags WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Color)
	if err != nil {
		return core.Tag{}, storeErr(err)
	}
	return t, nil
}

// ListTags returns all tags, or those whose name contains q.
func (s *Store) ListTags(ctx context.Context, q string) ([]core.Tag, error) {
	query := `SELECT id, name, color FROM tags`
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

	var tags []core.Tag
	for rows.Next() {
		var t core.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *Store) UpdateTag(ctx context.Context, id int64, u TagUpdate) (core.Tag, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tags SET
			name = COALESCE(?, name),
			color = COALESCE(?, color)
		WHERE id = ?`,
		nullString(u.Name), nullString(u.Color), id)
	if err != nil {
		return core.Tag{}, storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Tag{}, err
	}
	if n == 0 {
		return core.Tag{}, core.ErrNotFound
	}
	return s.GetTag(ctx, id)
}

// AttachTag links a tag to an expense. Attaching an already linked pair is
// a no-op; a missing expense or tag still fails the foreign key check,
// which OR IGNORE does not swallow.
func (s *Store) AttachTag(ctx context.Context, expenseID, tagID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO expense_tags (expense_id, tag_id, created_at)
		VALUES (?, ?, ?)`,
		expenseID, tagID, time.Now().UTC())
	return storeErr(err)
}

// DetachTag removes the link and reports whether one existed.
func (s *Store) DetachTag(ctx context.Context, expenseID, tagID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM expense_tags WHERE expense_id = ? AND tag_id = ?`,
		expenseID, tagID)
	if err != nil {
		return false, storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) TagsForExpense(ctx context.Context, expenseID int64) ([]core.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.color
		FROM tags t
		JOIN expense_tags et ON et.tag_id = t.id
		WHERE et.expense_id = ?
		ORDER BY t.name`, expenseID)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var tags []core.Tag
	for rows.Next() {
		var t core.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
