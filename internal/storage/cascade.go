package storage

import (
	"context"
	"database/sql"
)

// Deletes run their cascade as explicit ordered statements inside one
// transaction. Each returns false, nil when the target row does not
// exist; the transaction still commits and touches nothing.

// DeleteUser removes the user together with their expenses (and those
// expenses' tag links) and budgets.
func (s *Store) DeleteUser(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM expense_tags
			WHERE expense_id IN (SELECT id FROM expenses WHERE user_id = ?)`, id)
		if err != nil {
			return storeErr(err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE user_id = ?`, id); err != nil {
			return storeErr(err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM budgets WHERE user_id = ?`, id); err != nil {
			return storeErr(err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return storeErr(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// DeleteCategory detaches the category from any expenses referencing it,
// removes budgets scoped to it, then removes the category. Expenses
// survive as uncategorized.
func (s *Store) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE expenses SET category_id = NULL WHERE category_id = ?`, id); err != nil {
			return storeErr(err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM budgets WHERE category_id = ?`, id); err != nil {
			return storeErr(err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return storeErr(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// DeleteTag removes the tag and its expense links. Expenses keep their
// other tags.
func (s *Store) DeleteTag(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM expense_tags WHERE tag_id = ?`, id); err != nil {
			return storeErr(err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
		if err != nil {
			return storeErr(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// DeleteExpense removes the expense and its tag links. Tags themselves
// are untouched.
func (s *Store) DeleteExpense(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM expense_tags WHERE expense_id = ?`, id); err != nil {
			return storeErr(err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
		if err != nil {
			return storeErr(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
