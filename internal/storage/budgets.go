package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AliGanji14/cost-management/internal/core"
)

// BudgetUpdate carries partial changes. Nil fields keep the stored value;
// ClearCategory turns a scoped budget into an overall one.
type BudgetUpdate struct {
	Amount        *core.Money
	Period        *core.Period
	StartDate     *core.Date
	CategoryID    *int64
	ClearCategory bool
}

// BudgetFilter narrows ListBudgets. Zero values mean "no constraint".
type BudgetFilter struct {
	UserID     int64
	CategoryID *int64
	Period     core.Period
}

const budgetColumns = `id, user_id, category_id, amount_cents, period, start_date`

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b        core.Budget
		category sql.NullInt64
		period   string
		start    string
	)
	err := row.Scan(&b.ID, &b.UserID, &category, &b.Amount.Cents, &period, &start)
	if err != nil {
		return core.Budget{}, err
	}
	if category.Valid {
		b.CategoryID = &category.Int64
	}
	b.Period = core.Period(period)
	d, err := core.ParseDate(start)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse budget start date: %w", err)
	}
	b.StartDate = d
	return b, nil
}

func (s *Store) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, category_id, amount_cents, period, start_date)
		VALUES (?, ?, ?, ?, ?)`,
		b.UserID, nullInt64(b.CategoryID), b.Amount.Cents, string(b.Period), b.StartDate.String())
	if err != nil {
		return core.Budget{}, storeErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, err
	}
	b.ID = id
	return b, nil
}

func (s *Store) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	b, err := scanBudget(row)
	if err != nil {
		return core.Budget{}, storeErr(err)
	}
	return b, nil
}

func (s *Store) ListBudgets(ctx context.Context, f BudgetFilter) ([]core.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE 1 = 1`
	var args []any
	if f.UserID != 0 {
		query += " AND user_id = ?"
		args = append(args, f.UserID)
	}
	if f.CategoryID != nil {
		query += " AND category_id = ?"
		args = append(args, *f.CategoryID)
	}
	if f.Period != "" {
		query += " AND period = ?"
		args = append(args, string(f.Period))
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// DeleteBudget removes the budget and reports whether one existed.
// Nothing references budgets, so no cascade runs.
func (s *Store) DeleteBudget(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return false, storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) UpdateBudget(ctx context.Context, id int64, u BudgetUpdate) (core.Budget, error) {
	var amount sql.NullInt64
	if u.Amount != nil {
		amount = sql.NullInt64{Int64: u.Amount.Cents, Valid: true}
	}
	var period sql.NullString
	if u.Period != nil {
		period = sql.NullString{String: string(*u.Period), Valid: true}
	}
	var start sql.NullString
	if u.StartDate != nil {
		start = sql.NullString{String: u.StartDate.String(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE budgets SET
			amount_cents = COALESCE(?, amount_cents),
			period = COALESCE(?, period),
			start_date = COALESCE(?, start_date),
			category_id = CASE WHEN ? THEN NULL ELSE COALESCE(?, category_id) END
		WHERE id = ?`,
		amount, period, start, u.ClearCategory, nullInt64(u.CategoryID), id)
	if err != nil {
		return core.Budget{}, storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Budget{}, err
	}
	if n == 0 {
		return core.Budget{}, core.ErrNotFound
	}
	return s.GetBudget(ctx, id)
}
