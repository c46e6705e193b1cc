package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AliGanji14/cost-management/internal/core"
)

// ExpenseUpdate carries partial changes. Nil fields keep the stored value;
// ClearCategory removes the category link and wins over CategoryID.
type ExpenseUpdate struct {
	Description   *string
	Amount        *core.Money
	Date          *core.Date
	CategoryID    *int64
	ClearCategory bool
	ReceiptPath   *string
}

// ExpenseFilter narrows ListExpenses. Zero values mean "no constraint".
// From and To are inclusive calendar bounds.
type ExpenseFilter struct {
	UserID     int64
	CategoryID *int64
	From       core.Date
	To         core.Date
	Search     string
	Limit      int
	Offset     int
}

const expenseColumns = `id, user_id, category_id, description, amount_cents,
	expense_date, receipt_path, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e        core.Expense
		category sql.NullInt64
		date     string
	)
	err := row.Scan(&e.ID, &e.UserID, &category, &e.Description, &e.Amount.Cents,
		&date, &e.ReceiptPath, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return core.Expense{}, err
	}
	if category.Valid {
		e.CategoryID = &category.Int64
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse expense date: %w", err)
	}
	e.Date = d
	return e, nil
}

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (user_id, category_id, description, amount_cents,
			expense_date, receipt_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, nullInt64(e.CategoryID), e.Description, e.Amount.Cents,
		e.Date.String(), e.ReceiptPath, now, now)
	if err != nil {
		return core.Expense{}, storeErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now
	return e, nil
}

func (s *Store) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, storeErr(err)
	}
	return e, nil
}

func (s *Store) ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE 1 = 1`
	var args []any
	if f.UserID != 0 {
		query += " AND user_id = ?"
		args = append(args, f.UserID)
	}
	if f.CategoryID != nil {
		query += " AND category_id = ?"
		args = append(args, *f.CategoryID)
	}
	if !f.From.IsZero() {
		query += " AND expense_date >= ?"
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		query += " AND expense_date <= ?"
		args = append(args, f.To.String())
	}
	if f.Search != "" {
		query += " AND description LIKE ?"
		args = append(args, "%"+f.Search+"%")
	}
	query += " ORDER BY expense_date DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (s *Store) UpdateExpense(ctx context.Context, id int64, u ExpenseUpdate) (core.Expense, error) {
	var amount sql.NullInt64
	if u.Amount != nil {
		amount = sql.NullInt64{Int64: u.Amount.Cents, Valid: true}
	}
	var date sql.NullString
	if u.Date != nil {
		date = sql.NullString{String: u.Date.String(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE expenses SET
			description = COALESCE(?, description),
			amount_cents = COALESCE(?, amount_cents),
			expense_date = COALESCE(?, expense_date),
			receipt_path = COALESCE(?, receipt_path),
			category_id = CASE WHEN ? THEN NULL ELSE COALESCE(?, category_id) END,
			updated_at = ?
		WHERE id = ?`,
		nullString(u.Description), amount, date, nullString(u.ReceiptPath),
		u.ClearCategory, nullInt64(u.CategoryID), time.Now().UTC(), id)
	if err != nil {
		return core.Expense{}, storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Expense{}, err
	}
	if n == 0 {
		return core.Expense{}, core.ErrNotFound
	}
	return s.GetExpense(ctx, id)
}

// SumExpenses totals spend for a user inside the half-open window
// [w.Start, w.End). A nil categoryID sums across all of the user's
// expenses, categorized or not.
func (s *Store) SumExpenses(ctx context.Context, userID int64, categoryID *int64, w core.Window) (core.Money, error) {
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		WHERE user_id = ? AND expense_date >= ? AND expense_date < ?`
	args := []any{userID, w.Start.String(), w.End.String()}
	if categoryID != nil {
		query += " AND category_id = ?"
		args = append(args, *categoryID)
	}

	var cents int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&cents); err != nil {
		return core.Money{}, storeErr(err)
	}
	return core.Money{Cents: cents}, nil
}
