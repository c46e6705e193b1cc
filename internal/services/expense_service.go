package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AliGanji14/cost-management/internal/core"
	"github.com/AliGanji14/cost-management/internal/storage"
)

// ExpenseService manages expense records and their tag links.
type ExpenseService struct {
	storage *storage.Store
}

func NewExpenseService(storage *storage.Store) *ExpenseService {
	return &ExpenseService{storage: storage}
}

func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	created, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"expense_id", created.ID,
		"user_id", created.UserID,
		"amount_cents", created.Amount.Cents,
		"date", created.Date.String())
	return created, nil
}

func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Expense, error) {
	e, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (s *ExpenseService) List(ctx context.Context, f storage.ExpenseFilter) ([]core.Expense, error) {
	expenses, err := s.storage.ListExpenses(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (s *ExpenseService) Update(ctx context.Context, id int64, u storage.ExpenseUpdate) (core.Expense, error) {
	if u.Amount != nil && u.Amount.Cents < 0 {
		return core.Expense{}, core.ErrInvalidAmount
	}

	updated, err := s.storage.UpdateExpense(ctx, id, u)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	return updated, nil
}

// Delete removes the expense and its tag links. Returns false when the
// expense does not exist; that is not an error.
func (s *ExpenseService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.storage.DeleteExpense(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	if deleted {
		slog.InfoContext(ctx, "Expense deleted", "expense_id", id)
	}
	return deleted, nil
}

// AttachTag links a tag to an expense. Attaching a tag twice is a no-op.
func (s *ExpenseService) AttachTag(ctx context.Context, expenseID, tagID int64) error {
	if err := s.storage.AttachTag(ctx, expenseID, tagID); err != nil {
		return fmt.Errorf("attach tag: %w", err)
	}
	return nil
}

// DetachTag removes the link and reports whether one existed.
func (s *ExpenseService) DetachTag(ctx context.Context, expenseID, tagID int64) (bool, error) {
	detached, err := s.storage.DetachTag(ctx, expenseID, tagID)
	if err != nil {
		return false, fmt.Errorf("detach tag: %w", err)
	}
	return detached, nil
}

func (s *ExpenseService) Tags(ctx context.Context, expenseID int64) ([]core.Tag, error) {
	tags, err := s.storage.TagsForExpense(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("expense tags: %w", err)
	}
	return tags, nil
}
