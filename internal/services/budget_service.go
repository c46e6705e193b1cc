package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AliGanji14/cost-management/internal/core"
	"github.com/AliGanji14/cost-management/internal/storage"
)

// defaultEvalConcurrency bounds how many budgets EvaluateAll checks at
// once when no explicit limit is configured.
const defaultEvalConcurrency = 4

// BudgetService manages budget definitions and evaluates them against
// recorded spending.
type BudgetService struct {
	storage     *storage.Store
	concurrency int
}

func NewBudgetService(storage *storage.Store, concurrency int) *BudgetService {
	if concurrency <= 0 {
		concurrency = defaultEvalConcurrency
	}
	return &BudgetService{
		storage:     storage,
		concurrency: concurrency,
	}
}

func (s *BudgetService) Create(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	created, err := s.storage.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget created",
		"budget_id", created.ID,
		"user_id", created.UserID,
		"period", string(created.Period),
		"amount_cents", created.Amount.Cents)
	return created, nil
}

func (s *BudgetService) Get(ctx context.Context, id int64) (core.Budget, error) {
	b, err := s.storage.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (s *BudgetService) List(ctx context.Context, f storage.BudgetFilter) ([]core.Budget, error) {
	budgets, err := s.storage.ListBudgets(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

func (s *BudgetService) Update(ctx context.Context, id int64, u storage.BudgetUpdate) (core.Budget, error) {
	if u.Amount != nil && u.Amount.Cents <= 0 {
		return core.Budget{}, core.ErrInvalidAmount
	}
	if u.Period != nil {
		if _, err := core.ParsePeriod(string(*u.Period)); err != nil {
			return core.Budget{}, err
		}
	}

	updated, err := s.storage.UpdateBudget(ctx, id, u)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	return updated, nil
}

// Delete removes the budget. Returns false when the budget does not
// exist; that is not an error.
func (s *BudgetService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.storage.DeleteBudget(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete budget: %w", err)
	}
	if deleted {
		slog.InfoContext(ctx, "Budget deleted", "budget_id", id)
	}
	return deleted, nil
}
