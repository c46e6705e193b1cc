package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/AliGanji14/cost-management/internal/core"
	"github.com/AliGanji14/cost-management/internal/storage"
)

// Evaluate reports where a budget stands on the given date: the active
// window, the spend accumulated inside it, the remaining allowance and
// whether the limit is blown. A reference date before the budget's start
// yields an inactive status rather than an error.
func (s *BudgetService) Evaluate(ctx context.Context, budgetID int64, asOf core.Date) (core.BudgetStatus, error) {
	b, err := s.storage.GetBudget(ctx, budgetID)
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("get budget: %w", err)
	}
	return s.evaluate(ctx, b, asOf)
}

func (s *BudgetService) evaluate(ctx context.Context, b core.Budget, asOf core.Date) (core.BudgetStatus, error) {
	calculator, err := GetWindowCalculator(b.Period)
	if err != nil {
		return core.BudgetStatus{}, err
	}

	window, ok := calculator.WindowAt(b.StartDate, asOf)
	if !ok {
		return core.BudgetStatus{
			BudgetID: b.ID,
			Active:   false,
			Limit:    b.Amount,
		}, nil
	}

	spent, err := s.storage.SumExpenses(ctx, b.UserID, b.CategoryID, window)
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("sum expenses: %w", err)
	}

	return core.BudgetStatus{
		BudgetID:  b.ID,
		Active:    true,
		Window:    window,
		Limit:     b.Amount,
		Spent:     spent,
		Remaining: b.Amount.Sub(spent),
		Overrun:   spent.Cents > b.Amount.Cents,
	}, nil
}

// EvaluateAll evaluates every budget belonging to a user as of the given
// date. Budgets are checked concurrently; results keep the ListBudgets
// order.
func (s *BudgetService) EvaluateAll(ctx context.Context, userID int64, asOf core.Date) ([]core.BudgetStatus, error) {
	budgets, err := s.storage.ListBudgets(ctx, storage.BudgetFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	statuses := make([]core.BudgetStatus, len(budgets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, b := range budgets {
		g.Go(func() error {
			status, err := s.evaluate(gctx, b, asOf)
			if err != nil {
				return fmt.Errorf("budget %d: %w", b.ID, err)
			}
			statuses[i] = status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overruns := 0
	for _, st := range statuses {
		if st.Overrun {
			overruns++
		}
	}
	slog.InfoContext(ctx, "Budgets evaluated",
		"user_id", userID,
		"as_of", asOf.String(),
		"count", len(statuses),
		"overruns", overruns)
	return statuses, nil
}
