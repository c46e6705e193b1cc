package services

import (
	"context"
	"errors"
	"testing"

	"github.com/AliGanji14/cost-management/internal/core"
	"github.com/AliGanji14/cost-management/internal/storage"
)

func newServiceStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestExpenseServiceCreateValidates(t *testing.T) {
	store := newServiceStore(t)
	users := NewUserService(store)
	expenses := NewExpenseService(store)
	ctx := context.Background()

	user, err := users.Create(ctx, core.User{
		Username:   "ada",
		Email:      "ada@example.com",
		Credential: "hashed-secret",
		Active:     true,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	tests := []struct {
		name    string
		expense core.Expense
		wantErr error
	}{
		{
			name: "valid",
			expense: core.Expense{
				UserID:      user.ID,
				Description: "coffee",
				Amount:      core.Money{Cents: 350},
				Date:        core.NewDate(2024, 1, 15),
			},
		},
		{
			name: "zero amount is valid",
			expense: core.Expense{
				UserID: user.ID,
				Amount: core.Money{Cents: 0},
				Date:   core.NewDate(2024, 1, 15),
			},
		},
		{
			name: "missing user",
			expense: core.Expense{
				Amount: core.Money{Cents: 100},
				Date:   core.NewDate(2024, 1, 15),
			},
			wantErr: core.ErrConstraintViolation,
		},
		{
			name: "negative amount",
			expense: core.Expense{
				UserID: user.ID,
				Amount: core.Money{Cents: -100},
				Date:   core.NewDate(2024, 1, 15),
			},
			wantErr: core.ErrConstraintViolation,
		},
		{
			name: "missing date",
			expense: core.Expense{
				UserID: user.ID,
				Amount: core.Money{Cents: 100},
			},
			wantErr: core.ErrConstraintViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := expenses.Create(ctx, tt.expense)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Create() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpenseServiceUpdateRejectsNegativeAmount(t *testing.T) {
	store := newServiceStore(t)
	users := NewUserService(store)
	expenses := NewExpenseService(store)
	ctx := context.Background()

	user, err := users.Create(ctx, core.User{
		Username:   "ada",
		Email:      "ada@example.com",
		Credential: "hashed-secret",
		Active:     true,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	e, err := expenses.Create(ctx, core.Expense{
		UserID: user.ID,
		Amount: core.Money{Cents: 100},
		Date:   core.NewDate(2024, 1, 15),
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	bad := core.Money{Cents: -1}
	_, err = expenses.Update(ctx, e.ID, storage.ExpenseUpdate{Amount: &bad})
	if !errors.Is(err, core.ErrConstraintViolation) {
		t.Errorf("Update() error = %v, want constraint violation", err)
	}
}

func TestExpenseServiceTagRoundTrip(t *testing.T) {
	store := newServiceStore(t)
	users := NewUserService(store)
	taxonomy := NewTaxonomyService(store)
	expenses := NewExpenseService(store)
	ctx := context.Background()

	user, err := users.Create(ctx, core.User{
		Username:   "ada",
		Email:      "ada@example.com",
		Credential: "hashed-secret",
		Active:     true,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	e, err := expenses.Create(ctx, core.Expense{
		UserID: user.ID,
		Amount: core.Money{Cents: 100},
		Date:   core.NewDate(2024, 1, 15),
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	tag, err := taxonomy.CreateTag(ctx, core.Tag{Name: "urgent"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}

	if err := expenses.AttachTag(ctx, e.ID, tag.ID); err != nil {
		t.Fatalf("AttachTag() error = %v", err)
	}

	tags, err := expenses.Tags(ctx, e.ID)
	if err != nil {
		t.Fatalf("Tags() error = %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "urgent" {
		t.Errorf("Tags() = %v, want single urgent tag", tags)
	}

	detached, err := expenses.DetachTag(ctx, e.ID, tag.ID)
	if err != nil {
		t.Fatalf("DetachTag() error = %v", err)
	}
	if !detached {
		t.Error("DetachTag() = false, want true")
	}
}
