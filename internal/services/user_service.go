package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AliGanji14/cost-management/internal/core"
	"github.com/AliGanji14/cost-management/internal/storage"
)

// UserService manages user accounts. Credentials are stored as opaque
// strings; hashing and verification happen upstream.
type UserService struct {
	storage *storage.Store
}

func NewUserService(storage *storage.Store) *UserService {
	return &UserService{storage: storage}
}

func (s *UserService) Create(ctx context.Context, u core.User) (core.User, error) {
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}

	created, err := s.storage.CreateUser(ctx, u)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created",
		"user_id", created.ID,
		"username", created.Username)
	return created, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (core.User, error) {
	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// List returns all users, or those whose username contains q.
func (s *UserService) List(ctx context.Context, q string) ([]core.User, error) {
	users, err := s.storage.ListUsers(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Update(ctx context.Context, id int64, u storage.UserUpdate) (core.User, error) {
	if u.Username != nil && strings.TrimSpace(*u.Username) == "" {
		return core.User{}, core.ErrEmptyUsername
	}
	if u.Email != nil && !strings.Contains(*u.Email, "@") {
		return core.User{}, core.ErrEmptyEmail
	}

	updated, err := s.storage.UpdateUser(ctx, id, u)
	if err != nil {
		return core.User{}, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

// Delete removes the user and everything belonging to them. Returns
// false when the user does not exist; that is not an error.
func (s *UserService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.storage.DeleteUser(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	if deleted {
		slog.InfoContext(ctx, "User deleted", "user_id", id)
	}
	return deleted, nil
}
