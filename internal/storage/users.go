package storage

import (
	"context"
	"time"

	"github.com/AliGanji14/cost-management/internal/core"
)

// UserUpdate carries partial changes. Nil fields keep the stored value.
type UserUpdate struct {
	Username   *string
	Email      *string
	Credential *string
	Active     *bool
}

func (s *Store) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, credential, active, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.Credential, u.Active, now)
	if err != nil {
		return core.User{}, storeErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, err
	}
	u.ID = id
	u.CreatedAt = now
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, credential, active, created_at
		FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.Credential, &u.Active, &u.CreatedAt)
	if err != nil {
		return core.User{}, storeErr(err)
	}
	return u, nil
}

// ListUsers returns all users, or those whose username contains q.
func (s *Store) ListUsers(ctx context.Context, q string) ([]core.User, error) {
	query := `
		SELECT id, username, email, credential, active, created_at
		FROM users`
	var args []any
	if q != "" {
		query += " WHERE username LIKE ?"
		args = append(args, "%"+q+"%")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Credential, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, id int64, u UserUpdate) (core.User, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			username = COALESCE(?, username),
			email = COALESCE(?, email),
			credential = COALESCE(?, credential),
			active = COALESCE(?, active)
		WHERE id = ?`,
		nullString(u.Username), nullString(u.Email), nullString(u.Credential), nullBool(u.Active), id)
	if err != nil {
		return core.User{}, storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.User{}, err
	}
	if n == 0 {
		return core.User{}, core.ErrNotFound
	}
	return s.GetUser(ctx, id)
}
