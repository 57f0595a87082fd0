package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sibintb/submanager/internal/models"
)

const userColumns = `id, name, email, password_hash, role`

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role)
	return u, err
}

// CreateUser stores u under a new id. The password must already be hashed.
func (s *Storage) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return models.User{}, err
	}

	u.ID = uuid.NewString()
	if u.Role == "" {
		u.Role = models.RoleUser
	}

	query := `INSERT INTO users (id, name, email, password_hash, role, seq) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.DB.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, s.nextSeq())
	if isUniqueViolation(err) {
		return models.User{}, fmt.Errorf("%s: %w", op, ErrUserExists)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *Storage) readUserBy(ctx context.Context, op, column, value string) (models.User, error) {
	if err := checkCtx(ctx, op); err != nil {
		return models.User{}, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ReadUserByEmail returns the account registered under email.
func (s *Storage) ReadUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.readUserBy(ctx, "storage.ReadUserByEmail", "email", email)
}

// ReadUser returns the account with id.
func (s *Storage) ReadUser(ctx context.Context, id string) (models.User, error) {
	if !validID(id) {
		return models.User{}, fmt.Errorf("%s: %w", "storage.ReadUser", ErrNotFound)
	}
	return s.readUserBy(ctx, "storage.ReadUser", "id", id)
}

// ListUsers returns every account in creation order.
func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "storage.ListUsers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// UpdateUserPassword replaces the password hash of the account with id.
func (s *Storage) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	const op = "storage.UpdateUserPassword"
	return s.execOne(ctx, op, id, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
}

// RemoveUser deletes the account with id.
func (s *Storage) RemoveUser(ctx context.Context, id string) error {
	const op = "storage.RemoveUser"
	return s.execOne(ctx, op, id, `DELETE FROM users WHERE id = $1`, id)
}

// CountUsers returns the number of accounts.
func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	const op = "storage.CountUsers"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// execOne runs a statement that must touch exactly one row.
func (s *Storage) execOne(ctx context.Context, op, id, query string, args ...any) error {
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	if !validID(id) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	result, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
