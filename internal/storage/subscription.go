package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sibintb/submanager/internal/models"
)

const subscriptionColumns = `id, name, price, cycle, category, next_payment, active, currency`

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row scanner) (models.Subscription, error) {
	var sub models.Subscription
	err := row.Scan(&sub.ID, &sub.Name, &sub.Price, &sub.Cycle, &sub.Category,
		&sub.NextPayment, &sub.Active, &sub.Currency)
	return sub, err
}

// CreateSubscription stores sub under a new id and returns the stored record.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	const op = "storage.CreateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return models.Subscription{}, err
	}

	sub.ID = uuid.NewString()
	sub.Currency = sub.CurrencyOrDefault()

	query := `INSERT INTO subscriptions (id, name, price, cycle, category, next_payment, active, currency, seq)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.DB.ExecContext(ctx, query,
		sub.ID, sub.Name, sub.Price, sub.Cycle, sub.Category, sub.NextPayment, sub.Active, sub.Currency, s.nextSeq())
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ReadSubscription returns the record with id.
func (s *Storage) ReadSubscription(ctx context.Context, id string) (models.Subscription, error) {
	const op = "storage.ReadSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return models.Subscription{}, err
	}

	if !validID(id) {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// UpdateSubscription applies patch to the record with id and returns the
// result.
func (s *Storage) UpdateSubscription(ctx context.Context, id string, patch models.SubscriptionPatch) (models.Subscription, error) {
	const op = "storage.UpdateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return models.Subscription{}, err
	}

	if !validID(id) {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	current, err := scanSubscription(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}

	updated := patch.Apply(current)
	updated.Currency = updated.CurrencyOrDefault()

	query = `UPDATE subscriptions
			 SET name = $1, price = $2, cycle = $3, category = $4, next_payment = $5, active = $6, currency = $7
			 WHERE id = $8`
	_, err = tx.ExecContext(ctx, query, updated.Name, updated.Price, updated.Cycle, updated.Category,
		updated.NextPayment, updated.Active, updated.Currency, id)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// RemoveSubscription deletes the record with id.
func (s *Storage) RemoveSubscription(ctx context.Context, id string) error {
	const op = "storage.RemoveSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	if !validID(id) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
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

// ListSubscriptions returns every record in insertion order.
func (s *Storage) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	list := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		list = append(list, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}
