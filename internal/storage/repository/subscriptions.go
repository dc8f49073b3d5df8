package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

const subscriptionSelect = `SELECT s.id, s.app_id, s.active, s.start_date, s.end_date,
			  a.name, a.owner_id, p.id, p.name, p.price
			  FROM subscriptions s
			  JOIN apps a ON a.id = s.app_id
			  LEFT JOIN plans p ON p.id = s.plan_id`

func planParam(sub *models.Subscription) uuid.NullUUID {
	if sub.Plan == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: sub.Plan.ID, Valid: true}
}

// CreateSubscription сохраняет подписку.
func (s *Storage) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (id, app_id, plan_id, active, start_date, end_date)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.conn(ctx).ExecContext(ctx, query,
		sub.ID, sub.AppID, planParam(sub), sub.Active, sub.StartDate, sub.EndDate); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetSubscription возвращает подписку вместе с именем и владельцем приложения.
func (s *Storage) GetSubscription(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	const op = "storage.GetSubscription"

	sub, err := scanSubscription(s.conn(ctx).QueryRowContext(ctx, subscriptionSelect+` WHERE s.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return sub, nil
}

// GetSubscriptionByApp возвращает последнюю созданную подписку приложения.
func (s *Storage) GetSubscriptionByApp(ctx context.Context, appID uuid.UUID) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByApp"

	query := subscriptionSelect + ` WHERE s.app_id = $1 ORDER BY s.seq DESC LIMIT 1`
	sub, err := scanSubscription(s.conn(ctx).QueryRowContext(ctx, query, appID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return sub, nil
}

// ListSubscriptionsByOwner возвращает подписки всех приложений пользователя.
func (s *Storage) ListSubscriptionsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptionsByOwner"

	query := subscriptionSelect + ` WHERE a.owner_id = $1 ORDER BY s.seq`
	rows, err := s.conn(ctx).QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// ListActiveSubscriptionsEndingOn возвращает активные подписки, период которых заканчивается в день day.
func (s *Storage) ListActiveSubscriptionsEndingOn(ctx context.Context, day time.Time) ([]*models.Subscription, error) {
	const op = "storage.ListActiveSubscriptionsEndingOn"

	query := subscriptionSelect + ` WHERE s.active AND s.end_date = $1 ORDER BY s.seq`
	rows, err := s.conn(ctx).QueryContext(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// UpdateSubscription сохраняет тариф, статус и период подписки.
func (s *Storage) UpdateSubscription(ctx context.Context, sub *models.Subscription) error {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET plan_id = $1, active = $2, start_date = $3, end_date = $4
			  WHERE id = $5`
	res, err := s.conn(ctx).ExecContext(ctx, query,
		planParam(sub), sub.Active, sub.StartDate, sub.EndDate, sub.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return nil
}

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	sub := &models.Subscription{}
	var (
		planID    uuid.NullUUID
		planName  sql.NullString
		planPrice decimal.NullDecimal
	)
	if err := row.Scan(&sub.ID, &sub.AppID, &sub.Active, &sub.StartDate, &sub.EndDate,
		&sub.AppName, &sub.AppOwnerID, &planID, &planName, &planPrice); err != nil {
		return nil, err
	}
	sub.StartDate = sub.StartDate.UTC()
	sub.EndDate = sub.EndDate.UTC()
	if planID.Valid {
		sub.Plan = &models.Plan{ID: planID.UUID, Name: planName.String, Price: planPrice.Decimal}
	}
	return sub, nil
}
