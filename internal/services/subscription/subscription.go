// Package subscription управляет жизненным циклом подписок приложений:
// выдача тарифа Free при создании, чтение и смена тарифа.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/app-subscriptions/internal/lib/period"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
	"github.com/magabrotheeeer/app-subscriptions/internal/rabbitmq"
	"github.com/magabrotheeeer/app-subscriptions/internal/services/ownership"
)

// Repository определяет методы хранилища, нужные для работы с подписками.
type Repository interface {
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	GetSubscription(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	GetSubscriptionByApp(ctx context.Context, appID uuid.UUID) (*models.Subscription, error)
	ListSubscriptionsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *models.Subscription) error
	GetApp(ctx context.Context, id uuid.UUID) (*models.App, error)
}

// Plans: справочник тарифов.
type Plans interface {
	Free(ctx context.Context) (*models.Plan, error)
	Resolve(ctx context.Context, ref string) (*models.Plan, error)
}

// Publisher отправляет доменные события.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Metrics учитывает смены тарифа.
type Metrics interface {
	PlanChanged(plan string)
}

// Service реализует операции над подписками.
type Service struct {
	repo    Repository
	plans   Plans
	guard   *ownership.Guard
	events  Publisher
	metrics Metrics
	log     *slog.Logger
	now     func() time.Time
}

// New создает Service.
func New(repo Repository, plans Plans, guard *ownership.Guard, events Publisher, metrics Metrics, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		plans:   plans,
		guard:   guard,
		events:  events,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// ProvisionFree создает подписку Free для только что созданного приложения.
// Вызывается внутри транзакции создания приложения: ошибка отменяет создание целиком.
func (s *Service) ProvisionFree(ctx context.Context, app *models.App) (*models.Subscription, error) {
	const op = "subscription.ProvisionFree"

	free, err := s.plans.Free(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	start := period.Today(s.now())
	sub := &models.Subscription{
		ID:         uuid.New(),
		AppID:      app.ID,
		Plan:       free,
		Active:     true,
		StartDate:  start,
		EndDate:    period.End(start),
		AppName:    app.Name,
		AppOwnerID: app.OwnerID,
	}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetForApp возвращает подписку приложения. Чужое или отсутствующее
// приложение, как и приложение без подписки, дает apperr.ErrNotFound.
func (s *Service) GetForApp(ctx context.Context, owner, appID uuid.UUID) (*models.Subscription, error) {
	const op = "subscription.GetForApp"

	app, err := s.repo.GetApp(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.guard.Read(owner, app.OwnerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sub, err := s.repo.GetSubscriptionByApp(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// List возвращает подписки всех приложений пользователя.
func (s *Service) List(ctx context.Context, owner uuid.UUID) ([]*models.Subscription, error) {
	const op = "subscription.List"

	subs, err := s.repo.ListSubscriptionsByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if subs == nil {
		subs = []*models.Subscription{}
	}
	return subs, nil
}

// Update меняет тариф, статус или дату окончания подписки.
//
// Период пересчитывается (start = сегодня, end = start + period.Days) только
// при фактической смене тарифа. Явно переданный end_date имеет приоритет.
func (s *Service) Update(ctx context.Context, owner, id uuid.UUID, patch models.SubscriptionPatch) (*models.Subscription, error) {
	const op = "subscription.Update"

	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.guard.Mutate(owner, sub.AppOwnerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	planChanged := false
	if patch.Plan != nil {
		plan, err := s.plans.Resolve(ctx, *patch.Plan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if sub.Plan == nil || sub.Plan.ID != plan.ID {
			sub.Plan = plan
			sub.StartDate = period.Today(s.now())
			sub.EndDate = period.End(sub.StartDate)
			planChanged = true
		}
	}

	if patch.Active != nil {
		sub.Active = *patch.Active
	}

	switch {
	case patch.EndDate != nil:
		sub.EndDate = period.Date(*patch.EndDate)
	case patch.ResetEndDate:
		sub.EndDate = period.End(sub.StartDate)
	}

	if err := s.repo.UpdateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if planChanged {
		s.log.Info("subscription plan changed",
			slog.String("op", op),
			slog.String("subscription_id", sub.ID.String()),
			slog.String("plan", sub.Plan.Name),
		)
		s.metrics.PlanChanged(sub.Plan.Name)
		s.publish(ctx, sub)
	}
	return sub, nil
}

func (s *Service) publish(ctx context.Context, sub *models.Subscription) {
	event := models.SubscriptionEvent{
		SubscriptionID: sub.ID,
		AppID:          sub.AppID,
		OwnerID:        sub.AppOwnerID,
		Plan:           sub.Plan.Name,
		StartDate:      sub.StartDate.Format(period.DateLayout),
		EndDate:        sub.EndDate.Format(period.DateLayout),
	}
	if err := s.events.Publish(ctx, rabbitmq.RoutingSubscriptionChange, event); err != nil {
		s.log.Warn("failed to publish event",
			slog.String("routing_key", rabbitmq.RoutingSubscriptionChange), sl.Err(err))
	}
}
