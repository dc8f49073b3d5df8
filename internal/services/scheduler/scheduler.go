// Package scheduler периодически ищет подписки, период которых заканчивается
// завтра, и публикует о каждой событие subscription.expiring.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/app-subscriptions/internal/lib/period"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
	"github.com/magabrotheeeer/app-subscriptions/internal/rabbitmq"
)

// SubscriptionRepository ищет подписки по дате окончания.
type SubscriptionRepository interface {
	ListActiveSubscriptionsEndingOn(ctx context.Context, day time.Time) ([]*models.Subscription, error)
}

// Publisher публикует доменные события.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// SchedulerService рассылает уведомления об окончании периода.
type SchedulerService struct {
	repo     SubscriptionRepository
	events   Publisher
	log      *slog.Logger
	interval time.Duration
	now      func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SubscriptionRepository, events Publisher, interval time.Duration, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:     repo,
		events:   events,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// Run выполняет проверку сразу и затем с интервалом interval до отмены ctx.
func (s *SchedulerService) Run(ctx context.Context) {
	s.FindExpiringSubscriptionsDueTomorrow(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("expiry scheduler stopped")
			return
		case <-ticker.C:
			s.FindExpiringSubscriptionsDueTomorrow(ctx)
		}
	}
}

// FindExpiringSubscriptionsDueTomorrow публикует событие для каждой активной
// подписки, которая заканчивается завтра, и возвращает число отправленных событий.
func (s *SchedulerService) FindExpiringSubscriptionsDueTomorrow(ctx context.Context) int {
	const op = "scheduler.FindExpiringSubscriptionsDueTomorrow"
	log := s.log.With(slog.String("op", op))

	tomorrow := period.Today(s.now()).AddDate(0, 0, 1)
	subs, err := s.repo.ListActiveSubscriptionsEndingOn(ctx, tomorrow)
	if err != nil {
		log.Error("failed to find expiring subscriptions", sl.Err(err))
		return 0
	}
	if len(subs) == 0 {
		log.Debug("no expiring subscriptions found")
		return 0
	}

	log.Info("found expiring subscriptions", slog.Int("count", len(subs)))
	sent := 0
	for _, sub := range subs {
		event := models.SubscriptionEvent{
			SubscriptionID: sub.ID,
			AppID:          sub.AppID,
			OwnerID:        sub.AppOwnerID,
			StartDate:      sub.StartDate.Format(period.DateLayout),
			EndDate:        sub.EndDate.Format(period.DateLayout),
		}
		if sub.Plan != nil {
			event.Plan = sub.Plan.Name
		}
		if err := s.events.Publish(ctx, rabbitmq.RoutingSubscriptionExpire, event); err != nil {
			log.Error("failed to publish message", slog.String("subscription_id", sub.ID.String()), sl.Err(err))
			continue
		}
		sent++
	}
	return sent
}
