// Package app реализует реестр приложений пользователя.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
	"github.com/magabrotheeeer/app-subscriptions/internal/rabbitmq"
	"github.com/magabrotheeeer/app-subscriptions/internal/services/ownership"
)

// Repository определяет методы хранилища для приложений.
type Repository interface {
	CreateApp(ctx context.Context, app *models.App) error
	GetApp(ctx context.Context, id uuid.UUID) (*models.App, error)
	ListAppsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.App, error)
	UpdateApp(ctx context.Context, app *models.App) error
	DeleteApp(ctx context.Context, id uuid.UUID) (int, error)
}

// Transactor выполняет функцию в одной транзакции хранилища.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Provisioner выдает новому приложению подписку Free.
type Provisioner interface {
	ProvisionFree(ctx context.Context, app *models.App) (*models.Subscription, error)
}

// Publisher отправляет доменные события.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Metrics учитывает создание и удаление приложений.
type Metrics interface {
	AppCreated()
	AppDeleted()
}

// Service: реестр приложений.
type Service struct {
	repo        Repository
	tx          Transactor
	provisioner Provisioner
	guard       *ownership.Guard
	events      Publisher
	metrics     Metrics
	log         *slog.Logger
}

// New создает Service.
func New(repo Repository, tx Transactor, provisioner Provisioner, guard *ownership.Guard,
	events Publisher, metrics Metrics, log *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		tx:          tx,
		provisioner: provisioner,
		guard:       guard,
		events:      events,
		metrics:     metrics,
		log:         log,
	}
}

// Create создает приложение и подписку Free к нему в одной транзакции.
// Имя, уже занятое у этого пользователя, дает apperr.ErrConflict, и ничего не сохраняется.
func (s *Service) Create(ctx context.Context, owner uuid.UUID, req models.AppRequest) (*models.App, error) {
	const op = "app.Create"

	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.New(apperr.ErrValidation, "Name must not be empty.")
	}

	app := &models.App{
		ID:          uuid.New(),
		OwnerID:     owner,
		Name:        req.Name,
		Description: req.Description,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateApp(ctx, app); err != nil {
			return err
		}
		_, err := s.provisioner.ProvisionFree(ctx, app)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("app created", slog.String("op", op), slog.String("app_id", app.ID.String()), sl.UserID(owner))
	s.metrics.AppCreated()
	s.publish(ctx, rabbitmq.RoutingAppCreated, app)
	return app, nil
}

// List возвращает приложения пользователя в порядке создания.
func (s *Service) List(ctx context.Context, owner uuid.UUID) ([]*models.App, error) {
	const op = "app.List"

	apps, err := s.repo.ListAppsByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if apps == nil {
		apps = []*models.App{}
	}
	return apps, nil
}

// Get возвращает приложение владельца. Чужое приложение неотличимо от отсутствующего.
func (s *Service) Get(ctx context.Context, owner, id uuid.UUID) (*models.App, error) {
	const op = "app.Get"

	app, err := s.repo.GetApp(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.guard.Read(owner, app.OwnerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return app, nil
}

// Update меняет только переданные поля. Владелец приложения не меняется.
func (s *Service) Update(ctx context.Context, owner, id uuid.UUID, patch models.AppPatch) (*models.App, error) {
	const op = "app.Update"

	app, err := s.repo.GetApp(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.guard.Mutate(owner, app.OwnerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated := *app
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, apperr.New(apperr.ErrValidation, "Name must not be empty.")
		}
		updated.Name = *patch.Name
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if updated == *app {
		return app, nil
	}

	if err := s.repo.UpdateApp(ctx, &updated); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &updated, nil
}

// Delete удаляет приложение вместе с его подписками.
func (s *Service) Delete(ctx context.Context, owner, id uuid.UUID) error {
	const op = "app.Delete"

	app, err := s.repo.GetApp(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.guard.Mutate(owner, app.OwnerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := s.repo.DeleteApp(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}

	s.log.Info("app deleted", slog.String("op", op), slog.String("app_id", id.String()), sl.UserID(owner))
	s.metrics.AppDeleted()
	s.publish(ctx, rabbitmq.RoutingAppDeleted, app)
	return nil
}

func (s *Service) publish(ctx context.Context, routingKey string, app *models.App) {
	event := models.AppEvent{AppID: app.ID, OwnerID: app.OwnerID, Name: app.Name}
	if err := s.events.Publish(ctx, routingKey, event); err != nil {
		s.log.Warn("failed to publish event", slog.String("routing_key", routingKey), sl.Err(err))
	}
}
