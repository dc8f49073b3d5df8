// Package appsubs собирает зависимости сервиса и запускает HTTP-сервер.
package appsubs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/app-subscriptions/internal/cache"
	"github.com/magabrotheeeer/app-subscriptions/internal/config"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/jwt"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
	"github.com/magabrotheeeer/app-subscriptions/internal/metrics"
	"github.com/magabrotheeeer/app-subscriptions/internal/migrations"
	"github.com/magabrotheeeer/app-subscriptions/internal/rabbitmq"
	appservice "github.com/magabrotheeeer/app-subscriptions/internal/services/app"
	authservice "github.com/magabrotheeeer/app-subscriptions/internal/services/auth"
	"github.com/magabrotheeeer/app-subscriptions/internal/services/catalog"
	"github.com/magabrotheeeer/app-subscriptions/internal/services/ownership"
	"github.com/magabrotheeeer/app-subscriptions/internal/services/scheduler"
	subservice "github.com/magabrotheeeer/app-subscriptions/internal/services/subscription"
	"github.com/magabrotheeeer/app-subscriptions/internal/storage/repository"
)

const (
	shutdownTimeout = 15 * time.Second
	dbRetries       = 10
	dbRetryDelay    = 3 * time.Second
)

// Publisher публикует доменные события.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Services: бизнес-логика, доступная обработчикам.
type Services struct {
	Auth          *authservice.Service
	Apps          *appservice.Service
	Subscriptions *subservice.Service
	Catalog       *catalog.Catalog
}

// App владеет сервером и всеми внешними подключениями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	amqp   *amqp.Connection
	events *amqp.Channel
	audit  *amqp.Channel
	expiry *scheduler.SchedulerService
	cfg    *config.Config
}

func waitForDB(ctx context.Context, db *repository.Storage, logger *slog.Logger) error {
	var err error
	for i := 0; i < dbRetries; i++ {
		if err = db.Ping(ctx); err == nil {
			return nil
		}
		logger.Warn("database is not ready, retrying", sl.Err(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dbRetryDelay):
		}
	}
	return fmt.Errorf("database not ready after retries: %w", err)
}

// New подключается к хранилищам, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "appsubs.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = waitForDB(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &App{
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		cfg:    cfg,
	}

	var events Publisher = rabbitmq.Discard{}
	if cfg.RabbitMQURL != "" {
		publisher, err := a.connectBroker(ctx)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		events = publisher
		a.expiry = scheduler.NewSchedulerService(db, publisher, cfg.ExpiryCheckInterval, logger)
	} else {
		logger.Info("rabbitmq url is empty, domain events are disabled")
	}

	m := metrics.New()
	guard := ownership.New(cfg.ConcealForeign)
	plans := catalog.New(db, cacheRedis, logger)
	subs := subservice.New(db, plans, guard, events, m, logger)
	services := Services{
		Auth:          authservice.New(db, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL), cacheRedis, logger),
		Apps:          appservice.New(db, db, subs, guard, events, m, logger),
		Subscriptions: subs,
		Catalog:       plans,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, RouteDeps{
		Services:      services,
		Health:        db,
		Metrics:       m,
		Limiter:       rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		EmptyNotFound: cfg.EmptyListNotFound(),
	})

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

// connectBroker объявляет обменник событий, запускает аудит-потребителя
// и возвращает издателя.
func (a *App) connectBroker(ctx context.Context) (*rabbitmq.Publisher, error) {
	conn, err := rabbitmq.Connect(a.cfg.RabbitMQURL, a.cfg.RabbitMQMaxRetries, a.cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	a.amqp = conn

	auditQueue := rabbitmq.AuditQueue(a.cfg.RabbitMQExchange)
	a.audit, err = rabbitmq.SetupChannel(conn, a.cfg.RabbitMQExchange, []rabbitmq.QueueConfig{auditQueue})
	if err != nil {
		return nil, err
	}
	a.events, err = conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open publish channel: %w", err)
	}

	if err := rabbitmq.ConsumerMessage(ctx, a.logger, a.audit, auditQueue.QueueName, rabbitmq.AuditHandler(a.logger)); err != nil {
		return nil, err
	}
	a.logger.Info("domain events enabled", slog.String("exchange", a.cfg.RabbitMQExchange))
	return rabbitmq.NewPublisher(a.events, a.cfg.RabbitMQExchange), nil
}

// Run обслуживает запросы до отмены ctx, затем останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	if a.expiry != nil {
		go a.expiry.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.events != nil {
		_ = a.events.Close()
	}
	if a.audit != nil {
		_ = a.audit.Close()
	}
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close redis client", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
