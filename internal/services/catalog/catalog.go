// Package catalog предоставляет доступ к справочнику тарифов.
// Список тарифов кешируется в Redis; ошибки кеша не мешают чтению из базы.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

const (
	cacheKey = "plans:all"
	cacheTTL = time.Hour
)

// Repository читает тарифы из хранилища.
type Repository interface {
	ListPlans(ctx context.Context) ([]*models.Plan, error)
}

// Cache описывает методы кеша, которые использует каталог.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Catalog: справочник тарифов.
type Catalog struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает каталог. cache может быть nil.
func New(repo Repository, cache Cache, log *slog.Logger) *Catalog {
	return &Catalog{repo: repo, cache: cache, log: log}
}

// List возвращает все тарифы по возрастанию цены, при равной цене по имени.
func (c *Catalog) List(ctx context.Context) ([]*models.Plan, error) {
	const op = "catalog.List"

	if c.cache != nil {
		var cached []*models.Plan
		found, err := c.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			c.log.Warn("failed to read plans from cache", slog.String("op", op), sl.Err(err))
		}
		if found {
			return cached, nil
		}
	}

	plans, err := c.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sort.SliceStable(plans, func(i, j int) bool {
		if cmp := plans[i].Price.Cmp(plans[j].Price); cmp != 0 {
			return cmp < 0
		}
		return plans[i].Name < plans[j].Name
	})

	if c.cache != nil && len(plans) > 0 {
		if err := c.cache.Set(ctx, cacheKey, plans, cacheTTL); err != nil {
			c.log.Warn("failed to cache plans", slog.String("op", op), sl.Err(err))
		}
	}
	return plans, nil
}

// ByName ищет тариф по имени без учета регистра. Не найден: apperr.ErrNotFound.
func (c *Catalog) ByName(ctx context.Context, name string) (*models.Plan, error) {
	const op = "catalog.ByName"

	plans, err := c.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, p := range plans {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
}

// Resolve находит тариф по UUID или имени. Неизвестная ссылка дает apperr.ErrValidation.
func (c *Catalog) Resolve(ctx context.Context, ref string) (*models.Plan, error) {
	const op = "catalog.Resolve"

	plans, err := c.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ref = strings.TrimSpace(ref)
	id, idErr := uuid.Parse(ref)
	for _, p := range plans {
		if idErr == nil && p.ID == id {
			return p, nil
		}
		if strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return nil, apperr.Newf(apperr.ErrValidation, "Unknown plan: %q.", ref)
}

// Free возвращает тариф Free. Его отсутствие означает неправильно
// развернутую базу и дает apperr.ErrConfiguration.
func (c *Catalog) Free(ctx context.Context) (*models.Plan, error) {
	const op = "catalog.Free"

	p, err := c.ByName(ctx, models.PlanFree)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.ErrConfiguration, "Free plan is not configured."))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}
