// Package list реализует HTTP-обработчик списка подписок текущего пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/app-subscriptions/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/response"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

const msgEmpty = "No subscriptions"

// Handler обрабатывает запрос списка подписок.
type Handler struct {
	log           *slog.Logger
	service       Service
	emptyNotFound bool
}

// Service описывает интерфейс бизнес-логики для получения списка подписок.
type Service interface {
	List(ctx context.Context, owner uuid.UUID) ([]*models.Subscription, error)
}

// New создает Handler. При emptyNotFound пустой список дает 404.
func New(log *slog.Logger, service Service, emptyNotFound bool) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		emptyNotFound: emptyNotFound,
	}
}

// ServeHTTP godoc
// @Summary Список подписок
// @Description Подписки всех приложений текущего пользователя.
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.ListResponse{data=[]models.SubscriptionView}
// @Failure 401 {object} response.ErrorResponse "Требуется авторизация"
// @Failure 404 {object} response.ErrorResponse "Подписок нет"
// @Router /subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	owner, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		response.RenderUnauthorized(w, r)
		return
	}

	subs, err := h.service.List(r.Context(), owner)
	if err != nil {
		log.Error("failed to list subscriptions", sl.UserID(owner), sl.Err(err))
		response.RenderError(w, r, err, nil, "could not list subscriptions")
		return
	}
	if len(subs) == 0 {
		response.RenderEmpty(w, r, h.emptyNotFound, msgEmpty)
		return
	}

	views := make([]models.SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, sub.View())
	}
	log.Info("success to list subscriptions", slog.Int("count", len(views)))
	render.JSON(w, r, response.StatusOKWithList(views))
}
