// Package read реализует HTTP-обработчик получения подписки приложения.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
	subhttp "github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/subscription"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/response"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

// Handler обрабатывает запросы на получение подписки приложения.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики подписок
}

// Service описывает интерфейс бизнес-логики чтения подписки.
type Service interface {
	GetForApp(ctx context.Context, owner, appID uuid.UUID) (*models.Subscription, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подписка приложения
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID приложения"
// @Success 200 {object} response.Response{data=models.SubscriptionView}
// @Failure 401 {object} response.ErrorResponse "Требуется авторизация"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Router /apps/{id}/subscription [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.read"

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

	appID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("failed to decode id from url", sl.Err(err))
		response.RenderError(w, r, apperr.ErrNotFound, subhttp.Messages, "")
		return
	}

	sub, err := h.service.GetForApp(r.Context(), owner, appID)
	if err != nil {
		log.Warn("failed to read subscription", slog.String("app_id", appID.String()), sl.Err(err))
		response.RenderError(w, r, err, subhttp.Messages, "could not read subscription")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(sub.View()))
}
