// Package update реализует HTTP-обработчик изменения подписки: тарифа,
// статуса и даты окончания.
//
// Поле end_date различает три состояния: отсутствует (не менять),
// null (пересчитать от даты начала) и дата в формате YYYY-MM-DD.
package update

import (
	"bytes"
	"context"
	"encoding/json"
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
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/period"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

const (
	msgUpdated    = "Subscription updated successfully."
	msgBadEndDate = "end_date must be a date in YYYY-MM-DD format or null"
)

// Request: тело запроса. Plan принимает имя тарифа или его идентификатор.
type Request struct {
	Plan    *string         `json:"plan,omitempty" example:"Pro"`
	Active  *bool           `json:"active,omitempty"`
	EndDate json.RawMessage `json:"end_date,omitempty" swaggertype:"string" example:"2024-12-31"`
}

// Result: тело успешного ответа.
type Result struct {
	Message      string                  `json:"message"`
	Subscription models.SubscriptionView `json:"subscription"`
}

// Handler обрабатывает изменение подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики изменения подписки.
type Service interface {
	Update(ctx context.Context, owner, id uuid.UUID, patch models.SubscriptionPatch) (*models.Subscription, error)
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// Patch переводит тело запроса в изменения подписки.
func (req Request) Patch() (models.SubscriptionPatch, error) {
	patch := models.SubscriptionPatch{
		Plan:   req.Plan,
		Active: req.Active,
	}
	switch {
	case len(req.EndDate) == 0:
	case bytes.Equal(req.EndDate, []byte("null")):
		patch.ResetEndDate = true
	default:
		var s string
		if err := json.Unmarshal(req.EndDate, &s); err != nil {
			return patch, apperr.New(apperr.ErrValidation, msgBadEndDate)
		}
		end, err := period.Parse(s)
		if err != nil {
			return patch, apperr.New(apperr.ErrValidation, msgBadEndDate)
		}
		patch.EndDate = &end
	}
	return patch, nil
}

// ServeHTTP godoc
// @Summary Изменить подписку
// @Description Смена тарифа начинает новый период с сегодняшней даты.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID подписки"
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.Response{data=Result}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Чужая подписка"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 422 {object} response.ErrorResponse "Неизвестный тариф или некорректная дата"
// @Router /subscriptions/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.update"

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

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("failed to decode id from url", sl.Err(err))
		response.RenderError(w, r, apperr.ErrNotFound, subhttp.Messages, "")
		return
	}

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.RenderBadRequest(w, r, "invalid request body")
		return
	}

	patch, err := req.Patch()
	if err != nil {
		log.Warn("validation failed", sl.Err(err))
		response.RenderError(w, r, err, nil, msgBadEndDate)
		return
	}

	sub, err := h.service.Update(r.Context(), owner, id, patch)
	if err != nil {
		log.Warn("failed to update subscription", slog.String("subscription_id", id.String()), sl.Err(err))
		response.RenderError(w, r, err, subhttp.Messages, "could not update subscription")
		return
	}

	log.Info("subscription updated", slog.String("subscription_id", id.String()))
	render.JSON(w, r, response.StatusOKWithData(Result{Message: msgUpdated, Subscription: sub.View()}))
}
