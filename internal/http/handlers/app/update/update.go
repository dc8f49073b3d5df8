// Package update реализует HTTP-обработчик изменения имени и описания приложения.
// PUT и PATCH обрабатываются одинаково: меняются только переданные поля.
package update

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
	apphttp "github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/app"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/response"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/validation"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

const msgUpdated = "App updated successfully."

// Result: тело успешного ответа.
type Result struct {
	Message string      `json:"message"`
	App     *models.App `json:"app"`
}

// Handler обрабатывает изменение приложения.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает изменение приложения владельцем.
type Service interface {
	Update(ctx context.Context, owner, id uuid.UUID, patch models.AppPatch) (*models.App, error)
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validation.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменить приложение
// @Tags Apps
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID приложения"
// @Param request body models.AppPatch true "Новые значения полей"
// @Success 200 {object} response.Response{data=Result}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Чужое приложение"
// @Failure 404 {object} response.ErrorResponse "Приложение не найдено"
// @Failure 409 {object} response.ErrorResponse "Имя уже занято"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /apps/{id} [put]
// @Router /apps/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.app.update"

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
		log.Warn("invalid app id", sl.Err(err))
		response.RenderError(w, r, apperr.ErrNotFound, apphttp.Messages, "")
		return
	}

	var patch models.AppPatch
	if err := render.DecodeJSON(r.Body, &patch); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.RenderBadRequest(w, r, "invalid request body")
		return
	}

	if err := h.validate.Struct(patch); err != nil {
		log.Warn("validation failed", sl.Err(err))
		response.RenderValidation(w, r, err)
		return
	}

	app, err := h.service.Update(r.Context(), owner, id, patch)
	if err != nil {
		log.Warn("failed to update app", slog.String("app_id", id.String()), sl.Err(err))
		response.RenderError(w, r, err, apphttp.Messages, "failed to update app")
		return
	}

	log.Info("app updated", slog.String("app_id", id.String()))
	render.JSON(w, r, response.StatusOKWithData(Result{Message: msgUpdated, App: app}))
}
