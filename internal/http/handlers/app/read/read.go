// Package read реализует HTTP-обработчик получения приложения по идентификатору.
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
	apphttp "github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/app"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/response"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

// Handler обрабатывает запрос одного приложения.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение приложения владельцем.
type Service interface {
	Get(ctx context.Context, owner, id uuid.UUID) (*models.App, error)
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить приложение
// @Tags Apps
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID приложения"
// @Success 200 {object} response.Response{data=models.App}
// @Failure 401 {object} response.ErrorResponse "Требуется авторизация"
// @Failure 404 {object} response.ErrorResponse "Приложение не найдено"
// @Router /apps/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.app.read"

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

	app, err := h.service.Get(r.Context(), owner, id)
	if err != nil {
		log.Warn("failed to get app", slog.String("app_id", id.String()), sl.Err(err))
		response.RenderError(w, r, err, apphttp.Messages, "failed to get app")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(app))
}
