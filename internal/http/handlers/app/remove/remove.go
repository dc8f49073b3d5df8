// Package remove реализует HTTP-обработчик удаления приложения вместе с его подписками.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
	apphttp "github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/app"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/response"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
)

// Handler обрабатывает удаление приложения.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает удаление приложения владельцем.
type Service interface {
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить приложение
// @Description Удаляет приложение и все его подписки.
// @Tags Apps
// @Security BearerAuth
// @Param id path string true "ID приложения"
// @Success 204 "Приложение удалено"
// @Failure 403 {object} response.ErrorResponse "Чужое приложение"
// @Failure 404 {object} response.ErrorResponse "Приложение не найдено"
// @Router /apps/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.app.remove"

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

	if err := h.service.Delete(r.Context(), owner, id); err != nil {
		log.Warn("failed to delete app", slog.String("app_id", id.String()), sl.Err(err))
		response.RenderError(w, r, err, apphttp.Messages, "failed to delete app")
		return
	}

	log.Info("app and corresponding subscriptions deleted", slog.String("app_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
