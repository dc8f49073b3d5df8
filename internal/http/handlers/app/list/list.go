// Package list реализует HTTP-обработчик списка приложений текущего пользователя.
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

const msgEmpty = "No apps created"

// Handler обрабатывает запрос списка приложений.
type Handler struct {
	log           *slog.Logger
	service       Service
	emptyNotFound bool
}

// Service описывает получение приложений пользователя.
type Service interface {
	List(ctx context.Context, owner uuid.UUID) ([]*models.App, error)
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
// @Summary Список приложений
// @Tags Apps
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.ListResponse{data=[]models.App}
// @Failure 401 {object} response.ErrorResponse "Требуется авторизация"
// @Failure 404 {object} response.ErrorResponse "Приложений нет"
// @Router /apps [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.app.list"

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

	apps, err := h.service.List(r.Context(), owner)
	if err != nil {
		log.Error("failed to list apps", sl.UserID(owner), sl.Err(err))
		response.RenderError(w, r, err, nil, "failed to list apps")
		return
	}
	if len(apps) == 0 {
		response.RenderEmpty(w, r, h.emptyNotFound, msgEmpty)
		return
	}

	render.JSON(w, r, response.StatusOKWithList(apps))
}
