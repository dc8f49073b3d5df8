// Package profile реализует HTTP-обработчик получения профиля текущего пользователя.
package profile

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/response"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

var messages = response.Messages{
	apperr.ErrNotFound: "User not found",
}

// Handler возвращает профиль пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service загружает пользователя.
type Service interface {
	Profile(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Профиль пользователя
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.User}
// @Failure 401 {object} response.ErrorResponse "Требуется авторизация"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /user [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		response.RenderUnauthorized(w, r)
		return
	}

	user, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		log.Error("failed to load profile", sl.UserID(userID), sl.Err(err))
		response.RenderError(w, r, err, messages, "failed to load profile")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(user))
}
