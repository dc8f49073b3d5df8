// Package logout реализует HTTP-обработчик выхода: токен запроса отзывается до истечения срока.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/app-subscriptions/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/response"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/jwt"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
)

const msgLoggedOut = "User logged out successfully"

// Handler обрабатывает выход пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service отзывает токен.
type Service interface {
	Logout(ctx context.Context, claims *jwt.CustomClaims) error
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Description Отзывает текущий JWT. Повторный выход ничего не меняет.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Требуется авторизация"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	claims, ok := middlewarectx.ClaimsFromContext(r.Context())
	if !ok {
		log.Error("claims not found in context")
		response.RenderUnauthorized(w, r)
		return
	}

	if err := h.service.Logout(r.Context(), claims); err != nil {
		log.Error("failed to revoke token", sl.Err(err))
		response.RenderError(w, r, err, nil, "failed to log out")
		return
	}

	log.Info("user logged out", sl.UserID(claims.UserID))
	render.JSON(w, r, response.StatusOKWithData(map[string]string{"message": msgLoggedOut}))
}
