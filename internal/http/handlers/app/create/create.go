// Package create реализует HTTP-обработчик создания приложения.
// Вместе с приложением создается подписка на тариф Free.
package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	apphttp "github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/app"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/response"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/validation"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

// Handler обрабатывает запросы на создание приложения.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику создания приложения.
type Service interface {
	Create(ctx context.Context, owner uuid.UUID, req models.AppRequest) (*models.App, error)
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
// @Summary Создать приложение
// @Description Создает приложение текущего пользователя и подписку Free к нему.
// @Tags Apps
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.AppRequest true "Имя и описание"
// @Success 201 {object} response.Response{data=models.App}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Требуется авторизация"
// @Failure 409 {object} response.ErrorResponse "Имя уже занято"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /apps [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.app.create"

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

	var req models.AppRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.RenderBadRequest(w, r, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		response.RenderValidation(w, r, err)
		return
	}

	app, err := h.service.Create(r.Context(), owner, req)
	if err != nil {
		log.Error("failed to create app", sl.UserID(owner), sl.Err(err))
		response.RenderError(w, r, err, apphttp.Messages, "failed to create app")
		return
	}

	log.Info("app created", slog.String("app_id", app.ID.String()))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(app))
}
