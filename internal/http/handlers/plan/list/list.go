// Package list реализует HTTP-обработчик каталога тарифов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/app-subscriptions/internal/http/response"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

const msgEmpty = "No Plans Predefined"

// Handler отдает список тарифов.
type Handler struct {
	log           *slog.Logger
	catalog       Catalog
	emptyNotFound bool
}

// Catalog возвращает тарифы в порядке цены.
type Catalog interface {
	List(ctx context.Context) ([]*models.Plan, error)
}

// New создает Handler. При emptyNotFound пустой каталог дает 404.
func New(log *slog.Logger, catalog Catalog, emptyNotFound bool) *Handler {
	return &Handler{
		log:           log,
		catalog:       catalog,
		emptyNotFound: emptyNotFound,
	}
}

// ServeHTTP godoc
// @Summary Каталог тарифов
// @Tags Plans
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.ListResponse{data=[]models.PlanView}
// @Failure 404 {object} response.ErrorResponse "Каталог пуст"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.catalog.List(r.Context())
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		response.RenderError(w, r, err, nil, "could not list plans")
		return
	}
	if len(plans) == 0 {
		log.Warn("plan catalog is empty")
		response.RenderEmpty(w, r, h.emptyNotFound, msgEmpty)
		return
	}

	views := make([]models.PlanView, 0, len(plans))
	for _, p := range plans {
		views = append(views, p.View())
	}
	render.JSON(w, r, response.StatusOKWithList(views))
}
