package read

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Get(ctx context.Context, owner, id uuid.UUID) (*models.App, error) {
	args := m.Called(ctx, owner, id)
	app, _ := args.Get(0).(*models.App)
	return app, args.Error(1)
}

func newRequest(owner uuid.UUID, id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/apps/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, middlewarectx.UserID, owner)
	return req.WithContext(ctx)
}

func TestReadHandler_ServeHTTP(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	owner := uuid.New()
	appID := uuid.New()

	tests := []struct {
		name           string
		id             string
		mockResp       *models.App
		mockErr        error
		callService    bool
		wantStatusCode int
		wantBody       string
	}{
		{
			name:           "приложение найдено",
			id:             appID.String(),
			mockResp:       &models.App{ID: appID, OwnerID: owner, Name: "facebook"},
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantBody:       `"user":"` + owner.String() + `"`,
		},
		{
			name:           "чужое приложение",
			id:             appID.String(),
			mockErr:        fmt.Errorf("app.Get: %w", apperr.ErrNotFound),
			callService:    true,
			wantStatusCode: http.StatusNotFound,
			wantBody:       "App not found or does not belong to this user",
		},
		{
			name:           "некорректный id",
			id:             "not-a-uuid",
			wantStatusCode: http.StatusNotFound,
			wantBody:       "App not found or does not belong to this user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callService {
				svc.On("Get", mock.Anything, owner, appID).Return(tt.mockResp, tt.mockErr).Once()
			}
			rec := httptest.NewRecorder()

			New(log, svc).ServeHTTP(rec, newRequest(owner, tt.id))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
