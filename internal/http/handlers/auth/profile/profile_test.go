package profile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

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

func (m *ServiceMock) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func TestProfileHandler_ServeHTTP(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	userID := uuid.New()

	t.Run("профиль найден", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("Profile", mock.Anything, userID).
			Return(&models.User{ID: userID, Username: "ada", PasswordHash: "secret-hash"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/user", nil)
		ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "req-1")
		ctx = context.WithValue(ctx, middlewarectx.UserID, userID)
		rec := httptest.NewRecorder()

		New(log, svc).ServeHTTP(rec, req.WithContext(ctx))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"username":"ada"`)
		assert.NotContains(t, rec.Body.String(), "secret-hash")
		svc.AssertExpectations(t)
	})

	t.Run("пользователь удален", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("Profile", mock.Anything, userID).
			Return(nil, fmt.Errorf("auth.Profile: %w", apperr.ErrNotFound)).Once()

		req := httptest.NewRequest(http.MethodGet, "/user", nil)
		ctx := context.WithValue(req.Context(), middlewarectx.UserID, userID)
		rec := httptest.NewRecorder()

		New(log, svc).ServeHTTP(rec, req.WithContext(ctx))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "User not found")
	})

	t.Run("без аутентификации", func(t *testing.T) {
		rec := httptest.NewRecorder()

		New(log, new(ServiceMock)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
