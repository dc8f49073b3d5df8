package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*models.AuthResult)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func validRequest() models.RegisterRequest {
	return models.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  "ada",
		Password:  "s3cretpass",
		Email:     "ada@example.com",
		Phone:     "5551234567",
	}
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	badName := validRequest()
	badName.FirstName = "Ada1"
	badPhone := validRequest()
	badPhone.Phone = "12345"

	tests := []struct {
		name           string
		body           any
		mockResp       *models.AuthResult
		mockErr        error
		callService    bool
		wantStatusCode int
		wantBody       string
	}{
		{
			name:           "успешная регистрация",
			body:           validRequest(),
			mockResp:       &models.AuthResult{Username: "ada", Message: "User Registered Successfully", Token: "tok"},
			callService:    true,
			wantStatusCode: http.StatusCreated,
			wantBody:       "User Registered Successfully",
		},
		{
			name:           "некорректный JSON",
			body:           "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantBody:       "invalid request body",
		},
		{
			name:           "имя с цифрами",
			body:           badName,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantBody:       "field FirstName must contain only letters",
		},
		{
			name:           "короткий телефон",
			body:           badPhone,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantBody:       "field Phone must be exactly 10 characters long",
		},
		{
			name:           "имя пользователя занято",
			body:           validRequest(),
			mockErr:        apperr.New(apperr.ErrConflict, "ada already exists."),
			callService:    true,
			wantStatusCode: http.StatusConflict,
			wantBody:       "ada already exists.",
		},
		{
			name:           "ошибка хранилища",
			body:           validRequest(),
			mockErr:        errors.New("db down"),
			callService:    true,
			wantStatusCode: http.StatusInternalServerError,
			wantBody:       "failed to register user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callService {
				svc.On("Register", mock.Anything, tt.body.(models.RegisterRequest)).Return(tt.mockResp, tt.mockErr).Once()
			}
			handler := New(newNoopLogger(), svc)

			var body []byte
			if s, ok := tt.body.(string); ok {
				body = []byte(s)
			} else {
				var err error
				body, err = json.Marshal(tt.body)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
