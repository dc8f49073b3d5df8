// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status: статус запроса ("OK" или "Error").
// Поле Error: текст ошибки (опционально, при неуспехе).
// Поле Data: данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse: структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK: значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError: значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// ListResponse: ответ со списком. Поле data присутствует и для пустого списка.
type ListResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// StatusOKWithList возвращает успешный ListResponse.
func StatusOKWithList(data any) ListResponse {
	return ListResponse{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "alphanum":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers and letters", err.Field()))
		case "numeric":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers", err.Field()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email address", err.Field()))
		case "len":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be exactly %s characters long", err.Field(), err.Param()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters long", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters long", err.Field(), err.Param()))
		case "personname":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must contain only letters, apostrophes, hyphens, or spaces", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// StatusCode подбирает HTTP-статус по виду ошибки бизнес-логики.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Messages задает текст ответа для видов ошибок, у которых нет собственного сообщения.
type Messages map[error]string

// Message подбирает текст ответа для err.
func (m Messages) Message(err error, fallback string) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Msg
	}
	for kind, msg := range m {
		if errors.Is(err, kind) {
			return msg
		}
	}
	return apperr.Message(err, fallback)
}

// RenderError отвечает клиенту ошибкой err. Текст внутренних ошибок
// клиенту не показывается, вместо него уходит fallback.
func RenderError(w http.ResponseWriter, r *http.Request, err error, msgs Messages, fallback string) {
	render.Status(r, StatusCode(err))
	render.JSON(w, r, Error(msgs.Message(err, fallback)))
}

// RenderValidation отвечает 422 со списком нарушенных правил.
func RenderValidation(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusUnprocessableEntity)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		render.JSON(w, r, ValidationError(verrs))
		return
	}
	render.JSON(w, r, Error("invalid request"))
}

// RenderBadRequest отвечает 400 с сообщением msg.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, Error(msg))
}

// RenderUnauthorized отвечает 401, когда в контексте нет пользователя.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, Error("authentication credentials were not provided"))
}

// RenderEmpty отвечает на пустой список: 404 с сообщением msg или 200 с пустым массивом.
func RenderEmpty(w http.ResponseWriter, r *http.Request, notFound bool, msg string) {
	if notFound {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, Error(msg))
		return
	}
	render.JSON(w, r, StatusOKWithList([]any{}))
}
