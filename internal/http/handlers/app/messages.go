// Package app содержит общие для обработчиков приложений тексты ответов.
package app

import (
	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/response"
)

// Messages: тексты ответов для ошибок без собственного сообщения.
var Messages = response.Messages{
	apperr.ErrNotFound:   "App not found or does not belong to this user",
	apperr.ErrPermission: "Permission denied. This app does not belong to this user.",
}
