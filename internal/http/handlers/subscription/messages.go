// Package subscription содержит общие для обработчиков подписок тексты ответов.
package subscription

import (
	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/response"
)

// Messages: тексты ответов для ошибок без собственного сообщения.
var Messages = response.Messages{
	apperr.ErrNotFound:   "Subscription not found",
	apperr.ErrPermission: "Permission denied. This subscription does not belong to this user.",
}
