// Package sl содержит вспомогательные функции для работы с логгером slog.
package sl

import (
	"log/slog"

	"github.com/google/uuid"
)

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
//
// Пример:
//
//	log.Error("failed to create app", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// UserID возвращает slog.Attr с идентификатором пользователя, от имени которого выполняется запрос.
func UserID(id uuid.UUID) slog.Attr {
	return slog.String("user_id", id.String())
}
