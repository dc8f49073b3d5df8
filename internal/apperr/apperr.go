// Package apperr описывает виды ошибок бизнес-логики, которые HTTP-слой
// переводит в коды ответа. Сервисы возвращают либо сами сентинельные ошибки,
// либо *Error с сообщением для клиента.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: ресурс отсутствует (или, на путях чтения, принадлежит другому пользователю).
	ErrNotFound = errors.New("not found")
	// ErrPermission: ресурс существует, но принадлежит другому пользователю.
	ErrPermission = errors.New("permission denied")
	// ErrConflict: нарушение уникальности.
	ErrConflict = errors.New("already exists")
	// ErrValidation: некорректные входные данные.
	ErrValidation = errors.New("validation failed")
	// ErrConfiguration: фатальная ошибка конфигурации (например, нет тарифа Free).
	ErrConfiguration = errors.New("configuration error")
	// ErrUnauthenticated: неверные учетные данные или токен.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Error связывает вид ошибки с сообщением, которое можно показать клиенту.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New создает ошибку заданного вида с сообщением для клиента.
func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf: вариант New с форматированием.
func Newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Message возвращает сообщение для клиента. Если в цепочке нет *Error,
// используется текст вида ошибки, а для неизвестных ошибок берется fallback.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	for _, kind := range []error{ErrNotFound, ErrPermission, ErrConflict, ErrValidation, ErrUnauthenticated} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return fallback
}
