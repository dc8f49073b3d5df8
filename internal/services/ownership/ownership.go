// Package ownership решает, может ли пользователь обращаться к ресурсу.
// На путях чтения чужой ресурс неотличим от отсутствующего.
package ownership

import (
	"github.com/google/uuid"

	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
)

// Guard проверяет владение ресурсом.
type Guard struct {
	concealForeign bool
}

// New создает Guard. При concealForeign изменяющие операции над чужим
// ресурсом тоже отвечают apperr.ErrNotFound вместо apperr.ErrPermission.
func New(concealForeign bool) *Guard {
	return &Guard{concealForeign: concealForeign}
}

// Owns сообщает, что principal является владельцем.
func Owns(principal, owner uuid.UUID) bool {
	return principal != uuid.Nil && principal == owner
}

// Read разрешает чтение только владельцу; иначе apperr.ErrNotFound.
func (g *Guard) Read(principal, owner uuid.UUID) error {
	if Owns(principal, owner) {
		return nil
	}
	return apperr.ErrNotFound
}

// Mutate разрешает изменение только владельцу.
func (g *Guard) Mutate(principal, owner uuid.UUID) error {
	if Owns(principal, owner) {
		return nil
	}
	if g.concealForeign {
		return apperr.ErrNotFound
	}
	return apperr.ErrPermission
}
