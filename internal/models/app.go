package models

import (
	"time"

	"github.com/google/uuid"
)

// App: именованный ресурс, принадлежащий ровно одному пользователю.
// Пара (OwnerID, Name) уникальна.
type App struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"user"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"-"`
}

// AppRequest: тело запроса на создание приложения.
type AppRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
}

// AppPatch: частичное обновление приложения; nil означает «не менять».
type AppPatch struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=1"`
}

// Empty сообщает, что в запросе нет ни одного поля.
func (p AppPatch) Empty() bool {
	return p.Name == nil && p.Description == nil
}
