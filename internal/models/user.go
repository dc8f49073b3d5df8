// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи и хэш пароля.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           uuid.UUID `json:"id"`       // Уникальный идентификатор пользователя
	Username     string    `json:"username"` // Имя пользователя (уникальное)
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"` // Хэш пароля пользователя
	CreatedAt    time.Time `json:"-"`
}

// FullName возвращает имя и фамилию через пробел.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// RegisterRequest: входные данные для регистрации.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,max=150,personname"`
	LastName  string `json:"last_name" validate:"required,max=150,personname"`
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,numeric,len=10"`
}

// AuthResult: ответ на успешную регистрацию или вход.
type AuthResult struct {
	FullName       string `json:"fullname"`
	Message        string `json:"message"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	Token          string `json:"token"`
	TokenExpiresIn int64  `json:"token_expires_in"` // секунд до истечения токена
}
