// Package models содержит доменные структуры пользователей, приложений,
// тарифов и подписок, а также типы для приема данных из JSON-запросов.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/app-subscriptions/internal/lib/period"
)

// Subscription связывает приложение с тарифом. Plan равен nil, если тариф
// был удален из каталога. AppName и AppOwnerID заполняются хранилищем при чтении.
type Subscription struct {
	ID         uuid.UUID
	AppID      uuid.UUID
	Plan       *Plan
	Active     bool
	StartDate  time.Time
	EndDate    time.Time
	AppName    string
	AppOwnerID uuid.UUID
}

// PlanID возвращает идентификатор тарифа или nil.
func (s Subscription) PlanID() *uuid.UUID {
	if s.Plan == nil {
		return nil
	}
	id := s.Plan.ID
	return &id
}

// SubscriptionView: представление подписки во внешнем API.
type SubscriptionView struct {
	ID        uuid.UUID `json:"id"`
	App       string    `json:"app"`
	Plan      *string   `json:"plan"`
	PlanPrice *string   `json:"plan_price"`
	Active    bool      `json:"active"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
}

// View возвращает представление подписки.
func (s Subscription) View() SubscriptionView {
	v := SubscriptionView{
		ID:        s.ID,
		App:       s.AppName,
		Active:    s.Active,
		StartDate: s.StartDate.Format(period.DateLayout),
		EndDate:   s.EndDate.Format(period.DateLayout),
	}
	if s.Plan != nil {
		name := s.Plan.Name
		price := s.Plan.Price.StringFixed(2)
		v.Plan = &name
		v.PlanPrice = &price
	}
	return v
}

// SubscriptionPatch: частичное обновление подписки.
// ResetEndDate выставляется, когда клиент явно передал end_date: null.
type SubscriptionPatch struct {
	Plan         *string
	Active       *bool
	EndDate      *time.Time
	ResetEndDate bool
}

// SubscriptionEvent: сообщение о смене тарифа, публикуемое в брокер.
type SubscriptionEvent struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	AppID          uuid.UUID `json:"app_id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	Plan           string    `json:"plan"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
}

// AppEvent: сообщение о создании или удалении приложения.
type AppEvent struct {
	AppID   uuid.UUID `json:"app_id"`
	OwnerID uuid.UUID `json:"owner_id"`
	Name    string    `json:"name"`
}
