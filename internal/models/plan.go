package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Названия тарифов каталога.
const (
	PlanFree     = "Free"
	PlanStandard = "Standard"
	PlanPro      = "Pro"
)

// Plan: тариф. Строки каталога создаются миграцией и не меняются через API.
type Plan struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// PlanView: представление тарифа во внешнем API.
type PlanView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price string    `json:"price"`
}

// View возвращает представление тарифа с ценой в виде строки с двумя знаками.
func (p Plan) View() PlanView {
	return PlanView{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price.StringFixed(2),
	}
}
