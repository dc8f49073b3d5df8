// Package validation настраивает валидатор входных данных.
package validation

import (
	"unicode"

	"github.com/go-playground/validator"
)

// TagPersonName: правило для имени и фамилии: буквы, пробел, апостроф и дефис.
const TagPersonName = "personname"

// New возвращает валидатор с зарегистрированными правилами сервиса.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation(TagPersonName, personName)
	return v
}

func personName(fl validator.FieldLevel) bool {
	return IsPersonName(fl.Field().String())
}

// IsPersonName сообщает, что строка непуста и состоит из букв, пробелов, апострофов и дефисов.
func IsPersonName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != ' ' && r != '\'' && r != '-' {
			return false
		}
	}
	return true
}
