package model

import (
	"fmt"
	"sort"
	"strings"
)

// Ошибки конфигурации: неполное/противоречивое сопоставление от пользователя.
// Не фатальны для сервиса — пользователь исправляет маппинг и повторяет запрос.

// MissingRequiredFieldError — для роли не сопоставлено (или не найдено в
// заголовках) обязательное поле. Hints подсказывают ближайшие по написанию
// колонки источника, когда колонка была указана, но не нашлась.
type MissingRequiredFieldError struct {
	Role   string              // "plan" | "fact"
	Fields []string            // канонические имена недостающих полей
	Hints  map[string][]string // поле → похожие заголовки источника
}

func (e *MissingRequiredFieldError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: не сопоставлены обязательные поля: %s", e.Role, strings.Join(e.Fields, ", "))
	if len(e.Hints) > 0 {
		keys := make([]string, 0, len(e.Hints))
		for k := range e.Hints {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "; %s: возможно, имелась в виду колонка %q", k, strings.Join(e.Hints[k], `", "`))
		}
	}
	return b.String()
}

// AmbiguousMappingError — одна колонка источника указана сразу для
// нескольких канонических полей.
type AmbiguousMappingError struct {
	Column string
	Fields []string
}

func (e *AmbiguousMappingError) Error() string {
	return fmt.Sprintf("колонка %q сопоставлена сразу нескольким полям: %s",
		e.Column, strings.Join(e.Fields, ", "))
}

// UnrecognizedWideLayoutError — в широком формате не нашлось ни одной
// полной тройки колонок (магазин / штуки / сумма).
type UnrecognizedWideLayoutError struct {
	Stores, Qty, Amount int // сколько колонок каждой группы распознано
}

func (e *UnrecognizedWideLayoutError) Error() string {
	return fmt.Sprintf("широкий формат не распознан: найдено колонок магазинов=%d, штук=%d, сумм=%d",
		e.Stores, e.Qty, e.Amount)
}
