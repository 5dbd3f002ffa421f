// Schema Mapper: приводит таблицу источника с произвольными именами
// колонок к каноническим строкам по объявленному пользователем маппингу.
package mapper

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"planfact-service/internal/fileio"
	"planfact-service/internal/planfact/model"
	"planfact-service/internal/utils"
)

// Stats — счётчики деградаций качества данных плюс фактически
// разрешённый маппинг. Счётчики — предупреждения, а не ошибки: кривые
// ячейки в исходниках — норма, инструмент обязан выдать best-effort
// результат.
type Stats struct {
	Rows       int // строк на выходе
	Dropped    int // отброшено из-за пустого магазина/артикула
	BadNumeric int // нечисловых значений, приведённых к 0

	// Resolved — каноническое поле → реальный заголовок. Необязательное
	// поле, чья колонка не нашлась, сюда не попадает; состав ключа
	// соединения обязан считаться отсюда, а не из объявленного маппинга.
	Resolved map[string]string
}

// Clean валидирует маппинг против заголовков таблицы и строит
// канонические строки. required — обязательные поля роли
// (model.RequiredPlanFields / model.RequiredFactFields), role идёт
// в текст ошибки.
func Clean(t fileio.Table, m model.Mapping, required []string, role string) ([]model.Row, Stats, error) {
	resolved, err := resolveMapping(t.Headers, m, required, role)
	if err != nil {
		return nil, Stats{}, err
	}

	st := Stats{Resolved: resolved}
	rows := make([]model.Row, 0, len(t.Rows))
	for _, rec := range t.Rows {
		row, bad := buildRow(rec, resolved)
		st.BadNumeric += bad
		if row.Store == "" || row.Product == "" {
			st.Dropped++
			continue
		}
		rows = append(rows, row)
	}
	st.Rows = len(rows)
	return rows, st, nil
}

// resolveMapping — каноническое поле → реальный заголовок.
// Непустой маппинг обязательного поля, не нашедший колонку, считается
// отсутствующим (с подсказками по ближайшим заголовкам); необязательные
// поля в этом случае просто выпадают из результата.
func resolveMapping(headers []string, m model.Mapping, required []string, role string) (map[string]string, error) {
	req := make(map[string]bool, len(required))
	for _, f := range required {
		req[f] = true
	}

	resolved := map[string]string{}
	var missing []string
	hints := map[string][]string{}

	for _, b := range m.Bindings() {
		if strings.TrimSpace(b.Column) == "" {
			if req[b.Field] {
				missing = append(missing, b.Field)
			}
			continue
		}
		col := resolveColumn(headers, b.Column)
		if col == "" {
			if req[b.Field] {
				missing = append(missing, b.Field)
				if s := suggestColumns(headers, b.Column, 2); len(s) > 0 {
					hints[b.Field] = s
				}
			}
			continue
		}
		resolved[b.Field] = col
	}
	if len(missing) > 0 {
		return nil, &model.MissingRequiredFieldError{Role: role, Fields: missing, Hints: hints}
	}

	// одна колонка источника — не больше одного канонического поля
	byColumn := map[string][]string{}
	for _, b := range m.Bindings() {
		if col, ok := resolved[b.Field]; ok {
			byColumn[col] = append(byColumn[col], b.Field)
		}
	}
	cols := make([]string, 0, len(byColumn))
	for col := range byColumn {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		if fields := byColumn[col]; len(fields) > 1 {
			return nil, &model.AmbiguousMappingError{Column: col, Fields: fields}
		}
	}
	return resolved, nil
}

func buildRow(rec map[string]string, resolved map[string]string) (model.Row, int) {
	var row model.Row
	bad := 0

	text := func(field string) string {
		col, ok := resolved[field]
		if !ok {
			return ""
		}
		return cleanText(rec[col])
	}
	num := func(field string) decimal.Decimal {
		col, ok := resolved[field]
		if !ok {
			return decimal.Zero
		}
		raw := strings.TrimSpace(rec[col])
		if raw == "" {
			return decimal.Zero
		}
		d, ok2 := utils.ParseDecimalRU(raw)
		if !ok2 {
			bad++
			return decimal.Zero
		}
		return d
	}

	row.Store = text(model.FieldStore)
	row.Product = text(model.FieldProduct)
	row.Description = text(model.FieldDescription)
	row.Model = text(model.FieldModel)
	row.Brand = text(model.FieldBrand)
	row.Segment = text(model.FieldSegment)
	row.Price = num(model.FieldPrice)
	row.PlanQty = num(model.FieldPlanQty)
	row.PlanAmount = num(model.FieldPlanAmount)
	row.FactQty = num(model.FieldFactQty)
	return row, bad
}

// cleanText — срезаем обрамляющие пробелы; текстовые заглушки
// ("nan" после pandas-экспортов и т.п.) превращаем в пустую строку.
func cleanText(s string) string {
	s = strings.Trim(s, " \t  ")
	switch strings.ToLower(s) {
	case "nan", "none", "null":
		return ""
	}
	return s
}
