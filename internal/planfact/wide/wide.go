// Широкий формат плана: по одной тройке колонок (магазин / штуки / сумма)
// на каждый магазин. Flatten разворачивает такой лист в плоский вид —
// одна строка на пару (товар, магазин).
//
// Нечёткое распознавание имён колонок живёт только здесь, на границе:
// дальше по конвейеру ходят уже канонические имена.
package wide

import (
	"fmt"
	"sort"
	"strings"

	"planfact-service/internal/fileio"
	"planfact-service/internal/planfact/model"
)

// Подстроки-маркеры групп, латиница и кириллица.
var (
	storeMarks  = []string{"magazin", "магазин"}
	qtyMarks    = []string{"stuki", "штук"}
	amountMarks = []string{"grn", "грн", "сумм"}
)

// layout — колонки, разнесённые по трём группам, каждая группа
// отсортирована по имени: i-я колонка магазина соответствует i-й
// колонке штук и i-й колонке суммы.
type layout struct {
	stores  []string
	qty     []string
	amounts []string
}

func classify(headers []string, id map[string]bool) layout {
	var l layout
	for _, h := range headers {
		if id[h] {
			continue
		}
		lh := strings.ToLower(h)
		switch {
		case containsAny(lh, storeMarks):
			l.stores = append(l.stores, h)
		case containsAny(lh, qtyMarks):
			l.qty = append(l.qty, h)
		case containsAny(lh, amountMarks):
			l.amounts = append(l.amounts, h)
		}
	}
	sort.Strings(l.stores)
	sort.Strings(l.qty)
	sort.Strings(l.amounts)
	return l
}

func containsAny(s string, marks []string) bool {
	for _, m := range marks {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// Flatten разворачивает широкую таблицу в плоскую. idCols — колонки,
// описывающие товар и не зависящие от магазина (артикул, описание,
// цена, бренд, сегмент). Результат несёт idCols плюс канонические
// store / plan_qty / plan_amount.
//
// Неравное число колонок в группах — не ошибка: разворачиваем по
// min(размеров) троек и возвращаем предупреждение, обычно это признак
// структурной кривизны исходника. Ошибка только когда не нашлось ни
// одной полной тройки.
func Flatten(t fileio.Table, idCols []string) (fileio.Table, []string, error) {
	known := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		known[h] = true
	}
	id := map[string]bool{}
	var keepID []string
	for _, c := range idCols {
		c = strings.TrimSpace(c)
		if c != "" && known[c] && !id[c] {
			id[c] = true
			keepID = append(keepID, c)
		}
	}

	l := classify(t.Headers, id)
	n := len(l.stores)
	if len(l.qty) < n {
		n = len(l.qty)
	}
	if len(l.amounts) < n {
		n = len(l.amounts)
	}
	if n == 0 {
		return fileio.Table{}, nil, &model.UnrecognizedWideLayoutError{
			Stores: len(l.stores), Qty: len(l.qty), Amount: len(l.amounts),
		}
	}

	var warnings []string
	if len(l.stores) != len(l.qty) || len(l.qty) != len(l.amounts) {
		warnings = append(warnings, fmt.Sprintf(
			"разное число колонок в широком формате: магазины (%d), штуки (%d), суммы (%d) — разворачиваем по %d",
			len(l.stores), len(l.qty), len(l.amounts), n))
	}

	out := fileio.Table{
		Headers: append(append([]string{}, keepID...),
			model.FieldStore, model.FieldPlanQty, model.FieldPlanAmount),
	}
	for i := 0; i < n; i++ {
		for _, rec := range t.Rows {
			// код магазина — непрозрачный идентификатор, даже если выглядит
			// числом; никакой числовой коэрции, только сравнение на равенство
			store := strings.TrimSpace(rec[l.stores[i]])
			if store == "" {
				continue
			}
			m := make(map[string]string, len(keepID)+3)
			for _, c := range keepID {
				m[c] = rec[c]
			}
			m[model.FieldStore] = store
			m[model.FieldPlanQty] = rec[l.qty[i]]
			m[model.FieldPlanAmount] = rec[l.amounts[i]]
			out.Rows = append(out.Rows, m)
		}
	}
	return out, warnings, nil
}
