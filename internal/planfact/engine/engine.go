// Reconciliation Engine: full outer join канонических строк План×Факт
// по составному бизнес-ключу и расчёт производных полей отклонений.
package engine

import (
	"sort"
	"strings"

	"planfact-service/internal/planfact/model"
)

// Key — состав ключа соединения. Базовая часть (store, product) всегда
// на месте; description/model включаются только когда колонка реально
// нашлась с обеих сторон — это страховка от коллизий артикулов между
// чужими каталогами.
type Key struct {
	UseDescription bool
	UseModel       bool
}

// KeyFor выводит ключ из разрешённых маппингов обеих сторон
// (mapper.Stats.Resolved). Объявленное, но не нашедшее колонку поле в
// ключ не попадает: иначе сторона без колонки получила бы пустое
// значение и совпавшая пара разъехалась бы на plan-only + fact-only.
func KeyFor(plan, fact map[string]string) Key {
	both := func(f string) bool {
		_, p := plan[f]
		_, q := fact[f]
		return p && q
	}
	return Key{
		UseDescription: both(model.FieldDescription),
		UseModel:       both(model.FieldModel),
	}
}

func (k Key) of(r model.Row) string {
	parts := []string{r.Store, r.Product}
	if k.UseDescription {
		parts = append(parts, r.Description)
	}
	if k.UseModel {
		parts = append(parts, r.Model)
	}
	return strings.Join(parts, "\x1f")
}

// Reconcile строит таблицу сверки. Outer join осознанный: товар из плана
// без продаж и продажа без плана — ровно та информация, ради которой
// инструмент существует; inner/left её спрятали бы.
//
// Дубли ключа внутри стороны суммируются по количествам/суммам (как
// повторные строки одного товара в выгрузке). Порядок результата —
// по ключу, результат детерминирован для фиксированных входов.
func Reconcile(plan, fact []model.Row, key Key) []model.ReconciledRow {
	acc := map[string]*model.ReconciledRow{}
	order := []string{}

	get := func(k string, r model.Row) *model.ReconciledRow {
		if row, ok := acc[k]; ok {
			// текстовые атрибуты: берём первый непустой
			fillText(row, r)
			return row
		}
		row := &model.ReconciledRow{
			Store:       r.Store,
			Product:     r.Product,
			Description: r.Description,
			Model:       r.Model,
			Brand:       r.Brand,
			Segment:     r.Segment,
		}
		acc[k] = row
		order = append(order, k)
		return row
	}

	for _, r := range plan {
		row := get(key.of(r), r)
		row.PlanQty = row.PlanQty.Add(r.PlanQty)
		row.PlanAmount = row.PlanAmount.Add(r.PlanAmount)
		if row.Price.IsZero() && !r.Price.IsZero() {
			row.Price = r.Price
		}
	}
	for _, r := range fact {
		row := get(key.of(r), r)
		row.FactQty = row.FactQty.Add(r.FactQty)
	}

	// Заполнение нулями уже гарантировано типом (decimal.Zero по умолчанию),
	// производные считаются строго после слияния обеих сторон: цена для
	// суммы факта известна только со стороны плана.
	out := make([]model.ReconciledRow, 0, len(order))
	sort.Strings(order)
	for _, k := range order {
		row := acc[k]
		derive(row)
		out = append(out, *row)
	}
	return out
}

func fillText(row *model.ReconciledRow, r model.Row) {
	if row.Description == "" {
		row.Description = r.Description
	}
	if row.Model == "" {
		row.Model = r.Model
	}
	if row.Brand == "" {
		row.Brand = r.Brand
	}
	if row.Segment == "" {
		row.Segment = r.Segment
	}
	if row.Price.IsZero() && !r.Price.IsZero() {
		row.Price = r.Price
	}
}

func derive(row *model.ReconciledRow) {
	row.FactAmount = row.FactQty.Mul(row.Price)
	row.QtyVar = row.FactQty.Sub(row.PlanQty)
	row.AmountVar = row.FactAmount.Sub(row.PlanAmount)
	row.QtyVarPct = model.VariancePct(row.QtyVar, row.PlanQty, row.FactQty)
	row.AmountVarPct = model.VariancePct(row.AmountVar, row.PlanAmount, row.FactAmount)
}
