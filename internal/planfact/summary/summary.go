// Свод по таблице сверки: агрегаты по магазину и магазин×сегмент,
// отбор проблемных магазинов по порогу отклонения, детальные метрики
// для drill-down. Проценты всегда пересчитываются из просуммированных
// числителей/знаменателей — усреднять построчные проценты нельзя.
package summary

import (
	"sort"

	"github.com/shopspring/decimal"

	"planfact-service/internal/planfact/model"
)

// SortKey — поле сортировки проблемных магазинов.
type SortKey string

const (
	SortQtyPct SortKey = "qty_pct"
	SortQty    SortKey = "qty"
	SortAmount SortKey = "amount"
)

// ByStore — один агрегат на магазин, отсортировано по магазину.
func ByStore(rows []model.ReconciledRow) []model.Summary {
	return aggregate(rows, false)
}

// ByStoreSegment — один агрегат на пару магазин×сегмент.
func ByStoreSegment(rows []model.ReconciledRow) []model.Summary {
	return aggregate(rows, true)
}

func aggregate(rows []model.ReconciledRow, withSegment bool) []model.Summary {
	acc := map[string]*model.Summary{}
	for _, r := range rows {
		k := r.Store
		if withSegment {
			k = r.Store + "\x1f" + r.Segment
		}
		s, ok := acc[k]
		if !ok {
			s = &model.Summary{Store: r.Store}
			if withSegment {
				s.Segment = r.Segment
			}
			acc[k] = s
		}
		s.PlanQty = s.PlanQty.Add(r.PlanQty)
		s.FactQty = s.FactQty.Add(r.FactQty)
		s.PlanAmount = s.PlanAmount.Add(r.PlanAmount)
		s.FactAmount = s.FactAmount.Add(r.FactAmount)
	}

	out := make([]model.Summary, 0, len(acc))
	for _, s := range acc {
		s.QtyVar = s.FactQty.Sub(s.PlanQty)
		s.AmountVar = s.FactAmount.Sub(s.PlanAmount)
		s.QtyVarPct = model.VariancePct(s.QtyVar, s.PlanQty, s.FactQty)
		s.AmountVarPct = model.VariancePct(s.AmountVar, s.PlanAmount, s.FactAmount)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Store != out[j].Store {
			return out[i].Store < out[j].Store
		}
		return out[i].Segment < out[j].Segment
	})
	return out
}

// Problems отбирает магазины с |отклонением в штуках, %| выше порога и
// сортирует по убыванию модуля выбранного поля: большой излишек и
// большой недовоз — одинаково «проблемы». Пустой результат — валидный
// успех («порог никто не превысил»), не ошибка.
func Problems(sums []model.Summary, threshold decimal.Decimal, by SortKey) []model.Summary {
	out := make([]model.Summary, 0, len(sums))
	for _, s := range sums {
		if s.QtyVarPct.Abs().GreaterThan(threshold) {
			out = append(out, s)
		}
	}
	sortVal := func(s model.Summary) decimal.Decimal {
		switch by {
		case SortQty:
			return s.QtyVar
		case SortAmount:
			return s.AmountVar
		default:
			return s.QtyVarPct
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := sortVal(out[i]).Abs(), sortVal(out[j]).Abs()
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return out[i].Store < out[j].Store
	})
	return out
}

// Stores — отсортированный список магазинов таблицы сверки.
func Stores(rows []model.ReconciledRow) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range rows {
		if !seen[r.Store] {
			seen[r.Store] = true
			out = append(out, r.Store)
		}
	}
	sort.Strings(out)
	return out
}

// Filter — срез строк по магазину и необязательным сегменту/бренду.
func Filter(rows []model.ReconciledRow, store, segment, brand string) []model.ReconciledRow {
	var out []model.ReconciledRow
	for _, r := range rows {
		if store != "" && r.Store != store {
			continue
		}
		if segment != "" && r.Segment != segment {
			continue
		}
		if brand != "" && r.Brand != brand {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Metrics — ключевые показатели среза для детального анализа.
func Metrics(rows []model.ReconciledRow) model.Metrics {
	var m model.Metrics
	priceSum := decimal.Zero
	for _, r := range rows {
		m.PlanQty = m.PlanQty.Add(r.PlanQty)
		m.FactQty = m.FactQty.Add(r.FactQty)
		m.PlanAmount = m.PlanAmount.Add(r.PlanAmount)
		m.FactAmount = m.FactAmount.Add(r.FactAmount)
		priceSum = priceSum.Add(r.Price)
		if r.FactQty.IsPositive() {
			m.ItemsInStock++
		} else {
			m.ItemsOutOfStock++
		}
	}
	m.TotalItems = len(rows)
	m.QtyDeviation = m.FactQty.Sub(m.PlanQty)
	m.AmountDeviation = m.FactAmount.Sub(m.PlanAmount)
	m.QtyCompletion = completion(m.FactQty, m.PlanQty)
	m.AmountCompletion = completion(m.FactAmount, m.PlanAmount)
	if len(rows) > 0 {
		m.AvgPrice = priceSum.Div(decimal.NewFromInt(int64(len(rows))))
	}
	return m
}

// процент выполнения: fact/plan*100, при нулевом плане — 0
func completion(fact, plan decimal.Decimal) decimal.Decimal {
	if plan.IsZero() {
		return decimal.Zero
	}
	return fact.Div(plan).Mul(decimal.NewFromInt(100))
}

// TopDeviations — n строк с наибольшим |отклонением в штуках|.
// Вход не мутируется.
func TopDeviations(rows []model.ReconciledRow, n int) []model.ReconciledRow {
	out := append([]model.ReconciledRow{}, rows...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].QtyVar.Abs(), out[j].QtyVar.Abs()
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		if out[i].Store != out[j].Store {
			return out[i].Store < out[j].Store
		}
		return out[i].Product < out[j].Product
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
