package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planfact-service/internal/fileio"
	"planfact-service/internal/planfact/mapper"
	"planfact-service/internal/planfact/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func planRow(store, product string, qty, amount, price string) model.Row {
	return model.Row{Store: store, Product: product, PlanQty: d(qty), PlanAmount: d(amount), Price: d(price)}
}

func factRow(store, product string, qty string) model.Row {
	return model.Row{Store: store, Product: product, FactQty: d(qty)}
}

func TestReconcile_MatchedRow(t *testing.T) {
	plan := []model.Row{planRow("5", "A1", "10", "1000", "100")}
	fact := []model.Row{factRow("5", "A1", "7")}

	rows := Reconcile(plan, fact, Key{})
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, "5", r.Store)
	assert.Equal(t, "A1", r.Product)
	assert.True(t, r.FactAmount.Equal(d("700")), "fact_amount = fact_qty * plan price, got %s", r.FactAmount)
	assert.True(t, r.QtyVar.Equal(d("-3")), "qty variance, got %s", r.QtyVar)
	assert.True(t, r.QtyVarPct.Equal(d("-30")), "qty variance pct, got %s", r.QtyVarPct)
	assert.True(t, r.AmountVar.Equal(d("-300")), "amount variance, got %s", r.AmountVar)
	assert.True(t, r.AmountVarPct.Equal(d("-30")), "amount variance pct, got %s", r.AmountVarPct)
}

func TestReconcile_FactOnlyRow(t *testing.T) {
	// товар без плана: нули подставляются до расчёта производных
	fact := []model.Row{factRow("9", "Z9", "4")}

	rows := Reconcile(nil, fact, Key{})
	require.Len(t, rows, 1)

	r := rows[0]
	assert.True(t, r.PlanQty.IsZero())
	assert.True(t, r.PlanAmount.IsZero())
	assert.True(t, r.FactAmount.IsZero(), "цена неизвестна — сумма факта 0")
	assert.True(t, r.QtyVar.Equal(d("4")), "qty variance equals fact qty exactly, got %s", r.QtyVar)
	assert.True(t, r.QtyVarPct.Equal(model.UnboundedGrowthPct), "got %s", r.QtyVarPct)
	assert.True(t, r.AmountVarPct.IsZero(), "обе суммы нулевые — 0, а не сентинел")
}

func TestReconcile_PlanOnlyRow(t *testing.T) {
	plan := []model.Row{planRow("5", "B2", "10", "500", "50")}

	rows := Reconcile(plan, nil, Key{})
	require.Len(t, rows, 1)

	r := rows[0]
	assert.True(t, r.FactQty.IsZero())
	assert.True(t, r.QtyVar.Equal(d("-10")))
	assert.True(t, r.QtyVarPct.Equal(d("-100")))
}

func TestReconcile_JoinTotality(t *testing.T) {
	// каждая пара (store, product) из объединения входов — ровно одна строка
	plan := []model.Row{
		planRow("1", "A", "1", "10", "10"),
		planRow("1", "B", "2", "20", "10"),
		planRow("2", "A", "3", "30", "10"),
	}
	fact := []model.Row{
		factRow("1", "A", "1"),
		factRow("2", "C", "5"),
	}

	rows := Reconcile(plan, fact, Key{})
	seen := map[[2]string]int{}
	for _, r := range rows {
		seen[[2]string{r.Store, r.Product}]++
	}
	want := [][2]string{{"1", "A"}, {"1", "B"}, {"2", "A"}, {"2", "C"}}
	require.Len(t, rows, len(want))
	for _, k := range want {
		assert.Equal(t, 1, seen[k], "pair %v", k)
	}
}

func TestReconcile_DuplicatesAggregated(t *testing.T) {
	plan := []model.Row{
		planRow("1", "A", "1", "10", "10"),
		planRow("1", "A", "2", "20", "10"),
	}
	fact := []model.Row{
		factRow("1", "A", "1"),
		factRow("1", "A", "1"),
	}

	rows := Reconcile(plan, fact, Key{})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].PlanQty.Equal(d("3")))
	assert.True(t, rows[0].PlanAmount.Equal(d("30")))
	assert.True(t, rows[0].FactQty.Equal(d("2")))
}

func TestReconcile_KeyExtension(t *testing.T) {
	// одинаковый артикул в разных каталогах разводится описанием,
	// когда описание сопоставлено с обеих сторон
	plan := []model.Row{
		{Store: "1", Product: "A", Description: "нож", PlanQty: d("1"), PlanAmount: d("10"), Price: d("10")},
		{Store: "1", Product: "A", Description: "вилка", PlanQty: d("2"), PlanAmount: d("20"), Price: d("10")},
	}
	fact := []model.Row{
		{Store: "1", Product: "A", Description: "нож", FactQty: d("1")},
	}

	withKey := Reconcile(plan, fact, Key{UseDescription: true})
	assert.Len(t, withKey, 2)

	without := Reconcile(plan, fact, Key{})
	assert.Len(t, without, 1, "без расширения ключа строки схлопываются")
}

func TestKeyFor(t *testing.T) {
	plan := map[string]string{
		model.FieldStore:       "Магазин",
		model.FieldProduct:     "Артикул",
		model.FieldDescription: "Описание",
		model.FieldModel:       "Модель",
	}
	fact := map[string]string{
		model.FieldStore:       "Магазин",
		model.FieldProduct:     "Артикул",
		model.FieldDescription: "Описание",
	}

	k := KeyFor(plan, fact)
	assert.True(t, k.UseDescription, "описание нашлось с обеих сторон")
	assert.False(t, k.UseModel, "модель есть только в плане")
}

func TestReconcile_UnresolvedDescriptionStaysOutOfKey(t *testing.T) {
	// описание объявлено в обоих маппингах, но в таблице факта такой
	// колонки нет: поле выпадает из разрешённого маппинга и не должно
	// попадать в ключ, иначе совпавшая пара разъедется на две строки
	planTab := fileio.Table{
		Headers: []string{"Магазин", "Артикул", "Описание", "План шт"},
		Rows: []map[string]string{
			{"Магазин": "5", "Артикул": "A1", "Описание": "нож", "План шт": "10"},
		},
	}
	factTab := fileio.Table{
		Headers: []string{"Магазин", "Артикул", "Факт шт"},
		Rows: []map[string]string{
			{"Магазин": "5", "Артикул": "A1", "Факт шт": "7"},
		},
	}

	planMap := model.Mapping{Store: "Магазин", Product: "Артикул", Description: "Описание", PlanQty: "План шт"}
	factMap := model.Mapping{Store: "Магазин", Product: "Артикул", Description: "Описание", FactQty: "Факт шт"}

	planRows, planStats, err := mapper.Clean(planTab, planMap, model.RequiredPlanFields, "план")
	require.NoError(t, err)
	factRows, factStats, err := mapper.Clean(factTab, factMap, model.RequiredFactFields, "факт")
	require.NoError(t, err)

	k := KeyFor(planStats.Resolved, factStats.Resolved)
	assert.False(t, k.UseDescription)

	rows := Reconcile(planRows, factRows, k)
	require.Len(t, rows, 1, "пара (5, A1) обязана дать одну строку сверки")
	assert.True(t, rows[0].QtyVar.Equal(d("-3")))
}

func TestReconcile_Deterministic(t *testing.T) {
	plan := []model.Row{
		planRow("2", "B", "1", "10", "10"),
		planRow("1", "A", "2", "20", "10"),
	}
	fact := []model.Row{factRow("3", "C", "1")}

	a := Reconcile(plan, fact, Key{})
	b := Reconcile(plan, fact, Key{})
	assert.Equal(t, a, b)
}
