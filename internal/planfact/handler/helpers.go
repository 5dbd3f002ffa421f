package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"planfact-service/internal/planfact/mapper"
	"planfact-service/internal/planfact/model"
	"planfact-service/internal/planfact/summary"
)

// inputError — ошибка входа запроса (не ошибки маппинга из model):
// битая multipart-форма, нечитаемый файл и т.п.
type inputError struct{ msg string }

func (e *inputError) Error() string { return e.msg }

func badInput(msg string) error { return &inputError{msg: msg} }

// planMapping собирает маппинг плана из полей формы. Имена колонок
// поддерживают альтернативы через "|" (см. mapper).
func planMapping(r *http.Request) model.Mapping {
	return model.Mapping{
		Store:       r.FormValue("plan_store"),
		Product:     r.FormValue("plan_product"),
		Description: r.FormValue("plan_desc"),
		Model:       r.FormValue("plan_model"),
		Brand:       r.FormValue("plan_brand"),
		Segment:     r.FormValue("plan_segment"),
		Price:       r.FormValue("plan_price"),
		PlanQty:     r.FormValue("plan_qty"),
		PlanAmount:  r.FormValue("plan_amount"),
	}
}

func factMapping(r *http.Request) model.Mapping {
	return model.Mapping{
		Store:       r.FormValue("fact_store"),
		Product:     r.FormValue("fact_product"),
		Description: r.FormValue("fact_desc"),
		Model:       r.FormValue("fact_model"),
		FactQty:     r.FormValue("fact_qty"),
	}
}

func sortKey(s string) summary.SortKey {
	switch summary.SortKey(s) {
	case summary.SortQty, summary.SortAmount:
		return summary.SortKey(s)
	default:
		return summary.SortQtyPct
	}
}

func statsWarnings(role string, st mapper.Stats) []string {
	var out []string
	if st.Dropped > 0 {
		out = append(out, fmt.Sprintf("%s: отброшено строк без магазина/артикула: %d", role, st.Dropped))
	}
	if st.BadNumeric > 0 {
		out = append(out, fmt.Sprintf("%s: нечисловых значений приведено к 0: %d", role, st.BadNumeric))
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func toDecimal(s string, def int64) decimal.Decimal {
	if s == "" {
		return decimal.NewFromInt(def)
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return decimal.NewFromInt(def)
	}
	return d
}
