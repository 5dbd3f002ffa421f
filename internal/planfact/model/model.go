package model

import "github.com/shopspring/decimal"

// Канонические поля, к которым приводятся обе таблицы.
const (
	FieldStore       = "store"
	FieldProduct     = "product_id"
	FieldDescription = "description"
	FieldModel       = "model"
	FieldBrand       = "brand"
	FieldSegment     = "segment"
	FieldPrice       = "price"
	FieldPlanQty     = "plan_qty"
	FieldPlanAmount  = "plan_amount"
	FieldFactQty     = "fact_qty"
)

// Обязательные поля по ролям. Контракт объявлен статически, а не
// выводится из того, какие колонки случайно пришли в этом запуске.
var (
	RequiredPlanFields = []string{FieldStore, FieldProduct, FieldPlanQty, FieldPlanAmount}
	RequiredFactFields = []string{FieldStore, FieldProduct, FieldFactQty}
)

// UnboundedGrowthPct — сентинел для процента отклонения при plan == 0 и
// fact != 0 («купили без плана»). Большое конечное число вместо ±Inf:
// бесконечность не переживает сериализацию в xlsx/json.
var UnboundedGrowthPct = decimal.NewFromInt(999)

// Mapping — каноническое поле → имя колонки источника.
// Пустая строка = поле не сопоставлено. Имя колонки поддерживает
// альтернативы через "|" (например "Артикул|ART").
type Mapping struct {
	Store       string
	Product     string
	Description string
	Model       string
	Brand       string
	Segment     string
	Price       string
	PlanQty     string
	PlanAmount  string
	FactQty     string
}

// FieldColumn — одна пара сопоставления в порядке канонической схемы.
type FieldColumn struct {
	Field  string
	Column string
}

// Bindings возвращает все пары поле→колонка, включая пустые.
func (m Mapping) Bindings() []FieldColumn {
	return []FieldColumn{
		{FieldStore, m.Store},
		{FieldProduct, m.Product},
		{FieldDescription, m.Description},
		{FieldModel, m.Model},
		{FieldBrand, m.Brand},
		{FieldSegment, m.Segment},
		{FieldPrice, m.Price},
		{FieldPlanQty, m.PlanQty},
		{FieldPlanAmount, m.PlanAmount},
		{FieldFactQty, m.FactQty},
	}
}

// Column возвращает колонку источника для канонического поля.
func (m Mapping) Column(field string) string {
	for _, b := range m.Bindings() {
		if b.Field == field {
			return b.Column
		}
	}
	return ""
}

// Row — каноническая строка после сопоставления: один товар в одном
// магазине. Store и Product после нормализации никогда не пустые,
// числовые поля никогда не null (отсутствующие = 0).
type Row struct {
	Store       string
	Product     string
	Description string
	Model       string
	Brand       string
	Segment     string
	Price       decimal.Decimal
	PlanQty     decimal.Decimal
	PlanAmount  decimal.Decimal
	FactQty     decimal.Decimal
}

// ReconciledRow — результат full outer join План×Факт.
// Все числовые поля конечны и заполнены: отсутствующая сторона
// заполняется нулями ДО вычисления производных полей.
type ReconciledRow struct {
	Store        string          `json:"store"`
	Product      string          `json:"product"`
	Description  string          `json:"description,omitempty"`
	Model        string          `json:"model,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	Segment      string          `json:"segment,omitempty"`
	Price        decimal.Decimal `json:"price"`
	PlanQty      decimal.Decimal `json:"planQty"`
	FactQty      decimal.Decimal `json:"factQty"`
	PlanAmount   decimal.Decimal `json:"planAmount"`
	FactAmount   decimal.Decimal `json:"factAmount"`
	QtyVar       decimal.Decimal `json:"qtyVariance"`
	AmountVar    decimal.Decimal `json:"amountVariance"`
	QtyVarPct    decimal.Decimal `json:"qtyVariancePct"`
	AmountVarPct decimal.Decimal `json:"amountVariancePct"`
}

// Summary — агрегат по магазину (Segment пустой) или по магазин×сегмент.
// Проценты пересчитаны из просуммированных числителей/знаменателей,
// а не усреднены по строкам.
type Summary struct {
	Store        string          `json:"store"`
	Segment      string          `json:"segment,omitempty"`
	PlanQty      decimal.Decimal `json:"planQty"`
	FactQty      decimal.Decimal `json:"factQty"`
	PlanAmount   decimal.Decimal `json:"planAmount"`
	FactAmount   decimal.Decimal `json:"factAmount"`
	QtyVar       decimal.Decimal `json:"qtyVariance"`
	AmountVar    decimal.Decimal `json:"amountVariance"`
	QtyVarPct    decimal.Decimal `json:"qtyVariancePct"`
	AmountVarPct decimal.Decimal `json:"amountVariancePct"`
}

// Metrics — ключевые показатели по срезу строк (детальный анализ магазина).
type Metrics struct {
	PlanQty          decimal.Decimal `json:"planQty"`
	FactQty          decimal.Decimal `json:"factQty"`
	PlanAmount       decimal.Decimal `json:"planAmount"`
	FactAmount       decimal.Decimal `json:"factAmount"`
	QtyDeviation     decimal.Decimal `json:"qtyDeviation"`
	AmountDeviation  decimal.Decimal `json:"amountDeviation"`
	QtyCompletion    decimal.Decimal `json:"qtyCompletionPct"`
	AmountCompletion decimal.Decimal `json:"amountCompletionPct"`
	TotalItems       int             `json:"totalItems"`
	ItemsInStock     int             `json:"itemsInStock"`
	ItemsOutOfStock  int             `json:"itemsOutOfStock"`
	AvgPrice         decimal.Decimal `json:"avgPrice"`
}

// VariancePct считает процент отклонения с обработкой нулевого плана:
// plan != 0 → variance/plan*100; plan == 0, fact == 0 → 0;
// plan == 0, fact != 0 → ±UnboundedGrowthPct по знаку отклонения.
func VariancePct(variance, plan, fact decimal.Decimal) decimal.Decimal {
	if !plan.IsZero() {
		return variance.Div(plan).Mul(decimal.NewFromInt(100))
	}
	if fact.IsZero() {
		return decimal.Zero
	}
	if variance.IsNegative() {
		return UnboundedGrowthPct.Neg()
	}
	return UnboundedGrowthPct
}
